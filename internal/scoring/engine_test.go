package scoring

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginwatch/platform/internal/domain"
)

func TestAlertEngine_Evaluate(t *testing.T) {
	engine := NewAlertEngine(0.5, 0.8)

	tests := []struct {
		name         string
		score        float64
		wantAlert    bool
		wantSeverity string
		wantAction   string
	}{
		{"below threshold", 0.4, false, "", ""},
		{"at threshold is medium", 0.5, true, domain.SeverityMedium, domain.ActionReAuthenticate},
		{"mid range", 0.7, true, domain.SeverityMedium, domain.ActionReAuthenticate},
		{"at severity threshold stays medium", 0.8, true, domain.SeverityMedium, domain.ActionReAuthenticate},
		{"above severity threshold is high", 0.9, true, domain.SeverityHigh, domain.ActionLockAccount},
		{"stacked rules", 1.6, true, domain.SeverityHigh, domain.ActionLockAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := engine.Evaluate("alice", Assessment{
				Suspicious:  tt.score > 0,
				Score:       tt.score,
				Reasons:     []string{"Unusual login location: RU"},
				RiskFactors: []string{"location"},
			})

			if !tt.wantAlert {
				assert.Nil(t, alert)
				return
			}
			require.NotNil(t, alert)
			assert.Equal(t, tt.wantSeverity, alert.Severity)
			assert.Equal(t, tt.wantAction, alert.Action)
			assert.Equal(t, "alice", alert.Username)
			assert.Equal(t, tt.score, alert.Score)
			assert.Equal(t, domain.AlertStatusNew, alert.Status)
			assert.Equal(t, []string{"Unusual login location: RU"}, alert.Reasons)
		})
	}
}

func TestAlertEngine_AlertIdentity(t *testing.T) {
	engine := NewAlertEngine(0.5, 0.8)
	fixed := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)
	engine.now = func() time.Time { return fixed }

	alert := engine.Evaluate("bob", Assessment{Score: 0.6})
	require.NotNil(t, alert)

	assert.True(t, strings.HasPrefix(alert.AlertID, "A-20240501-"), "got %s", alert.AlertID)
	assert.Len(t, alert.AlertID, len("A-20240501-")+6)
	assert.Equal(t, "2024-05-01T14:30:00Z", alert.CreatedAt)

	other := engine.Evaluate("bob", Assessment{Score: 0.6})
	require.NotNil(t, other)
	assert.NotEqual(t, alert.AlertID, other.AlertID)
}
