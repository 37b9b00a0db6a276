package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginwatch/platform/internal/domain"
)

func TestRuleScorer_CleanEvent(t *testing.T) {
	scorer := NewRuleScorer(nil)
	sess := &domain.Session{Username: "alice"}

	a := scorer.Score(domain.SessionEvent{
		Username:    "alice",
		Location:    "IN",
		TypingSpeed: 150,
		AccessTime:  "10:30",
	}, sess)

	assert.False(t, a.Suspicious)
	assert.Equal(t, 0.0, a.Score)
	assert.Empty(t, a.Reasons)
}

func TestRuleScorer_Rules(t *testing.T) {
	scorer := NewRuleScorer(nil)

	tests := []struct {
		name       string
		ev         domain.SessionEvent
		sess       *domain.Session
		wantScore  float64
		wantReason string
		wantFactor string
	}{
		{
			name:       "fast typing",
			ev:         domain.SessionEvent{Location: "IN", TypingSpeed: 250, AccessTime: "10:00"},
			sess:       &domain.Session{},
			wantScore:  0.3,
			wantReason: "Unusually high typing speed",
			wantFactor: "typing_speed",
		},
		{
			name:       "disallowed location",
			ev:         domain.SessionEvent{Location: "RU", TypingSpeed: 150, AccessTime: "10:00"},
			sess:       &domain.Session{},
			wantScore:  0.4,
			wantReason: "Unusual login location: RU",
			wantFactor: "location",
		},
		{
			name:       "device change",
			ev:         domain.SessionEvent{Location: "IN", DeviceFingerprint: "dev-2", TypingSpeed: 150, AccessTime: "10:00"},
			sess:       &domain.Session{LastDeviceFingerprint: "dev-1"},
			wantScore:  0.3,
			wantReason: "Device fingerprint changed",
			wantFactor: "device_fingerprint",
		},
		{
			name:       "location shift",
			ev:         domain.SessionEvent{Location: "US", TypingSpeed: 150, AccessTime: "10:00"},
			sess:       &domain.Session{LastLocation: "IN"},
			wantScore:  0.4,
			wantReason: "Sudden location shift from IN to US",
			wantFactor: "location_shift",
		},
		{
			name:       "night access",
			ev:         domain.SessionEvent{Location: "IN", TypingSpeed: 150, AccessTime: "03:20"},
			sess:       &domain.Session{},
			wantScore:  0.2,
			wantReason: "Unusual access time: 03:20",
			wantFactor: "access_time",
		},
		{
			name:       "late evening access",
			ev:         domain.SessionEvent{Location: "IN", TypingSpeed: 150, AccessTime: "23:05"},
			sess:       &domain.Session{},
			wantScore:  0.2,
			wantReason: "Unusual access time: 23:05",
			wantFactor: "access_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := scorer.Score(tt.ev, tt.sess)
			assert.InDelta(t, tt.wantScore, a.Score, 1e-9)
			assert.True(t, a.Suspicious)
			require.Len(t, a.Reasons, 1)
			assert.Equal(t, tt.wantReason, a.Reasons[0])
			assert.Equal(t, []string{tt.wantFactor}, a.RiskFactors)
		})
	}
}

func TestRuleScorer_RulesAccumulate(t *testing.T) {
	scorer := NewRuleScorer(nil)

	t.Run("typing plus location", func(t *testing.T) {
		a := scorer.Score(domain.SessionEvent{
			Location:    "RU",
			TypingSpeed: 250,
			AccessTime:  "10:00",
		}, &domain.Session{})
		assert.InDelta(t, 0.7, a.Score, 1e-9)
		assert.Len(t, a.Reasons, 2)
	})

	t.Run("all rules at once can exceed one", func(t *testing.T) {
		a := scorer.Score(domain.SessionEvent{
			DeviceFingerprint: "dev-2",
			Location:          "RU",
			TypingSpeed:       250,
			AccessTime:        "02:00",
		}, &domain.Session{LastDeviceFingerprint: "dev-1", LastLocation: "IN"})
		assert.InDelta(t, 1.6, a.Score, 1e-9)
		assert.Len(t, a.Reasons, 5)
	})
}

func TestRuleScorer_BoundaryHours(t *testing.T) {
	scorer := NewRuleScorer(nil)

	tests := []struct {
		accessTime string
		flagged    bool
	}{
		{"05:59", true},
		{"06:00", false},
		{"22:59", false},
		{"23:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.accessTime, func(t *testing.T) {
			a := scorer.Score(domain.SessionEvent{
				Location:    "IN",
				TypingSpeed: 150,
				AccessTime:  tt.accessTime,
			}, &domain.Session{})
			assert.Equal(t, tt.flagged, a.Score > 0)
		})
	}
}

func TestRuleScorer_MalformedAccessTimeSkipsRule(t *testing.T) {
	scorer := NewRuleScorer(nil)

	for _, at := range []string{"", "not-a-time", "xx:30"} {
		a := scorer.Score(domain.SessionEvent{
			Location:    "IN",
			TypingSpeed: 150,
			AccessTime:  at,
		}, &domain.Session{})
		assert.Equal(t, 0.0, a.Score, "access time %q", at)
	}
}

func TestRuleScorer_CustomAllowList(t *testing.T) {
	scorer := NewRuleScorer([]string{"DE", "FR"})

	a := scorer.Score(domain.SessionEvent{Location: "IN", TypingSpeed: 150, AccessTime: "10:00"}, &domain.Session{})
	assert.Contains(t, a.Reasons, "Unusual login location: IN")

	a = scorer.Score(domain.SessionEvent{Location: "DE", TypingSpeed: 150, AccessTime: "10:00"}, &domain.Session{})
	assert.Empty(t, a.Reasons)
}
