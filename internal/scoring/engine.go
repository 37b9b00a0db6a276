package scoring

import (
	"context"
	"time"

	"github.com/loginwatch/platform/internal/domain"
)

// Detector is a pluggable strategy for judging a login event. Two variants
// exist: the baseline-similarity reporter and the session-rule detector.
// Callers can select or combine strategies without duplicating the
// profile/session bookkeeping each one carries internally.
type Detector interface {
	Name() string
	Evaluate(ctx context.Context, ev domain.LoginEvent) (Assessment, error)
}

// AlertEngine turns rule assessments crossing the alert threshold into
// anomaly alerts. Severity and action derive from the score alone:
// high/lock_account strictly above the severity threshold, otherwise
// medium/re_authenticate.
type AlertEngine struct {
	alertThreshold    float64
	severityThreshold float64
	now               func() time.Time
}

// NewAlertEngine creates an alert engine with the given thresholds
// (typically 0.5 and 0.8).
func NewAlertEngine(alertThreshold, severityThreshold float64) *AlertEngine {
	return &AlertEngine{
		alertThreshold:    alertThreshold,
		severityThreshold: severityThreshold,
		now:               time.Now,
	}
}

// Evaluate returns a new alert when the assessment's score reaches the
// alert threshold, nil otherwise. The alert is immutable once created.
func (e *AlertEngine) Evaluate(username string, a Assessment) *domain.AnomalyAlert {
	if a.Score < e.alertThreshold {
		return nil
	}

	severity := domain.SeverityMedium
	action := domain.ActionReAuthenticate
	if a.Score > e.severityThreshold {
		severity = domain.SeverityHigh
		action = domain.ActionLockAccount
	}

	now := e.now().UTC()
	return &domain.AnomalyAlert{
		AlertID:     domain.NewAlertID(now),
		CreatedAt:   now.Format(time.RFC3339),
		Severity:    severity,
		Score:       a.Score,
		Username:    username,
		Reasons:     a.Reasons,
		RiskFactors: a.RiskFactors,
		Status:      domain.AlertStatusNew,
		Action:      action,
	}
}
