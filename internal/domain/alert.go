package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity levels for anomaly alerts.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Actions attached to anomaly alerts.
const (
	ActionReAuthenticate = "re_authenticate"
	ActionLockAccount    = "lock_account"
)

// AlertStatusNew is the status of every freshly created alert.
const AlertStatusNew = "new"

// AnomalyAlert is an actionable finding produced when a login event crosses
// the alert threshold. Immutable once created; appended to an append-only log.
type AnomalyAlert struct {
	AlertID     string   `json:"alert_id"`
	CreatedAt   string   `json:"created_at"`
	Severity    string   `json:"severity"`
	Score       float64  `json:"score"`
	Username    string   `json:"username"`
	Reasons     []string `json:"reasons"`
	RiskFactors []string `json:"risk_factors"`
	Status      string   `json:"status"`
	Action      string   `json:"action,omitempty"`
}

// NewAlertID builds a date-prefixed alert identifier, e.g. "A-20260901-3f9a1c".
func NewAlertID(now time.Time) string {
	return fmt.Sprintf("A-%s-%s", now.UTC().Format("20060102"), uuid.NewString()[:6])
}
