// Package forward delivers suspicion reports to a remote risk-intake
// endpoint as fire-and-forget background work. The scoring path only
// enqueues; it never awaits or observes the outcome.
package forward

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/loginwatch/platform/internal/domain"
)

// Forwarder consumes a bounded queue of reports and posts each one to the
// intake URL with a per-send timeout. No retry: a failed or dropped send is
// logged and forgotten.
type Forwarder struct {
	intakeURL string
	client    *http.Client
	queue     chan domain.Report
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a forwarder. timeout bounds each send; queueSize bounds the
// backlog before reports are dropped.
func New(intakeURL string, timeout time.Duration, queueSize int, logger *slog.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Forwarder{
		intakeURL: intakeURL,
		client:    &http.Client{Timeout: timeout},
		queue:     make(chan domain.Report, queueSize),
		logger:    logger,
		now:       time.Now,
	}
}

// Enqueue hands a report to the background worker without blocking.
// Returns false when the queue is full and the report was dropped.
func (f *Forwarder) Enqueue(report domain.Report) bool {
	select {
	case f.queue <- report:
		return true
	default:
		f.logger.Warn("forward queue full, report dropped", "username", report.Username)
		return false
	}
}

// Start consumes the queue until ctx is cancelled. Run in a goroutine.
func (f *Forwarder) Start(ctx context.Context) {
	f.logger.Info("forwarder started", "intake_url", f.intakeURL)
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("forwarder stopped")
			return
		case report := <-f.queue:
			f.send(ctx, report)
		}
	}
}

func (f *Forwarder) send(ctx context.Context, report domain.Report) {
	payload := f.buildPayload(report)

	raw, err := json.Marshal(payload)
	if err != nil {
		f.logger.Error("marshal forward payload", "username", report.Username, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.intakeURL, bytes.NewReader(raw))
	if err != nil {
		f.logger.Error("build forward request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("forward failed", "username", report.Username, "error", err)
		return
	}
	defer resp.Body.Close()

	f.logger.Info("report forwarded",
		"username", report.Username,
		"event_id", payload.EventID,
		"status", resp.StatusCode,
	)
}

// buildPayload shapes a report into the intake's event model: synthetic
// event id and timestamp, zero-value defaults for missing fields, and every
// field the intake model does not know folded into the additional map.
func (f *Forwarder) buildPayload(report domain.Report) domain.SessionEvent {
	now := f.now().UTC().Format(time.RFC3339)

	accessTime := report.AccessTime
	if accessTime == "" {
		accessTime = now
	}
	var typingSpeed float64
	if report.TypingSpeed != nil {
		typingSpeed = *report.TypingSpeed
	}

	return domain.SessionEvent{
		EventID:           "evt-" + shortID(),
		Timestamp:         now,
		Username:          report.Username,
		DeviceFingerprint: report.DeviceFingerprint,
		Location:          report.Location,
		TypingSpeed:       typingSpeed,
		AccessTime:        accessTime,
		Additional: map[string]any{
			"site":         report.Site,
			"user_agent":   report.UserAgent,
			"ip_address":   report.IPAddress,
			"source":       report.Source,
			"score":        report.Score,
			"reasons":      report.Reasons,
			"risk_factors": report.RiskFactors,
		},
	}
}

func shortID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:8]
}

// QueueDepth reports the current backlog, for health introspection.
func (f *Forwarder) QueueDepth() int {
	return len(f.queue)
}
