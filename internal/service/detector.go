package service

import (
	"context"
	"log/slog"

	"github.com/loginwatch/platform/internal/domain"
	"github.com/loginwatch/platform/internal/scoring"
	"github.com/loginwatch/platform/internal/store"
)

// DetectorService is the session-rule detector: it rejects locked accounts,
// accumulates rule points against the rolling session state, raises alerts
// past the threshold, and drives the lock state machine.
type DetectorService struct {
	sessions store.SessionStore
	alerts   store.AlertLog
	scorer   *scoring.RuleScorer
	engine   *scoring.AlertEngine
	locks    *store.KeyMutex
	logger   *slog.Logger
}

// NewDetectorService creates a detector service.
func NewDetectorService(sessions store.SessionStore, alerts store.AlertLog, scorer *scoring.RuleScorer, engine *scoring.AlertEngine, logger *slog.Logger) *DetectorService {
	return &DetectorService{
		sessions: sessions,
		alerts:   alerts,
		scorer:   scorer,
		engine:   engine,
		locks:    store.NewKeyMutex(),
		logger:   logger,
	}
}

// HandleLogin scores one login event. Returns the created alert, or nil
// when the event stays under the alert threshold. A locked session rejects
// the event before any scoring runs. The session's last-seen attributes are
// updated on every accepted event, alert or not.
func (s *DetectorService) HandleLogin(ctx context.Context, ev domain.SessionEvent) (*domain.AnomalyAlert, error) {
	defer s.locks.Lock(ev.Username)()

	sess, err := s.sessions.Get(ctx, ev.Username)
	if err != nil {
		return nil, domain.ErrInternal("load session", err)
	}
	if sess == nil {
		sess = &domain.Session{Username: ev.Username}
	}
	if sess.Locked {
		return nil, domain.ErrAccountLocked(ev.Username)
	}

	assessment := s.scorer.Score(ev, sess)
	alert := s.engine.Evaluate(ev.Username, assessment)
	if alert != nil {
		if err := s.alerts.Append(ctx, alert); err != nil {
			return nil, domain.ErrInternal("append alert", err)
		}
		if alert.Action == domain.ActionLockAccount {
			sess.Locked = true
		}
		s.logger.Warn("anomaly alert raised",
			"alert_id", alert.AlertID,
			"username", ev.Username,
			"severity", alert.Severity,
			"score", alert.Score,
			"action", alert.Action,
		)
	}

	sess.Observe(ev)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, domain.ErrInternal("store session", err)
	}
	return alert, nil
}

// Unlock clears the lock flag. Unknown usernames are NOT_FOUND.
func (s *DetectorService) Unlock(ctx context.Context, username string) error {
	defer s.locks.Lock(username)()

	sess, err := s.sessions.Get(ctx, username)
	if err != nil {
		return domain.ErrInternal("load session", err)
	}
	if sess == nil {
		return domain.ErrNotFound("user", username)
	}
	sess.Locked = false
	if err := s.sessions.Put(ctx, sess); err != nil {
		return domain.ErrInternal("store session", err)
	}
	s.logger.Info("account unlocked", "username", username)
	return nil
}

// Sessions returns every session keyed by username.
func (s *DetectorService) Sessions(ctx context.Context) (map[string]*domain.Session, error) {
	all, err := s.sessions.All(ctx)
	if err != nil {
		return nil, domain.ErrInternal("load sessions", err)
	}
	return all, nil
}

// Alerts returns the full alert log in append order.
func (s *DetectorService) Alerts(ctx context.Context) ([]*domain.AnomalyAlert, error) {
	list, err := s.alerts.List(ctx)
	if err != nil {
		return nil, domain.ErrInternal("load alerts", err)
	}
	return list, nil
}

// Name implements scoring.Detector.
func (s *DetectorService) Name() string { return "session_rule" }

// Evaluate implements scoring.Detector by mapping the generic event shape
// onto the session intake shape.
func (s *DetectorService) Evaluate(ctx context.Context, ev domain.LoginEvent) (scoring.Assessment, error) {
	sev := domain.SessionEvent{
		Username:          ev.Username,
		DeviceFingerprint: ev.DeviceFingerprint,
		Location:          ev.Location,
		AccessTime:        ev.AccessTime,
		Additional:        ev.Additional,
	}
	if ev.TypingSpeed != nil {
		sev.TypingSpeed = *ev.TypingSpeed
	}

	alert, err := s.HandleLogin(ctx, sev)
	if err != nil {
		return scoring.Assessment{}, err
	}
	if alert == nil {
		return scoring.Assessment{}, nil
	}
	return scoring.Assessment{
		Suspicious:  true,
		Score:       alert.Score,
		Reasons:     alert.Reasons,
		RiskFactors: alert.RiskFactors,
	}, nil
}

var _ scoring.Detector = (*DetectorService)(nil)
