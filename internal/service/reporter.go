// Package service wires the scoring engines to their stores and drives the
// request-level orchestration for both detector variants.
package service

import (
	"context"
	"log/slog"
	"math"

	"github.com/loginwatch/platform/internal/domain"
	"github.com/loginwatch/platform/internal/profile"
	"github.com/loginwatch/platform/internal/scoring"
	"github.com/loginwatch/platform/internal/store"
)

// ReportSource tags forwarded reports with their origin.
const ReportSource = "automated_reporter"

// ReportSink accepts reports for background delivery. Satisfied by
// forward.Forwarder.
type ReportSink interface {
	Enqueue(report domain.Report) bool
}

// ReporterService is the baseline-similarity detector: it scores incoming
// events against learned per-(site, username) profiles, forwards suspicious
// ones to the risk intake, and folds every checked event back into its
// baseline.
type ReporterService struct {
	profiles store.ProfileStore
	scorer   *scoring.SimilarityScorer
	sink     ReportSink
	locks    *store.KeyMutex
	logger   *slog.Logger
}

// NewReporterService creates a reporter service.
func NewReporterService(profiles store.ProfileStore, scorer *scoring.SimilarityScorer, sink ReportSink, logger *slog.Logger) *ReporterService {
	return &ReporterService{
		profiles: profiles,
		scorer:   scorer,
		sink:     sink,
		locks:    store.NewKeyMutex(),
		logger:   logger,
	}
}

// CreateProfile builds a fresh baseline from a batch of historical events,
// replacing any existing profile for the pair.
func (s *ReporterService) CreateProfile(ctx context.Context, site, username string, events []domain.LoginEvent) (*domain.Profile, error) {
	defer s.locks.Lock(profileKey(site, username))()

	p := profile.FromEvents(events)
	if err := s.profiles.Put(ctx, site, username, p); err != nil {
		return nil, domain.ErrInternal("store profile", err)
	}
	s.logger.Info("profile created", "site", site, "username", username, "samples", p.Samples)
	return p, nil
}

// AddEvent folds one event into the baseline, creating the profile from
// that single event when none exists yet.
func (s *ReporterService) AddEvent(ctx context.Context, site, username string, ev domain.LoginEvent) (*domain.Profile, error) {
	defer s.locks.Lock(profileKey(site, username))()

	p, err := s.profiles.Get(ctx, site, username)
	if err != nil {
		return nil, domain.ErrInternal("load profile", err)
	}
	if p == nil {
		p = profile.FromEvents([]domain.LoginEvent{ev})
	} else {
		profile.Fold(p, ev)
	}
	if err := s.profiles.Put(ctx, site, username, p); err != nil {
		return nil, domain.ErrInternal("store profile", err)
	}
	return p, nil
}

// GetProfile returns the baseline for the pair or PROFILE_NOT_FOUND.
func (s *ReporterService) GetProfile(ctx context.Context, site, username string) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, site, username)
	if err != nil {
		return nil, domain.ErrInternal("load profile", err)
	}
	if p == nil {
		return nil, domain.ErrProfileNotFound(site, username)
	}
	return p, nil
}

// ListProfiles returns every stored baseline grouped by site.
func (s *ReporterService) ListProfiles(ctx context.Context) (map[string]map[string]*domain.Profile, error) {
	all, err := s.profiles.All(ctx)
	if err != nil {
		return nil, domain.ErrInternal("load profiles", err)
	}
	return all, nil
}

// Check scores ev against its baseline. A suspicious event is reported to
// the sink (fire-and-forget); either way the event is folded into the
// baseline afterwards so it keeps adapting. The fold-regardless behavior
// means a sustained attacker can drift the baseline toward their own
// pattern; that trade-off is part of this detector's contract and is
// expected to be checked externally.
func (s *ReporterService) Check(ctx context.Context, ev domain.LoginEvent) (*domain.CheckResult, error) {
	defer s.locks.Lock(profileKey(ev.Site, ev.Username))()

	p, err := s.profiles.Get(ctx, ev.Site, ev.Username)
	if err != nil {
		return nil, domain.ErrInternal("load profile", err)
	}
	if p == nil {
		return nil, domain.ErrProfileNotFound(ev.Site, ev.Username)
	}

	assessment := s.scorer.Score(ctx, ev, p)

	forwarded := false
	if assessment.Suspicious {
		report := domain.Report{
			Username:          ev.Username,
			Site:              ev.Site,
			DeviceFingerprint: ev.DeviceFingerprint,
			TypingSpeed:       ev.TypingSpeed,
			Location:          ev.Location,
			AccessTime:        ev.AccessTime,
			UserAgent:         ev.UserAgent,
			IPAddress:         ev.IPAddress,
			Source:            ReportSource,
			Score:             round2(1.0 - assessment.Score),
			Reasons:           assessment.Reasons,
			RiskFactors:       assessment.RiskFactors,
		}
		forwarded = s.sink.Enqueue(report)
		s.logger.Warn("suspicious login",
			"site", ev.Site,
			"username", ev.Username,
			"similarity", assessment.Score,
			"reasons", assessment.Reasons,
			"forwarded", forwarded,
		)
	}

	profile.Fold(p, ev)
	if err := s.profiles.Put(ctx, ev.Site, ev.Username, p); err != nil {
		return nil, domain.ErrInternal("store profile", err)
	}

	return &domain.CheckResult{
		Suspicious:  assessment.Suspicious,
		Similarity:  assessment.Score,
		Reasons:     assessment.Reasons,
		RiskFactors: assessment.RiskFactors,
		Forwarded:   forwarded,
	}, nil
}

// Name implements scoring.Detector.
func (s *ReporterService) Name() string { return "baseline_similarity" }

// Evaluate implements scoring.Detector on top of Check.
func (s *ReporterService) Evaluate(ctx context.Context, ev domain.LoginEvent) (scoring.Assessment, error) {
	result, err := s.Check(ctx, ev)
	if err != nil {
		return scoring.Assessment{}, err
	}
	return scoring.Assessment{
		Suspicious:  result.Suspicious,
		Score:       result.Similarity,
		Reasons:     result.Reasons,
		RiskFactors: result.RiskFactors,
	}, nil
}

func profileKey(site, username string) string {
	return site + "/" + username
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ scoring.Detector = (*ReporterService)(nil)
