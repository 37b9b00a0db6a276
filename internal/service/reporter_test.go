package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loginwatch/platform/internal/domain"
	"github.com/loginwatch/platform/internal/scoring"
	"github.com/loginwatch/platform/internal/store"
)

type stubSink struct {
	reports []domain.Report
	full    bool
}

func (s *stubSink) Enqueue(r domain.Report) bool {
	if s.full {
		return false
	}
	s.reports = append(s.reports, r)
	return true
}

func f64(v float64) *float64 { return &v }

func newReporter(t *testing.T) (*ReporterService, *stubSink) {
	t.Helper()
	sink := &stubSink{}
	svc := NewReporterService(
		store.NewMemoryProfileStore(),
		scoring.NewSimilarityScorer(scoring.DefaultWeights(), 0.6, nil, 0, nil),
		sink,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, sink
}

func historyEvents() []domain.LoginEvent {
	ev := domain.LoginEvent{
		Site:              "shop",
		Username:          "alice",
		DeviceFingerprint: "dev-1",
		TypingSpeed:       f64(150),
		Location:          "IN",
		AccessTime:        "2024-05-01T10:00:00",
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0",
		IPAddress:         "10.0.0.1",
	}
	return []domain.LoginEvent{ev, ev, ev}
}

func TestReporterService_CheckUnknownProfile(t *testing.T) {
	svc, sink := newReporter(t)

	_, err := svc.Check(context.Background(), domain.LoginEvent{Site: "shop", Username: "ghost"})
	require.Error(t, err)
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PROFILE_NOT_FOUND", appErr.Code)
	assert.Equal(t, 404, appErr.Status)
	assert.Empty(t, sink.reports)
}

func TestReporterService_CheckMatchingEvent(t *testing.T) {
	svc, sink := newReporter(t)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, "shop", "alice", historyEvents())
	require.NoError(t, err)

	result, err := svc.Check(ctx, historyEvents()[0])
	require.NoError(t, err)
	assert.False(t, result.Suspicious)
	assert.Equal(t, 1.0, result.Similarity)
	assert.False(t, result.Forwarded)
	assert.Empty(t, sink.reports)
}

func TestReporterService_CheckSuspiciousEvent(t *testing.T) {
	svc, sink := newReporter(t)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, "shop", "alice", historyEvents())
	require.NoError(t, err)

	attack := domain.LoginEvent{
		Site:              "shop",
		Username:          "alice",
		DeviceFingerprint: "dev-9",
		TypingSpeed:       f64(400),
		Location:          "RU",
		AccessTime:        "02:30",
		UserAgent:         "curl/8.4.0",
		IPAddress:         "203.0.113.9",
	}

	result, err := svc.Check(ctx, attack)
	require.NoError(t, err)
	assert.True(t, result.Suspicious)
	// Typing, device, location, UA and IP all miss; only the time feature
	// stays neutral because the short access time carries no hour field.
	assert.InDelta(t, 0.1, result.Similarity, 1e-9)
	assert.True(t, result.Forwarded)

	require.Len(t, sink.reports, 1)
	report := sink.reports[0]
	assert.Equal(t, ReportSource, report.Source)
	assert.Equal(t, "alice", report.Username)
	assert.Equal(t, "shop", report.Site)
	assert.InDelta(t, 0.9, report.Score, 1e-9, "forwarded score is the inverted similarity")
	assert.Equal(t, result.Reasons, report.Reasons)
	assert.Equal(t, result.RiskFactors, report.RiskFactors)
}

func TestReporterService_CheckFoldsEventRegardless(t *testing.T) {
	svc, _ := newReporter(t)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, "shop", "alice", historyEvents())
	require.NoError(t, err)

	attack := domain.LoginEvent{
		Site:     "shop",
		Username: "alice",
		Location: "RU",
	}
	_, err = svc.Check(ctx, attack)
	require.NoError(t, err)

	p, err := svc.GetProfile(ctx, "shop", "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, p.Samples)
	assert.Contains(t, p.Locations, "RU", "even a flagged event enters the baseline")
}

func TestReporterService_CheckFullSink(t *testing.T) {
	svc, sink := newReporter(t)
	sink.full = true
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, "shop", "alice", historyEvents())
	require.NoError(t, err)

	result, err := svc.Check(ctx, domain.LoginEvent{Site: "shop", Username: "alice", Location: "RU", DeviceFingerprint: "dev-9", TypingSpeed: f64(400)})
	require.NoError(t, err)
	assert.True(t, result.Suspicious)
	assert.False(t, result.Forwarded, "a dropped report does not fail the check")
}

func TestReporterService_AddEvent(t *testing.T) {
	svc, _ := newReporter(t)
	ctx := context.Background()

	t.Run("creates profile when absent", func(t *testing.T) {
		p, err := svc.AddEvent(ctx, "shop", "bob", domain.LoginEvent{TypingSpeed: f64(120), Location: "US"})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Samples)
		require.NotNil(t, p.AvgTypingSpeed)
		assert.Equal(t, 120.0, *p.AvgTypingSpeed)
	})

	t.Run("folds into existing profile", func(t *testing.T) {
		p, err := svc.AddEvent(ctx, "shop", "bob", domain.LoginEvent{TypingSpeed: f64(140), Location: "IN"})
		require.NoError(t, err)
		assert.Equal(t, 2, p.Samples)
		assert.Equal(t, 130.0, *p.AvgTypingSpeed)
		assert.Equal(t, []string{"US", "IN"}, p.Locations)
	})
}

func TestReporterService_GetAndListProfiles(t *testing.T) {
	svc, _ := newReporter(t)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, "shop", "nobody")
	require.Error(t, err)
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PROFILE_NOT_FOUND", appErr.Code)

	_, err = svc.CreateProfile(ctx, "shop", "alice", historyEvents())
	require.NoError(t, err)
	_, err = svc.CreateProfile(ctx, "bank", "carol", nil)
	require.NoError(t, err)

	all, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Contains(t, all["shop"], "alice")
	assert.Contains(t, all["bank"], "carol")

	p, err := svc.GetProfile(ctx, "shop", "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Samples)
}

func TestReporterService_EvaluateAdapter(t *testing.T) {
	svc, _ := newReporter(t)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, "shop", "alice", historyEvents())
	require.NoError(t, err)

	a, err := svc.Evaluate(ctx, historyEvents()[0])
	require.NoError(t, err)
	assert.False(t, a.Suspicious)
	assert.Equal(t, 1.0, a.Score)

	assert.Equal(t, "baseline_similarity", svc.Name())
}
