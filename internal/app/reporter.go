package app

import (
	"log/slog"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/loginwatch/platform/internal/geo"
	"github.com/loginwatch/platform/internal/handler"
	"github.com/loginwatch/platform/internal/infra"
	"github.com/loginwatch/platform/internal/scoring"
	"github.com/loginwatch/platform/internal/service"
	"github.com/loginwatch/platform/internal/store"
)

// ReporterDeps holds the externally constructed dependencies of the
// reporter service.
type ReporterDeps struct {
	Cfg      *infra.Config
	Logger   *slog.Logger
	Profiles store.ProfileStore
	Sink     service.ReportSink
	Resolver geo.Resolver // nil when geo-IP is disabled
}

// NewReporterRouter assembles the baseline-similarity reporter's router.
func NewReporterRouter(deps ReporterDeps) chi.Router {
	cfg := deps.Cfg
	logger := deps.Logger

	weights := scoring.Weights{
		Typing:    cfg.WeightTyping,
		Device:    cfg.WeightDevice,
		Location:  cfg.WeightLocation,
		Time:      cfg.WeightTime,
		UserAgent: cfg.WeightUserAgent,
		IP:        cfg.WeightIP,
	}
	scorer := scoring.NewSimilarityScorer(weights, cfg.SimilarityThreshold, deps.Resolver, cfg.GeoIPTimeout, logger)
	svc := service.NewReporterService(deps.Profiles, scorer, deps.Sink, logger)

	reporterHandler := handler.NewReporterHandler(svc)

	// Health probes the detector's alert endpoint, mirroring where
	// forwarded reports end up.
	peerURL := strings.TrimSuffix(cfg.IntakeURL, "/api/login_event") + "/api/alerts"

	r := chi.NewRouter()
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	}))
	r.Use(handler.JSONContentType)

	r.Get("/", reporterHandler.Root)
	r.Get("/health", handler.PeerHealthHandler(peerURL))

	r.Route("/profiles", func(r chi.Router) {
		r.Post("/", reporterHandler.CreateProfile)
		r.Get("/", reporterHandler.ListProfiles)
		r.Get("/{site}/{username}", reporterHandler.GetProfile)
		r.Post("/{site}/{username}/events", reporterHandler.AddEvent)
	})

	r.Post("/check", reporterHandler.Check)

	return r
}
