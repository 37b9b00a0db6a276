// Package app assembles the routers for the two services, following the
// dependency flow config -> stores -> scorers -> services -> handlers.
package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/loginwatch/platform/internal/handler"
	"github.com/loginwatch/platform/internal/infra"
	"github.com/loginwatch/platform/internal/scoring"
	"github.com/loginwatch/platform/internal/service"
	"github.com/loginwatch/platform/internal/store"
)

// DetectorDeps holds the externally constructed dependencies of the
// detector service; mains build stores and clients, wiring stays here.
type DetectorDeps struct {
	Cfg      *infra.Config
	Logger   *slog.Logger
	Sessions store.SessionStore
	Alerts   store.AlertLog
}

// NewDetectorRouter assembles the session-rule detector's router.
func NewDetectorRouter(deps DetectorDeps) chi.Router {
	cfg := deps.Cfg
	logger := deps.Logger

	scorer := scoring.NewRuleScorer(cfg.AllowedLocations)
	engine := scoring.NewAlertEngine(cfg.RuleThreshold, cfg.SeverityThreshold)
	svc := service.NewDetectorService(deps.Sessions, deps.Alerts, scorer, engine, logger)

	detectorHandler := handler.NewDetectorHandler(svc)
	alertFeed := handler.NewAlertFeed(deps.Alerts, logger)

	r := chi.NewRouter()
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	// The websocket upgrade must not get a JSON content type.
	r.Get("/ws/alerts", alertFeed.Serve)

	r.Group(func(r chi.Router) {
		r.Use(handler.JSONContentType)

		r.Get("/health", handler.HealthHandler())
		r.Route("/api", func(r chi.Router) {
			r.Post("/login_event", detectorHandler.LoginEvent)
			r.Post("/unlock_account", detectorHandler.Unlock)
			r.Post("/re_authenticate", detectorHandler.ReAuthenticate)
			r.Get("/sessions", detectorHandler.Sessions)
			r.Get("/alerts", detectorHandler.Alerts)
		})
	})

	return r
}
