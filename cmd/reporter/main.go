package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loginwatch/platform/internal/app"
	"github.com/loginwatch/platform/internal/forward"
	"github.com/loginwatch/platform/internal/geo"
	"github.com/loginwatch/platform/internal/infra"
	"github.com/loginwatch/platform/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// Profile store
	var profiles store.ProfileStore
	switch cfg.ProfileStore {
	case "postgres":
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		pool, err := infra.NewPostgresPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		profiles = store.NewPgProfileStore(pool)
		logger.Info("using postgres profile store")
	case "memory":
		profiles = store.NewMemoryProfileStore()
	default:
		fileStore, err := store.NewFileProfileStore(cfg.ProfilesPath, logger)
		if err != nil {
			return fmt.Errorf("open profile snapshot: %w", err)
		}
		profiles = fileStore
		logger.Info("using file profile store", "path", cfg.ProfilesPath)
	}

	// Optional geo-IP resolver
	var resolver geo.Resolver
	if cfg.GeoIPEnabled {
		switch cfg.GeoIPProvider {
		case "maxmind":
			mm, err := geo.NewMaxMindResolver(cfg.GeoIPMMDBPath)
			if err != nil {
				return fmt.Errorf("open geoip database: %w", err)
			}
			defer mm.Close()
			resolver = mm
		default:
			resolver = geo.NewIPAPIResolver(cfg.GeoIPTimeout)
		}
		logger.Info("geo-ip checks enabled", "provider", cfg.GeoIPProvider)
	}

	// Background forwarder for suspicious-event reports
	forwarder := forward.New(cfg.IntakeURL, cfg.ForwardTimeout, cfg.ForwardQueueSize, logger)
	go forwarder.Start(ctx)

	r := app.NewReporterRouter(app.ReporterDeps{
		Cfg:      cfg,
		Logger:   logger,
		Profiles: profiles,
		Sink:     forwarder,
		Resolver: resolver,
	})

	addr := fmt.Sprintf(":%d", cfg.ReporterPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("reporter server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
