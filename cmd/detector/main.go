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

	// Session store
	var sessions store.SessionStore
	switch cfg.SessionStore {
	case "redis":
		client, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		sessions = store.NewRedisSessionStore(client)
		logger.Info("using redis session store")
	default:
		sessions = store.NewMemorySessionStore()
	}

	// Alert log, optionally mirrored to Kafka
	var alerts store.AlertLog = store.NewMemoryAlertLog()
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	if cfg.KafkaEnabled {
		alerts = store.NewPublishingAlertLog(alerts, producer, cfg.KafkaAlertsTopic, logger)
	}

	r := app.NewDetectorRouter(app.DetectorDeps{
		Cfg:      cfg,
		Logger:   logger,
		Sessions: sessions,
		Alerts:   alerts,
	})

	addr := fmt.Sprintf(":%d", cfg.DetectorPort)
	// No read/write timeouts: /ws/alerts holds connections open
	// indefinitely and a server deadline would sever them.
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("detector server starting", "addr", addr)
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
