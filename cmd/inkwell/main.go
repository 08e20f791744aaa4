// Package main is the entry point for the inkwell content API server.
// It loads configuration, connects to storage and the notification
// channel, sets up routing, and starts the HTTP server with graceful
// shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/notify"
	"inkwell/internal/postquery"
	"inkwell/internal/router"
	"inkwell/internal/service"
)

func main() {
	// Load configuration first so the log format can follow the environment.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"storage", cfg.StorageDriver,
		"category_sync", cfg.CategorySyncPolicy,
	)
	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN is not set; all mutating requests will be refused")
	}

	backend, err := openStorage(cfg)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer backend.close()

	// Change notifications are optional; the API works without Valkey.
	deps := backend.deps
	if cfg.NotifyEnabled {
		publisher, err := notify.Dial(context.Background(), notify.Options{
			Host:     cfg.ValkeyHost,
			Port:     cfg.ValkeyPort,
			Password: cfg.ValkeyPassword,
			Channel:  cfg.NotifyChannel,
		})
		if err != nil {
			slog.Warn("valkey unavailable, change notifications disabled", "error", err)
		} else {
			defer publisher.Close()
			deps.Notifier = publisher
			slog.Info("change notifications enabled", "channel", cfg.NotifyChannel)
		}
	}

	policy, err := service.ParseSyncPolicy(cfg.CategorySyncPolicy)
	if err != nil {
		slog.Error("invalid category sync policy", "error", err)
		os.Exit(1)
	}

	svc := service.New(deps, service.Options{
		Paging: postquery.Limits{
			DefaultPageSize: cfg.PageSizeDefault,
			MaxPageSize:     cfg.PageSizeMax,
		},
		SlugMaxAttempts: cfg.SlugMaxAttempts,
		SyncPolicy:      policy,
	})

	limiter := middleware.NewWriteLimiter(cfg.WriteRateLimit, cfg.WriteRateWindow).
		TrustProxyHeaders(cfg.TrustProxyHeaders)
	defer limiter.Stop()

	r := router.New(handlers.NewAPI(svc), router.Config{
		AdminToken: cfg.AdminToken,
		Limiter:    limiter,
		Health:     backend.ping,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("server failed", "error", err)
		backend.close()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		backend.close()
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newLogger outputs text in development and JSON everywhere else.
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
