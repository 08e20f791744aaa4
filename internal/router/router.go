// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// inkwell. It organizes the JSON API into post and category groups behind
// a shared middleware stack.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

// Config carries what the router needs beyond the handlers.
type Config struct {
	AdminToken string
	// Limiter bounds writes per client; nil disables it.
	Limiter *middleware.WriteLimiter
	// Health is probed by /health; nil means always healthy.
	Health Pinger
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(api *handlers.API, cfg Config) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.AdminGate(cfg.AdminToken))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler(cfg.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", api.ListPosts)
			r.Post("/", api.CreatePost)
			r.Get("/slug/{slug}", api.GetPostBySlug)
			r.Get("/{id}", api.GetPost)
			r.Patch("/{id}", api.UpdatePost)
			r.Delete("/{id}", api.DeletePost)
			r.Post("/{id}/publish", api.TogglePublish)
			r.Put("/{id}/categories", api.SetPostCategories)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", api.ListCategories)
			r.Post("/", api.CreateCategory)
			r.Get("/stats", api.CategoryStats)
			r.Get("/slug/{slug}", api.GetCategoryBySlug)
			r.Get("/{id}", api.GetCategory)
			r.Patch("/{id}", api.UpdateCategory)
			r.Delete("/{id}", api.DeleteCategory)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response. When ping
// fails the endpoint answers 503 so load balancers stop routing to us.
func healthHandler(ping Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
