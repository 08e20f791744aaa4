// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers exposes the post and category operations as a JSON
// HTTP API. Handlers only translate between HTTP and the service layer;
// every rule about who may do what lives in the service.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"inkwell/internal/apperr"
	"inkwell/internal/service"
)

// API groups the JSON handlers and their dependencies.
type API struct {
	posts      *service.PostService
	categories *service.CategoryService
}

// NewAPI creates the handler group for svc.
func NewAPI(svc *service.Service) *API {
	return &API{posts: svc.Posts, categories: svc.Categories}
}

// itemsResponse wraps unpaginated collections.
type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// fail writes err as a JSON error. Internal errors are logged here since
// nothing below the transport has seen them.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimw.GetReqID(r.Context()),
			"error", err,
		)
	}
	apperr.Respond(w, err)
}
