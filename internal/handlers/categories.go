// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

// ListCategories serves GET /api/categories.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse[models.Category]{Items: cats})
}

// CategoryStats serves GET /api/categories/stats.
func (a *API) CategoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.categories.Stats(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetCategory serves GET /api/categories/{id}.
func (a *API) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category")
	if err != nil {
		fail(w, r, err)
		return
	}
	c, err := a.categories.GetByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetCategoryBySlug serves GET /api/categories/slug/{slug}.
func (a *API) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	c, err := a.categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCategory serves POST /api/categories.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := service.RequireAdmin(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	var in models.CategoryInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		fail(w, r, err)
		return
	}
	c, err := a.categories.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/categories/"+c.ID.String())
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory serves PATCH /api/categories/{id}.
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if err := service.RequireAdmin(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "category")
	if err != nil {
		fail(w, r, err)
		return
	}
	var patch models.CategoryPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		fail(w, r, err)
		return
	}
	c, err := a.categories.Update(r.Context(), id, patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory serves DELETE /api/categories/{id}.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := service.RequireAdmin(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "category")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := a.categories.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
