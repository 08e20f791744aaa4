// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

// ListPosts serves GET /api/posts.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	req, err := listRequest(r.URL.Query())
	if err != nil {
		fail(w, r, err)
		return
	}
	page, err := a.posts.List(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetPost serves GET /api/posts/{id}.
func (a *API) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "post")
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := a.posts.GetByID(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetPostBySlug serves GET /api/posts/slug/{slug}.
func (a *API) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := a.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePost serves POST /api/posts.
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	if err := service.RequireAdmin(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	var in models.PostInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		fail(w, r, err)
		return
	}
	p, err := a.posts.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/posts/"+p.ID.String())
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePost serves PATCH /api/posts/{id}.
func (a *API) UpdatePost(w http.ResponseWriter, r *http.Request) {
	if err := service.RequireAdmin(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "post")
	if err != nil {
		fail(w, r, err)
		return
	}
	var patch models.PostPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		fail(w, r, err)
		return
	}
	p, err := a.posts.Update(r.Context(), id, patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePost serves DELETE /api/posts/{id}.
func (a *API) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := service.RequireAdmin(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "post")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := a.posts.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type publishRequest struct {
	Published *bool `json:"published"`
}

// TogglePublish serves POST /api/posts/{id}/publish. Without a body the
// state flips; {"published": bool} sets it explicitly.
func (a *API) TogglePublish(w http.ResponseWriter, r *http.Request) {
	if err := service.RequireAdmin(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "post")
	if err != nil {
		fail(w, r, err)
		return
	}
	var body publishRequest
	if err := decodeJSON(w, r, &body, true); err != nil {
		fail(w, r, err)
		return
	}
	p, err := a.posts.TogglePublish(r.Context(), id, body.Published)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type categoriesRequest struct {
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

// SetPostCategories serves PUT /api/posts/{id}/categories.
func (a *API) SetPostCategories(w http.ResponseWriter, r *http.Request) {
	if err := service.RequireAdmin(r.Context()); err != nil {
		fail(w, r, err)
		return
	}
	id, err := pathID(r, "post")
	if err != nil {
		fail(w, r, err)
		return
	}
	var body categoriesRequest
	if err := decodeJSON(w, r, &body, false); err != nil {
		fail(w, r, err)
		return
	}
	p, err := a.posts.SetCategories(r.Context(), id, body.CategoryIDs)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
