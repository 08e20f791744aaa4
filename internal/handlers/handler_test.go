// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for the JSON API
// tests. Everything runs against the in-memory store.
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/middleware"
	"inkwell/internal/service"
	"inkwell/internal/store/memstore"
)

const testToken = "test-admin-token"

type testServer struct {
	handler http.Handler
	store   *memstore.Store
}

// newTestServer wires the API the same way the router does, minus the
// logging and metrics middleware.
func newTestServer(t *testing.T, opts service.Options) *testServer {
	t.Helper()
	st := memstore.New()
	svc := service.New(service.Deps{
		Tx:         st,
		Posts:      st.Posts(),
		Categories: st.Categories(),
		Links:      st.Links(),
	}, opts)
	api := NewAPI(svc)

	r := chi.NewRouter()
	r.Use(middleware.AdminGate(testToken))
	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", api.ListPosts)
		r.Post("/", api.CreatePost)
		r.Get("/slug/{slug}", api.GetPostBySlug)
		r.Get("/{id}", api.GetPost)
		r.Patch("/{id}", api.UpdatePost)
		r.Delete("/{id}", api.DeletePost)
		r.Post("/{id}/publish", api.TogglePublish)
		r.Put("/{id}/categories", api.SetPostCategories)
	})
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", api.ListCategories)
		r.Post("/", api.CreateCategory)
		r.Get("/stats", api.CategoryStats)
		r.Get("/slug/{slug}", api.GetCategoryBySlug)
		r.Get("/{id}", api.GetCategory)
		r.Patch("/{id}", api.UpdateCategory)
		r.Delete("/{id}", api.DeleteCategory)
	})
	return &testServer{handler: r, store: st}
}

// do sends a request. admin adds the bearer token.
func (s *testServer) do(t *testing.T, method, path, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals the response body into v.
func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// wantError asserts the status and error kind of rr.
func wantError(t *testing.T, rr *httptest.ResponseRecorder, status int, kind string) errorBody {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	var body errorBody
	decode(t, rr, &body)
	if body.Error.Kind != kind {
		t.Errorf("kind = %q, want %q", body.Error.Kind, kind)
	}
	return body
}

// wantStatus asserts the status of rr.
func wantStatus(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
}
