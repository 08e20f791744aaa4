package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

func TestCategoryLifecycle(t *testing.T) {
	s := newTestServer(t, service.Options{})

	rr := s.do(t, http.MethodPost, "/api/categories", `{"name":"Cloud Native","description":"k8s and friends","color_variant":"teal"}`, true)
	wantStatus(t, rr, http.StatusCreated)
	var c models.Category
	decode(t, rr, &c)
	if c.Slug != "cloud-native" || c.ColorVariant != models.ColorTeal {
		t.Fatalf("created %+v", c)
	}
	path := "/api/categories/" + c.ID.String()

	t.Run("get by id and slug", func(t *testing.T) {
		wantStatus(t, s.do(t, http.MethodGet, path, "", false), http.StatusOK)
		rr := s.do(t, http.MethodGet, "/api/categories/slug/cloud-native", "", false)
		wantStatus(t, rr, http.StatusOK)
		var got models.Category
		decode(t, rr, &got)
		if got.ID != c.ID {
			t.Errorf("id = %s, want %s", got.ID, c.ID)
		}
	})

	t.Run("duplicate name gets a suffixed slug", func(t *testing.T) {
		dup := s.createCategory(t, "Cloud Native")
		if dup.Slug != "cloud-native-1" {
			t.Errorf("slug = %q, want cloud-native-1", dup.Slug)
		}
	})

	t.Run("rename", func(t *testing.T) {
		rr := s.do(t, http.MethodPatch, path, `{"name":"Cloud","color_variant":"neon"}`, true)
		wantStatus(t, rr, http.StatusOK)
		var got models.Category
		decode(t, rr, &got)
		if got.Slug != "cloud" || got.ColorVariant != models.DefaultColor {
			t.Errorf("updated %+v", got)
		}
	})

	t.Run("delete while assigned is a conflict", func(t *testing.T) {
		s.createPost(t, fmt.Sprintf(`{"title":"Uses it","category_ids":[%q]}`, c.ID))
		wantError(t, s.do(t, http.MethodDelete, path, "", true), http.StatusConflict, "conflict")
	})
}

func TestListCategoriesAndStats(t *testing.T) {
	s := newTestServer(t, service.Options{})

	rr := s.do(t, http.MethodGet, "/api/categories", "", false)
	wantStatus(t, rr, http.StatusOK)
	if got := rr.Body.String(); got != "{\"items\":[]}\n" {
		t.Errorf("empty list body = %q", got)
	}

	b := s.createCategory(t, "Beta")
	s.createCategory(t, "Alpha")
	s.createPost(t, fmt.Sprintf(`{"title":"One","content":"word","is_published":true,"category_ids":[%q]}`, b.ID))
	s.createPost(t, `{"title":"Two"}`)

	rr = s.do(t, http.MethodGet, "/api/categories", "", false)
	wantStatus(t, rr, http.StatusOK)
	var list struct {
		Items []models.Category `json:"items"`
	}
	decode(t, rr, &list)
	if len(list.Items) != 2 || list.Items[0].Name != "Alpha" || list.Items[1].PostCount != 1 {
		t.Errorf("items = %+v", list.Items)
	}

	rr = s.do(t, http.MethodGet, "/api/categories/stats", "", false)
	wantStatus(t, rr, http.StatusOK)
	var stats models.Stats
	decode(t, rr, &stats)
	want := models.Stats{TotalCategories: 2, TotalPosts: 2, PublishedPosts: 1, TotalReadingTime: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestDeleteUnusedCategory(t *testing.T) {
	s := newTestServer(t, service.Options{})
	c := s.createCategory(t, "Temporary")
	path := "/api/categories/" + c.ID.String()

	wantStatus(t, s.do(t, http.MethodDelete, path, "", true), http.StatusNoContent)
	wantError(t, s.do(t, http.MethodGet, path, "", false), http.StatusNotFound, "not_found")
}

func TestCategoryNotFound(t *testing.T) {
	s := newTestServer(t, service.Options{})

	wantError(t, s.do(t, http.MethodGet, "/api/categories/not-a-uuid", "", false), http.StatusNotFound, "not_found")
	wantError(t, s.do(t, http.MethodGet, "/api/categories/slug/missing", "", false), http.StatusNotFound, "not_found")
	wantError(t, s.do(t, http.MethodDelete, "/api/categories/3d7a3c8e-2b1f-4c55-8e0d-5b9a1c2d3e4f", "", true), http.StatusNotFound, "not_found")
}
