package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

func (s *testServer) createPost(t *testing.T, body string) models.Post {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/posts", body, true)
	wantStatus(t, rr, http.StatusCreated)
	var p models.Post
	decode(t, rr, &p)
	return p
}

func (s *testServer) createCategory(t *testing.T, name string) models.Category {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/categories", fmt.Sprintf(`{"name":%q}`, name), true)
	wantStatus(t, rr, http.StatusCreated)
	var c models.Category
	decode(t, rr, &c)
	return c
}

func TestCreateAndFetchPost(t *testing.T) {
	s := newTestServer(t, service.Options{})

	rr := s.do(t, http.MethodPost, "/api/posts", `{"title":"Hello World","content":"one two three"}`, true)
	wantStatus(t, rr, http.StatusCreated)
	var p models.Post
	decode(t, rr, &p)

	if p.Slug != "hello-world" {
		t.Errorf("slug = %q, want hello-world", p.Slug)
	}
	if p.WordCount != 3 || p.ReadingTime != 1 {
		t.Errorf("metrics = %d words / %d min, want 3 / 1", p.WordCount, p.ReadingTime)
	}
	if got := rr.Header().Get("Location"); got != "/api/posts/"+p.ID.String() {
		t.Errorf("Location = %q", got)
	}

	t.Run("draft is hidden from anonymous readers", func(t *testing.T) {
		wantError(t, s.do(t, http.MethodGet, "/api/posts/"+p.ID.String(), "", false), http.StatusNotFound, "not_found")
		wantError(t, s.do(t, http.MethodGet, "/api/posts/slug/hello-world", "", false), http.StatusNotFound, "not_found")
	})

	t.Run("admin sees the draft", func(t *testing.T) {
		wantStatus(t, s.do(t, http.MethodGet, "/api/posts/"+p.ID.String(), "", true), http.StatusOK)
	})

	t.Run("published post is public", func(t *testing.T) {
		wantStatus(t, s.do(t, http.MethodPost, "/api/posts/"+p.ID.String()+"/publish", "", true), http.StatusOK)

		rr := s.do(t, http.MethodGet, "/api/posts/slug/hello-world", "", false)
		wantStatus(t, rr, http.StatusOK)
		var got models.Post
		decode(t, rr, &got)
		if got.ID != p.ID || !got.IsPublished {
			t.Errorf("got %+v", got)
		}
	})
}

func TestMutationsWithoutTokenAreForbidden(t *testing.T) {
	s := newTestServer(t, service.Options{})
	const id = "6f1c1f0e-2a55-4f55-9d0e-1b1f0d0a9c11"

	tests := []struct {
		name, method, path, body string
	}{
		{"create post", http.MethodPost, "/api/posts", `{"title":"x"}`},
		{"create post with bad json", http.MethodPost, "/api/posts", `{"title":`},
		{"update post", http.MethodPatch, "/api/posts/" + id, `{"title":"x"}`},
		{"update post with bad id", http.MethodPatch, "/api/posts/not-a-uuid", `{}`},
		{"delete post", http.MethodDelete, "/api/posts/" + id, ""},
		{"publish", http.MethodPost, "/api/posts/" + id + "/publish", ""},
		{"set categories", http.MethodPut, "/api/posts/" + id + "/categories", `{"category_ids":[]}`},
		{"create category", http.MethodPost, "/api/categories", `{"name":""}`},
		{"update category", http.MethodPatch, "/api/categories/" + id, `{"name":"x"}`},
		{"delete category", http.MethodDelete, "/api/categories/" + id, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.store.Calls()
			wantError(t, s.do(t, tt.method, tt.path, tt.body, false), http.StatusForbidden, "permission_denied")
			if s.store.Calls() != before {
				t.Errorf("storage was touched %d times", s.store.Calls()-before)
			}
		})
	}
}

func TestCreatePostRejectsBadBodies(t *testing.T) {
	s := newTestServer(t, service.Options{})

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing body", "", "request body is required"},
		{"malformed", `{"title":`, "request body is not valid JSON"},
		{"not an object", `["a"]`, "request body must be a JSON object"},
		{"wrong type", `{"title": 5}`, "title has the wrong type"},
		{"unknown field", `{"title":"a","author":"b"}`, `unknown field "author"`},
		{"trailing data", `{"title":"a"} {"title":"b"}`, "request body must contain a single JSON object"},
		{"blank title", `{"title":"   "}`, "title is required"},
		{"title too long", `{"title":"` + strings.Repeat("x", 301) + `"}`, "title is too long"},
		{"relative cover url", `{"title":"a","cover_image_url":"/img.png"}`, "cover_image_url must be an absolute URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := wantError(t, s.do(t, http.MethodPost, "/api/posts", tt.body, true), http.StatusBadRequest, "validation")
			if !strings.Contains(body.Error.Message, tt.msg) {
				t.Errorf("message = %q, want it to contain %q", body.Error.Message, tt.msg)
			}
		})
	}
}

func TestUpdatePost(t *testing.T) {
	s := newTestServer(t, service.Options{})
	p := s.createPost(t, `{"title":"Before"}`)
	path := "/api/posts/" + p.ID.String()

	rr := s.do(t, http.MethodPatch, path, `{"title":"After","content":"a b"}`, true)
	wantStatus(t, rr, http.StatusOK)
	var got models.Post
	decode(t, rr, &got)
	if got.Slug != "after" || got.WordCount != 2 {
		t.Errorf("got slug %q, %d words", got.Slug, got.WordCount)
	}

	wantError(t, s.do(t, http.MethodPatch, path, `{}`, true), http.StatusBadRequest, "validation")
	wantError(t, s.do(t, http.MethodPatch, "/api/posts/9b2e4c54-5d2b-4a4e-8d7b-0d6f3f1b2a10", `{"title":"x"}`, true), http.StatusNotFound, "not_found")
	wantError(t, s.do(t, http.MethodPatch, "/api/posts/nope", `{"title":"x"}`, true), http.StatusNotFound, "not_found")
}

func TestTogglePublish(t *testing.T) {
	s := newTestServer(t, service.Options{})
	p := s.createPost(t, `{"title":"Toggle me"}`)
	path := "/api/posts/" + p.ID.String() + "/publish"

	tests := []struct {
		name string
		body string
		want bool
	}{
		{"flip on", "", true},
		{"flip off", "", false},
		{"explicit true", `{"published":true}`, true},
		{"explicit true again", `{"published":true}`, true},
		{"explicit false", `{"published":false}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPost, path, tt.body, true)
			wantStatus(t, rr, http.StatusOK)
			var got models.Post
			decode(t, rr, &got)
			if got.IsPublished != tt.want {
				t.Errorf("is_published = %v, want %v", got.IsPublished, tt.want)
			}
		})
	}
}

func TestDeletePost(t *testing.T) {
	s := newTestServer(t, service.Options{})
	p := s.createPost(t, `{"title":"Short lived"}`)
	path := "/api/posts/" + p.ID.String()

	wantStatus(t, s.do(t, http.MethodDelete, path, "", true), http.StatusNoContent)
	wantError(t, s.do(t, http.MethodGet, path, "", true), http.StatusNotFound, "not_found")
	wantError(t, s.do(t, http.MethodDelete, path, "", true), http.StatusNotFound, "not_found")
}

func TestSetPostCategories(t *testing.T) {
	s := newTestServer(t, service.Options{SyncPolicy: service.SyncStrict})
	go1 := s.createCategory(t, "Go")
	db := s.createCategory(t, "Databases")
	p := s.createPost(t, `{"title":"Linked"}`)
	path := "/api/posts/" + p.ID.String() + "/categories"

	body := fmt.Sprintf(`{"category_ids":[%q,%q,%q]}`, go1.ID, db.ID, go1.ID)
	rr := s.do(t, http.MethodPut, path, body, true)
	wantStatus(t, rr, http.StatusOK)
	var got models.Post
	decode(t, rr, &got)
	if len(got.Categories) != 2 {
		t.Fatalf("categories = %+v, want 2", got.Categories)
	}

	t.Run("unknown id under strict policy", func(t *testing.T) {
		body := fmt.Sprintf(`{"category_ids":[%q,"0b6c1d55-94a4-4d3c-9f3e-7e1a2b3c4d5e"]}`, go1.ID)
		wantError(t, s.do(t, http.MethodPut, path, body, true), http.StatusBadRequest, "validation")
	})

	t.Run("malformed id", func(t *testing.T) {
		wantError(t, s.do(t, http.MethodPut, path, `{"category_ids":["abc"]}`, true), http.StatusBadRequest, "validation")
	})

	t.Run("empty set clears", func(t *testing.T) {
		rr := s.do(t, http.MethodPut, path, `{"category_ids":[]}`, true)
		wantStatus(t, rr, http.StatusOK)
		var got models.Post
		decode(t, rr, &got)
		if len(got.Categories) != 0 {
			t.Errorf("categories = %+v, want none", got.Categories)
		}
	})
}

func TestListPosts(t *testing.T) {
	s := newTestServer(t, service.Options{})
	tech := s.createCategory(t, "Tech")
	for i, title := range []string{"Charlie", "alpha", "Bravo"} {
		body := fmt.Sprintf(`{"title":%q,"is_published":%v}`, title, i != 2)
		if i == 0 {
			body = fmt.Sprintf(`{"title":%q,"is_published":true,"category_ids":[%q]}`, title, tech.ID)
		}
		s.createPost(t, body)
	}

	list := func(t *testing.T, query string, admin bool) models.PostPage {
		t.Helper()
		rr := s.do(t, http.MethodGet, "/api/posts"+query, "", admin)
		wantStatus(t, rr, http.StatusOK)
		var page models.PostPage
		decode(t, rr, &page)
		return page
	}

	t.Run("anonymous readers only see published posts", func(t *testing.T) {
		page := list(t, "", false)
		if page.Pagination.Total != 2 {
			t.Errorf("total = %d, want 2", page.Pagination.Total)
		}
	})

	t.Run("admin sees drafts", func(t *testing.T) {
		page := list(t, "?sort=title", true)
		var titles []string
		for _, p := range page.Items {
			titles = append(titles, p.Title)
		}
		if got := strings.Join(titles, ","); got != "Bravo,Charlie,alpha" {
			t.Errorf("titles = %s", got)
		}
	})

	t.Run("published filter for admin", func(t *testing.T) {
		if page := list(t, "?published=true", true); page.Pagination.Total != 2 {
			t.Errorf("total = %d, want 2", page.Pagination.Total)
		}
	})

	t.Run("category filters", func(t *testing.T) {
		byID := list(t, "?category="+tech.ID.String()+"&category="+tech.ID.String(), true)
		bySlug := list(t, "?category_slug=tech", true)
		for _, page := range []models.PostPage{byID, bySlug} {
			if page.Pagination.Total != 1 || len(page.Items) != 1 || page.Items[0].Title != "Charlie" {
				t.Errorf("page = %+v", page)
				continue
			}
			if len(page.Items[0].Categories) != 1 || page.Items[0].Categories[0].Slug != "tech" {
				t.Errorf("embedded categories = %+v", page.Items[0].Categories)
			}
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page := list(t, "?page=2&page_size=2", true)
		if len(page.Items) != 1 {
			t.Errorf("items = %d, want 1", len(page.Items))
		}
		want := models.Pagination{Page: 2, PageSize: 2, Total: 3, TotalPages: 2}
		if page.Pagination != want {
			t.Errorf("pagination = %+v, want %+v", page.Pagination, want)
		}
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page := list(t, "?page=9", true)
		if page.Items == nil || len(page.Items) != 0 {
			t.Errorf("items = %#v, want empty array", page.Items)
		}
	})

	t.Run("search", func(t *testing.T) {
		if page := list(t, "?search=ALPH", true); page.Pagination.Total != 1 {
			t.Errorf("total = %d, want 1", page.Pagination.Total)
		}
	})

	for _, query := range []string{
		"?page=0",
		"?page=x",
		"?page=9223372036854775807",
		"?page_size=101",
		"?page_size=-1",
		"?sort=popular",
		"?published=maybe",
		"?category=not-a-uuid",
	} {
		t.Run("rejects "+query, func(t *testing.T) {
			wantError(t, s.do(t, http.MethodGet, "/api/posts"+query, "", true), http.StatusBadRequest, "validation")
		})
	}
}

func TestStorageFailureIsServiceUnavailable(t *testing.T) {
	s := newTestServer(t, service.Options{})
	s.store.FailOn("posts.List", errors.New("connection reset by peer"))

	body := wantError(t, s.do(t, http.MethodGet, "/api/posts", "", false), http.StatusServiceUnavailable, "service_unavailable")
	if strings.Contains(body.Error.Message, "connection reset") {
		t.Errorf("message leaks the cause: %q", body.Error.Message)
	}
}
