package postquery

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

func intPtr(n int) *int { return &n }

func TestParseSort(t *testing.T) {
	tests := []struct {
		input   string
		want    models.PostSort
		wantErr bool
	}{
		{"", models.SortNewest, false},
		{"newest", models.SortNewest, false},
		{"oldest", models.SortOldest, false},
		{"title", models.SortTitle, false},
		{"readingTime", models.SortReadingTime, false},
		{"readingtime", "", true},
		{"popular", "", true},
		{"; DROP TABLE posts", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSort(tt.input)
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSort(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	q, err := Normalize(Request{}, DefaultLimits())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Page != 1 || q.PageSize != 12 || q.Sort != models.SortNewest {
		t.Errorf("defaults = page %d size %d sort %q, want 1/12/newest", q.Page, q.PageSize, q.Sort)
	}
}

func TestNormalize_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"page zero", Request{Page: intPtr(0)}},
		{"negative page", Request{Page: intPtr(-3)}},
		{"page size zero", Request{PageSize: intPtr(0)}},
		{"page size over max", Request{PageSize: intPtr(101)}},
		{"page offset overflows", Request{Page: intPtr(math.MaxInt)}},
		{"page offset overflows at max size", Request{Page: intPtr(math.MaxInt/100 + 2), PageSize: intPtr(100)}},
		{"bad sort", Request{Sort: "random"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.req, DefaultLimits())
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNormalize_Bounds(t *testing.T) {
	q, err := Normalize(Request{PageSize: intPtr(100), Page: intPtr(7)}, DefaultLimits())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.PageSize != 100 || q.Page != 7 {
		t.Errorf("got page %d size %d", q.Page, q.PageSize)
	}

	q, err = Normalize(Request{PageSize: intPtr(1)}, DefaultLimits())
	if err != nil || q.PageSize != 1 {
		t.Errorf("page size 1 should be accepted: %v", err)
	}

	last := math.MaxInt/100 + 1
	q, err = Normalize(Request{PageSize: intPtr(100), Page: intPtr(last)}, DefaultLimits())
	if err != nil {
		t.Fatalf("largest representable page rejected: %v", err)
	}
	if q.Offset() < 0 {
		t.Errorf("offset overflowed: %d", q.Offset())
	}
}

func TestNormalize_CustomLimits(t *testing.T) {
	lim := Limits{DefaultPageSize: 5, MaxPageSize: 20}
	q, err := Normalize(Request{}, lim)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.PageSize != 5 {
		t.Errorf("PageSize = %d, want 5", q.PageSize)
	}
	if _, err := Normalize(Request{PageSize: intPtr(21)}, lim); err == nil {
		t.Error("expected error above custom max")
	}
}

func TestNormalize_CleansFilter(t *testing.T) {
	id := uuid.New()
	q, err := Normalize(Request{Filter: models.PostFilter{
		Search:        "  golang  ",
		CategoryIDs:   []uuid.UUID{id, id},
		CategorySlugs: []string{"go", " go ", "", "rust"},
	}}, DefaultLimits())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if q.Filter.Search != "golang" {
		t.Errorf("Search = %q, want %q", q.Filter.Search, "golang")
	}
	if len(q.Filter.CategoryIDs) != 1 {
		t.Errorf("CategoryIDs = %v, want one id", q.Filter.CategoryIDs)
	}
	if got := strings.Join(q.Filter.CategorySlugs, ","); got != "go,rust" {
		t.Errorf("CategorySlugs = %q, want %q", got, "go,rust")
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                  string
		total, page, pageSize int
		wantPages             int
	}{
		{"no rows", 0, 1, 12, 0},
		{"one row", 1, 1, 12, 1},
		{"exactly one page", 12, 1, 12, 1},
		{"thirteen rows", 13, 2, 12, 2},
		{"many", 250, 3, 100, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.total, tt.page, tt.pageSize)
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
			if p.Total != tt.total || p.Page != tt.page || p.PageSize != tt.pageSize {
				t.Errorf("pagination fields not carried through: %+v", p)
			}
		})
	}
}

func TestLess_TieBreakByID(t *testing.T) {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	low := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	high := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	a := &models.Post{ID: high, Title: "Same", CreatedAt: ts, ReadingTime: 3}
	b := &models.Post{ID: low, Title: "Same", CreatedAt: ts, ReadingTime: 3}

	for _, sort := range []models.PostSort{models.SortNewest, models.SortOldest, models.SortTitle, models.SortReadingTime} {
		if Less(a, b, sort) {
			t.Errorf("%s: higher id must not sort before lower id on a tie", sort)
		}
		if !Less(b, a, sort) {
			t.Errorf("%s: lower id should sort first on a tie", sort)
		}
	}
}

func TestLess_PrimaryKeys(t *testing.T) {
	older := &models.Post{ID: uuid.New(), Title: "b", CreatedAt: time.Unix(100, 0), ReadingTime: 1}
	newer := &models.Post{ID: uuid.New(), Title: "B", CreatedAt: time.Unix(200, 0), ReadingTime: 9}

	if !Less(newer, older, models.SortNewest) {
		t.Error("newest: newer post should come first")
	}
	if !Less(older, newer, models.SortOldest) {
		t.Error("oldest: older post should come first")
	}
	if !Less(newer, older, models.SortTitle) {
		t.Error("title: uppercase sorts before lowercase in byte order")
	}
	if !Less(newer, older, models.SortReadingTime) {
		t.Error("readingTime: longer read should come first")
	}
}

func TestMatch(t *testing.T) {
	goCat := models.Category{ID: uuid.New(), Slug: "go"}
	rustCat := models.Category{ID: uuid.New(), Slug: "rust"}
	excerpt := "A short Summary"
	post := &models.Post{
		Title:       "Concurrency patterns",
		Content:     "channels and select",
		Excerpt:     &excerpt,
		IsPublished: false,
	}

	tests := []struct {
		name   string
		cats   []models.Category
		filter models.PostFilter
		want   bool
	}{
		{"empty filter", nil, models.PostFilter{}, true},
		{"published only excludes draft", nil, models.PostFilter{PublishedOnly: true}, false},
		{"search title case-insensitive", nil, models.PostFilter{Search: "CONCURRENCY"}, true},
		{"search excerpt", nil, models.PostFilter{Search: "summary"}, true},
		{"search content", nil, models.PostFilter{Search: "SELECT"}, true},
		{"search miss", nil, models.PostFilter{Search: "generics"}, false},
		{"category id hit", []models.Category{goCat}, models.PostFilter{CategoryIDs: []uuid.UUID{goCat.ID}}, true},
		{"category id miss", []models.Category{rustCat}, models.PostFilter{CategoryIDs: []uuid.UUID{goCat.ID}}, false},
		{"category slug hit", []models.Category{goCat, rustCat}, models.PostFilter{CategorySlugs: []string{"rust"}}, true},
		{"category filter without links", nil, models.PostFilter{CategorySlugs: []string{"go"}}, false},
		{"any of several categories", []models.Category{rustCat}, models.PostFilter{CategoryIDs: []uuid.UUID{goCat.ID, rustCat.ID}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(post, tt.cats, tt.filter); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainsFold(t *testing.T) {
	tests := []struct {
		s, substr string
		want      bool
	}{
		{"Concurrency patterns", "PATTERN", true},
		{"Concurrency patterns", "", true},
		{"", "a", false},
		{"go", "golang", false},
		{"ΟΔΟΣ ΚΑΙ ΔΡΟΜΟΣ", "οδος", true},
		{"Η οδός", "ΟΔΌΣ", true},
		{"Absolute zero is 0\u212A", "0k", true},
		{"Mi\u017Fsissippi", "MISS", true},
		{"héllo wörld", "WÖR", true},
		{"héllo", "hello", false},
	}
	for _, tt := range tests {
		t.Run(tt.s+"/"+tt.substr, func(t *testing.T) {
			if got := containsFold(tt.s, tt.substr); got != tt.want {
				t.Errorf("containsFold(%q, %q) = %v, want %v", tt.s, tt.substr, got, tt.want)
			}
		})
	}
}

func TestMatchSearchFoldsFinalSigma(t *testing.T) {
	post := &models.Post{Title: "Ο δρόμος", Content: "body"}
	if !Match(post, nil, models.PostFilter{Search: "ΔΡΌΜΟΣ"}) {
		t.Error("search should match the title regardless of sigma form")
	}
}
