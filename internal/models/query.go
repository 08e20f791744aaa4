package models

import "github.com/google/uuid"

// PostSort selects the ordering of a post listing.
type PostSort string

const (
	SortNewest      PostSort = "newest"
	SortOldest      PostSort = "oldest"
	SortTitle       PostSort = "title"
	SortReadingTime PostSort = "readingTime"
)

// PostFilter narrows a post listing. All set fields are combined with AND.
// CategoryIDs and CategorySlugs together form one "linked to any of" test.
type PostFilter struct {
	PublishedOnly bool
	Search        string
	CategoryIDs   []uuid.UUID
	CategorySlugs []string
}

// HasCategory reports whether the filter restricts by category.
func (f PostFilter) HasCategory() bool {
	return len(f.CategoryIDs) > 0 || len(f.CategorySlugs) > 0
}

// PostQuery is a validated listing request. Page is 1-based.
type PostQuery struct {
	Filter   PostFilter
	Sort     PostSort
	Page     int
	PageSize int
}

// Offset returns the number of rows skipped before the requested page.
func (q PostQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// PostPage is one page of a post listing.
type PostPage struct {
	Items      []Post     `json:"items"`
	Pagination Pagination `json:"pagination"`
}
