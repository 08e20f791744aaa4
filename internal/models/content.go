// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostState is the publishing state of a post. It is derived from the
// IsPublished flag; there is no separate column.
type PostState string

const (
	PostStateDraft     PostState = "draft"
	PostStatePublished PostState = "published"
)

// Post is a single article. Slug is unique among posts and is re-derived
// whenever the title changes. WordCount and ReadingTime are computed from
// Content and are never accepted from callers.
type Post struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Excerpt       *string   `json:"excerpt,omitempty"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	IsPublished   bool      `json:"is_published"`
	WordCount     int       `json:"word_count"`
	ReadingTime   int       `json:"reading_time"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Populated by the service from post_categories.
	Categories []Category `json:"categories"`
}

// State returns the post's position in the draft/published state machine.
func (p *Post) State() PostState {
	if p.IsPublished {
		return PostStatePublished
	}
	return PostStateDraft
}

// PostCategoryLink is one row of the post_categories relation.
type PostCategoryLink struct {
	PostID     uuid.UUID `json:"post_id"`
	CategoryID uuid.UUID `json:"category_id"`
}

// PostInput carries the caller-supplied fields for creating a post.
// CategoryIDs is optional; nil and empty both mean "no categories".
type PostInput struct {
	Title         string      `json:"title" validate:"required,max=300"`
	Content       string      `json:"content" validate:"max=100000"`
	Excerpt       *string     `json:"excerpt" validate:"omitempty,max=1000"`
	CoverImageURL *string     `json:"cover_image_url" validate:"omitempty,url,max=2048"`
	IsPublished   bool        `json:"is_published"`
	CategoryIDs   []uuid.UUID `json:"category_ids"`
}

// PostPatch is a partial update. A nil field is left untouched.
//
//   - Title: replaces the title and re-derives the slug.
//   - Content: replaces the content and recomputes word count and reading time.
//   - Excerpt, CoverImageURL: replace the value; an empty string clears it.
//   - IsPublished: sets the publishing state explicitly.
//   - CategoryIDs: replaces the full category set; an empty slice clears it.
type PostPatch struct {
	Title         *string      `json:"title" validate:"omitempty,max=300"`
	Content       *string      `json:"content" validate:"omitempty,max=100000"`
	Excerpt       *string      `json:"excerpt" validate:"omitempty,max=1000"`
	CoverImageURL *string      `json:"cover_image_url" validate:"omitempty,url,max=2048"`
	IsPublished   *bool        `json:"is_published"`
	CategoryIDs   *[]uuid.UUID `json:"category_ids"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *PostPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Excerpt == nil &&
		p.CoverImageURL == nil && p.IsPublished == nil && p.CategoryIDs == nil
}

// Stats aggregates counts across the whole repository.
type Stats struct {
	TotalCategories  int `json:"total_categories"`
	TotalPosts       int `json:"total_posts"`
	PublishedPosts   int `json:"published_posts"`
	TotalReadingTime int `json:"total_reading_time"`
}
