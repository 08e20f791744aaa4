// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package postquery turns a raw post listing request into a validated
// models.PostQuery and renders it as SQL. Items and count are rendered from
// the same predicate so the pagination metadata always agrees with the page
// contents.
package postquery

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// Page size bounds used when none are configured.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Limits configures paging defaults.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultLimits returns the standard paging limits.
func DefaultLimits() Limits {
	return Limits{DefaultPageSize: DefaultPageSize, MaxPageSize: MaxPageSize}
}

// Request is an unvalidated listing request. A nil Page or PageSize selects
// the default; an empty Sort selects newest first.
type Request struct {
	Filter   models.PostFilter
	Sort     string
	Page     *int
	PageSize *int
}

// ParseSort maps a sort key onto a PostSort. The empty string means newest.
func ParseSort(s string) (models.PostSort, error) {
	switch models.PostSort(s) {
	case "":
		return models.SortNewest, nil
	case models.SortNewest, models.SortOldest, models.SortTitle, models.SortReadingTime:
		return models.PostSort(s), nil
	}
	return "", apperr.Validation(fmt.Sprintf("unknown sort %q (want newest, oldest, title or readingTime)", s))
}

// Normalize validates req against lim and returns the query to execute.
// Search text is trimmed and category references are de-duplicated.
func Normalize(req Request, lim Limits) (models.PostQuery, error) {
	if lim.MaxPageSize <= 0 {
		lim.MaxPageSize = MaxPageSize
	}
	if lim.DefaultPageSize <= 0 || lim.DefaultPageSize > lim.MaxPageSize {
		lim.DefaultPageSize = min(DefaultPageSize, lim.MaxPageSize)
	}

	sort, err := ParseSort(req.Sort)
	if err != nil {
		return models.PostQuery{}, err
	}

	page := 1
	if req.Page != nil {
		page = *req.Page
	}
	if page < 1 {
		return models.PostQuery{}, apperr.Validation("page must be at least 1")
	}

	pageSize := lim.DefaultPageSize
	if req.PageSize != nil {
		pageSize = *req.PageSize
	}
	if pageSize < 1 || pageSize > lim.MaxPageSize {
		return models.PostQuery{}, apperr.Validation(fmt.Sprintf("page size must be between 1 and %d", lim.MaxPageSize))
	}
	// The row offset must stay representable for both backends.
	if page-1 > math.MaxInt/pageSize {
		return models.PostQuery{}, apperr.Validation("page is too large")
	}

	return models.PostQuery{
		Filter: models.PostFilter{
			PublishedOnly: req.Filter.PublishedOnly,
			Search:        strings.TrimSpace(req.Filter.Search),
			CategoryIDs:   uniqueIDs(req.Filter.CategoryIDs),
			CategorySlugs: uniqueStrings(req.Filter.CategorySlugs),
		},
		Sort:     sort,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// NewPagination computes page metadata for total matching rows.
func NewPagination(total, page, pageSize int) models.Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
