package postquery

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Match reports whether p, linked to cats, satisfies f. It is the
// in-memory counterpart of the SQL predicate.
func Match(p *models.Post, cats []models.Category, f models.PostFilter) bool {
	if f.PublishedOnly && !p.IsPublished {
		return false
	}

	if f.Search != "" {
		excerpt := ""
		if p.Excerpt != nil {
			excerpt = *p.Excerpt
		}
		if !containsFold(p.Title, f.Search) &&
			!containsFold(excerpt, f.Search) &&
			!containsFold(p.Content, f.Search) {
			return false
		}
	}

	if f.HasCategory() {
		found := false
		for _, c := range cats {
			if containsID(f.CategoryIDs, c) || containsSlug(f.CategorySlugs, c) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Less orders a before b under sort, breaking ties by ascending id.
func Less(a, b *models.Post, sort models.PostSort) bool {
	switch sort {
	case models.SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case models.SortTitle:
		if a.Title != b.Title {
			return a.Title < b.Title
		}
	case models.SortReadingTime:
		if a.ReadingTime != b.ReadingTime {
			return a.ReadingTime > b.ReadingTime
		}
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// containsFold reports whether substr occurs in s under Unicode simple
// case folding, so "ς", "σ" and "Σ" all match each other.
func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	n := utf8.RuneCountInString(substr)
	for i := 0; i < len(s); {
		j := i
		for k := 0; k < n; k++ {
			if j >= len(s) {
				return false
			}
			_, size := utf8.DecodeRuneInString(s[j:])
			j += size
		}
		if strings.EqualFold(s[i:j], substr) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return false
}

func containsID(ids []uuid.UUID, c models.Category) bool {
	for _, id := range ids {
		if id == c.ID {
			return true
		}
	}
	return false
}

func containsSlug(slugs []string, c models.Category) bool {
	for _, s := range slugs {
		if s == c.Slug {
			return true
		}
	}
	return false
}
