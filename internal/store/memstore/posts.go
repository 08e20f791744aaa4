package memstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/postquery"
	"inkwell/internal/slug"
)

// PostStore is the posts view of a Store.
type PostStore struct {
	s *Store
}

// FindByID returns the post with id, or nil.
func (r *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	done, err := r.s.begin(ctx, "posts.FindByID", false)
	if err != nil {
		return nil, err
	}
	defer done()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// FindBySlug returns the post with slug, or nil.
func (r *PostStore) FindBySlug(ctx context.Context, s string) (*models.Post, error) {
	done, err := r.s.begin(ctx, "posts.FindBySlug", false)
	if err != nil {
		return nil, err
	}
	defer done()

	for _, p := range r.s.posts {
		if p.Slug == s {
			return &p, nil
		}
	}
	return nil, nil
}

// SlugTaken reports whether a post other than excludeID uses s.
func (r *PostStore) SlugTaken(ctx context.Context, s string, excludeID *uuid.UUID) (bool, error) {
	done, err := r.s.begin(ctx, "posts.SlugTaken", false)
	if err != nil {
		return false, err
	}
	defer done()
	return r.slugUsed(s, excludeID), nil
}

func (r *PostStore) slugUsed(s string, excludeID *uuid.UUID) bool {
	for id, p := range r.s.posts {
		if p.Slug == s && (excludeID == nil || id != *excludeID) {
			return true
		}
	}
	return false
}

// Insert stores p. A duplicate slug fails with slug.ErrTaken.
func (r *PostStore) Insert(ctx context.Context, p *models.Post) (*models.Post, error) {
	done, err := r.s.begin(ctx, "posts.Insert", true)
	if err != nil {
		return nil, err
	}
	defer done()

	if r.slugUsed(p.Slug, nil) {
		return nil, fmt.Errorf("insert post: %w", slug.ErrTaken)
	}
	row := *p
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if _, exists := r.s.posts[row.ID]; exists {
		return nil, fmt.Errorf("insert post: duplicate id %s", row.ID)
	}
	now := r.s.now()
	row.CreatedAt, row.UpdatedAt = now, now
	row.Categories = nil
	r.s.posts[row.ID] = row
	return &row, nil
}

// Update replaces the mutable fields of the stored post. Returns nil if it
// does not exist.
func (r *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	done, err := r.s.begin(ctx, "posts.Update", true)
	if err != nil {
		return nil, err
	}
	defer done()

	cur, ok := r.s.posts[p.ID]
	if !ok {
		return nil, nil
	}
	if r.slugUsed(p.Slug, &p.ID) {
		return nil, fmt.Errorf("update post: %w", slug.ErrTaken)
	}
	row := *p
	row.CreatedAt = cur.CreatedAt
	row.UpdatedAt = r.s.now()
	row.Categories = nil
	r.s.posts[row.ID] = row
	return &row, nil
}

// Delete removes the post and its links.
func (r *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	done, err := r.s.begin(ctx, "posts.Delete", true)
	if err != nil {
		return false, err
	}
	defer done()

	if _, ok := r.s.posts[id]; !ok {
		return false, nil
	}
	delete(r.s.posts, id)
	delete(r.s.links, id)
	return true, nil
}

// List returns one page of posts matching q and the total match count.
func (r *PostStore) List(ctx context.Context, q models.PostQuery) ([]models.Post, int, error) {
	done, err := r.s.begin(ctx, "posts.List", false)
	if err != nil {
		return nil, 0, err
	}
	defer done()

	var matched []*models.Post
	for id := range r.s.posts {
		p := r.s.posts[id]
		var cats []models.Category
		if q.Filter.HasCategory() {
			cats = r.s.categoriesOf(id)
		}
		if postquery.Match(&p, cats, q.Filter) {
			matched = append(matched, &p)
		}
	}
	slices.SortFunc(matched, func(a, b *models.Post) int {
		switch {
		case postquery.Less(a, b, q.Sort):
			return -1
		case postquery.Less(b, a, q.Sort):
			return 1
		}
		return 0
	})

	total := len(matched)
	start := q.Offset()
	if start < 0 || start > total {
		start = total
	}
	end := start + min(q.PageSize, total-start)

	items := make([]models.Post, 0, end-start)
	for _, p := range matched[start:end] {
		items = append(items, *p)
	}
	return items, total, nil
}

// Stats aggregates counts over the whole store.
func (r *PostStore) Stats(ctx context.Context) (models.Stats, error) {
	done, err := r.s.begin(ctx, "posts.Stats", false)
	if err != nil {
		return models.Stats{}, err
	}
	defer done()

	st := models.Stats{
		TotalCategories: len(r.s.categories),
		TotalPosts:      len(r.s.posts),
	}
	for _, p := range r.s.posts {
		if p.IsPublished {
			st.PublishedPosts++
			st.TotalReadingTime += p.ReadingTime
		}
	}
	return st, nil
}
