package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// CategoryStore is the categories view of a Store.
type CategoryStore struct {
	s *Store
}

// List returns every category ordered by name, with post counts.
func (r *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	done, err := r.s.begin(ctx, "categories.List", false)
	if err != nil {
		return nil, err
	}
	defer done()

	items := make([]models.Category, 0, len(r.s.categories))
	for id, c := range r.s.categories {
		c.PostCount = r.s.countLinks(id)
		items = append(items, c)
	}
	sortCategories(items)
	return items, nil
}

// FindByID returns the category with id, or nil.
func (r *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	done, err := r.s.begin(ctx, "categories.FindByID", false)
	if err != nil {
		return nil, err
	}
	defer done()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	c.PostCount = r.s.countLinks(id)
	return &c, nil
}

// FindBySlug returns the category with slug, or nil.
func (r *CategoryStore) FindBySlug(ctx context.Context, s string) (*models.Category, error) {
	done, err := r.s.begin(ctx, "categories.FindBySlug", false)
	if err != nil {
		return nil, err
	}
	defer done()

	for id, c := range r.s.categories {
		if c.Slug == s {
			c.PostCount = r.s.countLinks(id)
			return &c, nil
		}
	}
	return nil, nil
}

// SlugTaken reports whether a category other than excludeID uses s.
func (r *CategoryStore) SlugTaken(ctx context.Context, s string, excludeID *uuid.UUID) (bool, error) {
	done, err := r.s.begin(ctx, "categories.SlugTaken", false)
	if err != nil {
		return false, err
	}
	defer done()
	return r.slugUsed(s, excludeID), nil
}

func (r *CategoryStore) slugUsed(s string, excludeID *uuid.UUID) bool {
	for id, c := range r.s.categories {
		if c.Slug == s && (excludeID == nil || id != *excludeID) {
			return true
		}
	}
	return false
}

// Insert stores c. A duplicate slug fails with slug.ErrTaken.
func (r *CategoryStore) Insert(ctx context.Context, c *models.Category) (*models.Category, error) {
	done, err := r.s.begin(ctx, "categories.Insert", true)
	if err != nil {
		return nil, err
	}
	defer done()

	if r.slugUsed(c.Slug, nil) {
		return nil, fmt.Errorf("insert category: %w", slug.ErrTaken)
	}
	row := *c
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if _, exists := r.s.categories[row.ID]; exists {
		return nil, fmt.Errorf("insert category: duplicate id %s", row.ID)
	}
	now := r.s.now()
	row.CreatedAt, row.UpdatedAt = now, now
	row.PostCount = 0
	r.s.categories[row.ID] = row
	return &row, nil
}

// Update replaces the mutable fields of the stored category. Returns nil
// if it does not exist.
func (r *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	done, err := r.s.begin(ctx, "categories.Update", true)
	if err != nil {
		return nil, err
	}
	defer done()

	cur, ok := r.s.categories[c.ID]
	if !ok {
		return nil, nil
	}
	if r.slugUsed(c.Slug, &c.ID) {
		return nil, fmt.Errorf("update category: %w", slug.ErrTaken)
	}
	row := *c
	row.CreatedAt = cur.CreatedAt
	row.UpdatedAt = r.s.now()
	row.PostCount = 0
	r.s.categories[row.ID] = row

	row.PostCount = r.s.countLinks(row.ID)
	return &row, nil
}

// Delete removes the category. A category with links fails with
// store.ErrInUse, matching the ON DELETE RESTRICT foreign key.
func (r *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	done, err := r.s.begin(ctx, "categories.Delete", true)
	if err != nil {
		return false, err
	}
	defer done()

	if _, ok := r.s.categories[id]; !ok {
		return false, nil
	}
	if r.s.countLinks(id) > 0 {
		return false, fmt.Errorf("delete category: %w", store.ErrInUse)
	}
	delete(r.s.categories, id)
	return true, nil
}

// ExistingIDs returns the subset of ids that belong to a category.
func (r *CategoryStore) ExistingIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	done, err := r.s.begin(ctx, "categories.ExistingIDs", false)
	if err != nil {
		return nil, err
	}
	defer done()

	found := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.s.categories[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

// ForPosts returns the categories of each post in postIDs.
func (r *CategoryStore) ForPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]models.Category, error) {
	done, err := r.s.begin(ctx, "categories.ForPosts", false)
	if err != nil {
		return nil, err
	}
	defer done()

	out := make(map[uuid.UUID][]models.Category, len(postIDs))
	for _, id := range postIDs {
		if cats := r.s.categoriesOf(id); len(cats) > 0 {
			out[id] = cats
		}
	}
	return out, nil
}

// sortCategories orders by name in byte order, then id.
func sortCategories(cats []models.Category) {
	slices.SortFunc(cats, func(a, b models.Category) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
