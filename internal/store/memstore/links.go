package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/store"
)

// LinkStore is the post_categories view of a Store.
type LinkStore struct {
	s *Store
}

// DeleteByPost removes every link of postID.
func (r *LinkStore) DeleteByPost(ctx context.Context, postID uuid.UUID) error {
	done, err := r.s.begin(ctx, "links.DeleteByPost", true)
	if err != nil {
		return err
	}
	defer done()

	delete(r.s.links, postID)
	return nil
}

// Insert links postID to each of categoryIDs; existing pairs are kept.
// Unknown posts or categories fail with store.ErrMissingReference and
// leave the links untouched.
func (r *LinkStore) Insert(ctx context.Context, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	done, err := r.s.begin(ctx, "links.Insert", true)
	if err != nil {
		return err
	}
	defer done()

	if _, ok := r.s.posts[postID]; !ok {
		return fmt.Errorf("insert post links: %w", store.ErrMissingReference)
	}
	for _, id := range categoryIDs {
		if _, ok := r.s.categories[id]; !ok {
			return fmt.Errorf("insert post links: %w", store.ErrMissingReference)
		}
	}

	set, ok := r.s.links[postID]
	if !ok {
		set = make(map[uuid.UUID]struct{}, len(categoryIDs))
		r.s.links[postID] = set
	}
	for _, id := range categoryIDs {
		set[id] = struct{}{}
	}
	return nil
}

// ListByPost returns the category ids linked to postID.
func (r *LinkStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	done, err := r.s.begin(ctx, "links.ListByPost", false)
	if err != nil {
		return nil, err
	}
	defer done()

	var ids []uuid.UUID
	for id := range r.s.links[postID] {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	return ids, nil
}

// CountByCategory returns the number of posts linked to categoryID.
func (r *LinkStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	done, err := r.s.begin(ctx, "links.CountByCategory", false)
	if err != nil {
		return 0, err
	}
	defer done()
	return r.s.countLinks(categoryID), nil
}
