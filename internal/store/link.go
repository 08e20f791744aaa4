// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// LinkStore manages the post_categories relation.
type LinkStore struct {
	db *sql.DB
}

// NewLinkStore returns a new LinkStore.
func NewLinkStore(db *sql.DB) *LinkStore {
	return &LinkStore{db: db}
}

// DeleteByPost removes every link of postID.
func (s *LinkStore) DeleteByPost(ctx context.Context, postID uuid.UUID) error {
	q, err := conn(ctx, s.db)
	if err != nil {
		return fmt.Errorf("delete post links: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete post links: %w", err)
	}
	return nil
}

// Insert links postID to each category in categoryIDs. Pairs that already
// exist are left alone. A category that vanished concurrently fails with
// ErrMissingReference.
func (s *LinkStore) Insert(ctx context.Context, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	q, err := conn(ctx, s.db)
	if err != nil {
		return fmt.Errorf("insert post links: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO post_categories (post_id, category_id)
		SELECT $1::uuid, UNNEST($2::text[]::uuid[])
		ON CONFLICT DO NOTHING
	`, postID, uuidStrings(categoryIDs))
	if isForeignKeyViolation(err) {
		return fmt.Errorf("insert post links: %w", ErrMissingReference)
	}
	if err != nil {
		return fmt.Errorf("insert post links: %w", err)
	}
	return nil
}

// ListByPost returns the category ids linked to postID.
func (s *LinkStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list post links: %w", err)
	}
	rows, err := q.QueryContext(ctx,
		`SELECT category_id FROM post_categories WHERE post_id = $1 ORDER BY category_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list post links: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan post link: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByCategory returns the number of posts linked to categoryID.
func (s *LinkStore) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("count category links: %w", err)
	}
	var n int
	err = q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM post_categories WHERE category_id = $1`, categoryID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count category links: %w", err)
	}
	return n, nil
}
