// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, slug, name, description, color_variant, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }, extra ...any) (*models.Category, error) {
	var c models.Category
	dest := []any{
		&c.ID, &c.Slug, &c.Name, &c.Description,
		&c.ColorVariant, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name, with post counts.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.slug, c.name, c.description, c.color_variant,
		       c.created_at, c.updated_at,
		       COUNT(pc.post_id) AS post_count
		FROM categories c
		LEFT JOIN post_categories pc ON pc.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name COLLATE "C", c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		var count int
		c, err := scanCategory(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.PostCount = count
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.findOne(ctx, "find category by id", `WHERE c.id = $1`, id)
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, "find category by slug", `WHERE c.slug = $1`, slug)
}

func (s *CategoryStore) findOne(ctx context.Context, op, where string, arg any) (*models.Category, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	row := q.QueryRowContext(ctx, `
		SELECT c.id, c.slug, c.name, c.description, c.color_variant,
		       c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM post_categories pc WHERE pc.category_id = c.id)
		FROM categories c `+where, arg)

	var count int
	c, err := scanCategory(row, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.PostCount = count
	return c, nil
}

// SlugTaken reports whether a category other than excludeID uses slug.
func (s *CategoryStore) SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return slugTaken(ctx, s.db, "categories", slug, excludeID)
}

// Insert stores a new category and returns it. A slug collision is
// reported as slug.ErrTaken.
func (s *CategoryStore) Insert(ctx context.Context, c *models.Category) (*models.Category, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	var result *models.Category
	err = savepoint(ctx, q, "category_insert", func() error {
		row := q.QueryRowContext(ctx, `
			INSERT INTO categories (id, slug, name, description, color_variant)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+categoryColumns,
			c.ID, c.Slug, c.Name, c.Description, c.ColorVariant,
		)
		var scanErr error
		result, scanErr = scanCategory(row)
		return scanErr
	})
	if err != nil {
		return nil, translate("insert category", err)
	}
	return result, nil
}

// Update modifies an existing category. Returns nil if it no longer exists.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) (*models.Category, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	var result *models.Category
	err = savepoint(ctx, q, "category_update", func() error {
		row := q.QueryRowContext(ctx, `
			UPDATE categories SET
				slug = $1, name = $2, description = $3, color_variant = $4,
				updated_at = NOW()
			WHERE id = $5
			RETURNING `+categoryColumns,
			c.Slug, c.Name, c.Description, c.ColorVariant, c.ID,
		)
		var scanErr error
		result, scanErr = scanCategory(row)
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("update category", err)
	}
	result.PostCount = c.PostCount
	return result, nil
}

// Delete removes a category by ID and reports whether a row was deleted.
// A category that still has links fails with ErrInUse.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	res, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, translate("delete category", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return n > 0, nil
}

// ExistingIDs returns the subset of ids that belong to a category.
func (s *CategoryStore) ExistingIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	found := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("check category ids: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id FROM categories WHERE id = ANY($1::text[]::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("check category ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		found[id] = true
	}
	return found, rows.Err()
}

// ForPosts loads the categories of every post in postIDs with a single
// query. Posts without links are absent from the result.
func (s *CategoryStore) ForPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]models.Category, error) {
	out := make(map[uuid.UUID][]models.Category, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("load post categories: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT pc.post_id, c.id, c.slug, c.name, c.description, c.color_variant,
		       c.created_at, c.updated_at
		FROM post_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.post_id = ANY($1::text[]::uuid[])
		ORDER BY c.name COLLATE "C", c.id
	`, uuidStrings(postIDs))
	if err != nil {
		return nil, fmt.Errorf("load post categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var c models.Category
		if err := rows.Scan(
			&postID, &c.ID, &c.Slug, &c.Name, &c.Description,
			&c.ColorVariant, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post category: %w", err)
		}
		out[postID] = append(out[postID], c)
	}
	return out, rows.Err()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
