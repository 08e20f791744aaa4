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
	"inkwell/internal/postquery"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, slug, title, content, excerpt, cover_image_url, is_published,
	word_count, reading_time, created_at, updated_at`

const postColumnsAliased = `p.id, p.slug, p.title, p.content, p.excerpt, p.cover_image_url, p.is_published,
	p.word_count, p.reading_time, p.created_at, p.updated_at`

// scanPost scans a row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Content, &p.Excerpt, &p.CoverImageURL,
		&p.IsPublished, &p.WordCount, &p.ReadingTime, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "find post by id", `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

// FindBySlug retrieves a post by its slug. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, "find post by slug", `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
}

func (s *PostStore) findOne(ctx context.Context, op, query string, arg any) (*models.Post, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := scanPost(q.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// SlugTaken reports whether a post other than excludeID uses slug.
func (s *PostStore) SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	return slugTaken(ctx, s.db, "posts", slug, excludeID)
}

// Insert stores a new post and returns it as persisted. A slug collision
// is reported as slug.ErrTaken and leaves the surrounding transaction usable.
func (s *PostStore) Insert(ctx context.Context, p *models.Post) (*models.Post, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	var result *models.Post
	err = savepoint(ctx, q, "post_insert", func() error {
		row := q.QueryRowContext(ctx, `
			INSERT INTO posts (id, slug, title, content, excerpt, cover_image_url,
			                   is_published, word_count, reading_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+postColumns,
			p.ID, p.Slug, p.Title, p.Content, p.Excerpt, p.CoverImageURL,
			p.IsPublished, p.WordCount, p.ReadingTime,
		)
		var scanErr error
		result, scanErr = scanPost(row)
		return scanErr
	})
	if err != nil {
		return nil, translate("insert post", err)
	}
	return result, nil
}

// Update writes every mutable column of p and bumps updated_at. Returns
// nil if the post no longer exists.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	var result *models.Post
	err = savepoint(ctx, q, "post_update", func() error {
		row := q.QueryRowContext(ctx, `
			UPDATE posts SET
				slug = $1, title = $2, content = $3, excerpt = $4,
				cover_image_url = $5, is_published = $6, word_count = $7,
				reading_time = $8, updated_at = NOW()
			WHERE id = $9
			RETURNING `+postColumns,
			p.Slug, p.Title, p.Content, p.Excerpt, p.CoverImageURL,
			p.IsPublished, p.WordCount, p.ReadingTime, p.ID,
		)
		var scanErr error
		result, scanErr = scanPost(row)
		return scanErr
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("update post", err)
	}
	return result, nil
}

// Delete removes a post by ID and reports whether a row was deleted.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	q, err := conn(ctx, s.db)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	res, err := q.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, translate("delete post", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return n > 0, nil
}

// List returns one page of posts matching q together with the total number
// of matching posts. Both statements run in one read-only snapshot when no
// transaction is active, so the total agrees with the page.
func (s *PostStore) List(ctx context.Context, query models.PostQuery) ([]models.Post, int, error) {
	st := postquery.Build(query, postColumnsAliased)

	var items []models.Post
	var total int
	err := s.readSnapshot(ctx, func(q querier) error {
		if err := q.QueryRowContext(ctx, st.Count, st.CountArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count posts: %w", err)
		}

		rows, err := q.QueryContext(ctx, st.Items, st.ItemsArgs...)
		if err != nil {
			return fmt.Errorf("list posts: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPost(rows)
			if err != nil {
				return fmt.Errorf("scan post: %w", err)
			}
			items = append(items, *p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// readSnapshot runs fn against the context transaction, or inside a new
// repeatable-read transaction when there is none.
func (s *PostStore) readSnapshot(ctx context.Context, fn func(q querier) error) error {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(tx)
	}
	if s.db == nil {
		return ErrNotConfigured
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Stats aggregates post and category counts. Reading time is summed over
// published posts only.
func (s *PostStore) Stats(ctx context.Context) (models.Stats, error) {
	var st models.Stats
	q, err := conn(ctx, s.db)
	if err != nil {
		return st, fmt.Errorf("content stats: %w", err)
	}
	err = q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM categories),
			COUNT(*),
			COUNT(*) FILTER (WHERE is_published),
			COALESCE(SUM(reading_time) FILTER (WHERE is_published), 0)
		FROM posts
	`).Scan(&st.TotalCategories, &st.TotalPosts, &st.PublishedPosts, &st.TotalReadingTime)
	if err != nil {
		return st, fmt.Errorf("content stats: %w", err)
	}
	return st, nil
}

// slugTaken probes table for slug, ignoring the row excludeID.
func slugTaken(ctx context.Context, db *sql.DB, table, slug string, excludeID *uuid.UUID) (bool, error) {
	q, err := conn(ctx, db)
	if err != nil {
		return false, fmt.Errorf("probe %s slug: %w", table, err)
	}

	var exists bool
	if excludeID == nil {
		err = q.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE slug = $1)`, slug,
		).Scan(&exists)
	} else {
		err = q.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE slug = $1 AND id <> $2)`, slug, *excludeID,
		).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("probe %s slug: %w", table, err)
	}
	return exists, nil
}
