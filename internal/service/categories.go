// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// CategoryService implements the categories operation surface.
type CategoryService struct {
	tx         TxManager
	categories CategoryRepository
	posts      PostRepository
	links      LinkRepository
	slugs      *slug.Generator
	notifier   Notifier
}

// List returns every category with its post count.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, storageError("list categories", err)
	}
	if items == nil {
		items = []models.Category{}
	}
	return items, nil
}

// GetByID returns a category by id.
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, storageError("find category", err)
	}
	if c == nil {
		return nil, apperr.NotFound("category not found")
	}
	return c, nil
}

// GetBySlug returns a category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slugText string) (*models.Category, error) {
	if strings.TrimSpace(slugText) == "" {
		return nil, apperr.Validation("slug is required")
	}
	c, err := s.categories.FindBySlug(ctx, slugText)
	if err != nil {
		return nil, storageError("find category", err)
	}
	if c == nil {
		return nil, apperr.NotFound("category not found")
	}
	return c, nil
}

// Stats returns repository-wide counts.
func (s *CategoryService) Stats(ctx context.Context) (*models.Stats, error) {
	st, err := s.posts.Stats(ctx)
	if err != nil {
		return nil, storageError("content stats", err)
	}
	return &st, nil
}

// Create stores a new category with a slug derived from its name. An
// unknown color variant falls back to the default.
func (s *CategoryService) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = blankToNil(trimPtr(in.Description))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	row := &models.Category{
		Name:         in.Name,
		Description:  in.Description,
		ColorVariant: models.CoerceColor(strings.TrimSpace(in.ColorVariant)),
	}

	var created *models.Category
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		_, err := s.slugs.Claim(ctx, in.Name, slug.NamespaceCategories, nil, func(ctx context.Context, candidate string) error {
			row.Slug = candidate
			c, err := s.categories.Insert(ctx, row)
			if err != nil {
				return err
			}
			created = c
			return nil
		})
		return err
	})
	if err != nil {
		return nil, storageError("create category", err)
	}

	slog.Info("category created", "id", created.ID, "slug", created.Slug)
	publish(ctx, s.notifier, models.ChangeEvent{Entity: models.EntityCategory, Action: models.ActionCreated, ID: created.ID, Slug: created.Slug})
	return created, nil
}

// Update applies patch to the category with id. A changed name
// re-derives the slug.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if patch.Name == nil && patch.Description == nil && patch.ColorVariant == nil {
		return nil, apperr.Validation("no fields to update")
	}

	patch.Name = trimPtr(patch.Name)
	if patch.Name != nil && *patch.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	patch.Description = trimPtr(patch.Description)
	check := patch
	check.Description = blankToNil(patch.Description)
	if err := validateStruct(check); err != nil {
		return nil, err
	}

	var updated *models.Category
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		cur, err := s.categories.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFound("category not found")
		}

		next := *cur
		if patch.Description != nil {
			next.Description = blankToNil(patch.Description)
		}
		if patch.ColorVariant != nil {
			next.ColorVariant = models.CoerceColor(strings.TrimSpace(*patch.ColorVariant))
		}

		write := func(ctx context.Context) error {
			c, err := s.categories.Update(ctx, &next)
			if err != nil {
				return err
			}
			if c == nil {
				return apperr.NotFound("category not found")
			}
			updated = c
			return nil
		}

		if patch.Name != nil && *patch.Name != cur.Name {
			next.Name = *patch.Name
			_, err := s.slugs.Claim(ctx, next.Name, slug.NamespaceCategories, &id, func(ctx context.Context, candidate string) error {
				next.Slug = candidate
				return write(ctx)
			})
			return err
		}
		return write(ctx)
	})
	if err != nil {
		return nil, storageError("update category", err)
	}

	slog.Info("category updated", "id", updated.ID, "slug", updated.Slug)
	publish(ctx, s.notifier, models.ChangeEvent{Entity: models.EntityCategory, Action: models.ActionUpdated, ID: updated.ID, Slug: updated.Slug})
	return updated, nil
}

// Delete removes a category. It is refused with Conflict while any post
// is still linked to it.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := RequireAdmin(ctx); err != nil {
		return err
	}

	var gone *models.Category
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		c, err := s.categories.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("category not found")
		}

		n, err := s.links.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("category is still assigned to posts", nil)
		}

		deleted, err := s.categories.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.NotFound("category not found")
		}
		gone = c
		return nil
	})
	if err != nil {
		return storageError("delete category", err)
	}

	slog.Info("category deleted", "id", gone.ID, "slug", gone.Slug)
	publish(ctx, s.notifier, models.ChangeEvent{Entity: models.EntityCategory, Action: models.ActionDeleted, ID: gone.ID, Slug: gone.Slug})
	return nil
}
