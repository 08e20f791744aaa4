// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/authz"
	"inkwell/internal/markdown"
	"inkwell/internal/models"
	"inkwell/internal/postquery"
	"inkwell/internal/slug"
)

var errPostGone = errors.New("post disappeared during update")

// PostService implements the posts operation surface.
type PostService struct {
	tx         TxManager
	posts      PostRepository
	categories CategoryRepository
	links      LinkRepository
	assoc      *AssociationManager
	slugs      *slug.Generator
	notifier   Notifier
	paging     postquery.Limits
}

// List returns one page of posts with their categories embedded. Callers
// without the admin capability only ever see published posts.
func (s *PostService) List(ctx context.Context, req postquery.Request) (*models.PostPage, error) {
	if !authz.IsAdmin(ctx) {
		req.Filter.PublishedOnly = true
	}
	q, err := postquery.Normalize(req, s.paging)
	if err != nil {
		return nil, err
	}

	items, total, err := s.posts.List(ctx, q)
	if err != nil {
		return nil, storageError("list posts", err)
	}
	if err := s.embedCategories(ctx, items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Post{}
	}

	return &models.PostPage{
		Items:      items,
		Pagination: postquery.NewPagination(total, q.Page, q.PageSize),
	}, nil
}

// GetByID returns a post by id. Drafts are NotFound for non-admins.
func (s *PostService) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, storageError("find post", err)
	}
	return s.visible(ctx, p)
}

// GetBySlug returns a post by slug. Drafts are NotFound for non-admins.
func (s *PostService) GetBySlug(ctx context.Context, slugText string) (*models.Post, error) {
	if strings.TrimSpace(slugText) == "" {
		return nil, apperr.Validation("slug is required")
	}
	p, err := s.posts.FindBySlug(ctx, slugText)
	if err != nil {
		return nil, storageError("find post", err)
	}
	return s.visible(ctx, p)
}

func (s *PostService) visible(ctx context.Context, p *models.Post) (*models.Post, error) {
	if p == nil || (!p.IsPublished && !authz.IsAdmin(ctx)) {
		return nil, apperr.NotFound("post not found")
	}
	if err := s.loadCategories(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Create stores a new post. The slug is derived from the title and the
// metrics from the content; a non-nil CategoryIDs is synced in the same
// transaction.
func (s *PostService) Create(ctx context.Context, in models.PostInput) (*models.Post, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = blankToNil(trimPtr(in.Excerpt))
	in.CoverImageURL = blankToNil(trimPtr(in.CoverImageURL))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	metrics := markdown.Measure(in.Content)
	row := &models.Post{
		Title:         in.Title,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		CoverImageURL: in.CoverImageURL,
		IsPublished:   in.IsPublished,
		WordCount:     metrics.WordCount,
		ReadingTime:   metrics.ReadingTime,
	}

	var created *models.Post
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		_, err := s.slugs.Claim(ctx, in.Title, slug.NamespacePosts, nil, func(ctx context.Context, candidate string) error {
			row.Slug = candidate
			p, err := s.posts.Insert(ctx, row)
			if err != nil {
				return err
			}
			created = p
			return nil
		})
		if err != nil {
			return err
		}
		if in.CategoryIDs != nil {
			if _, err := s.assoc.Sync(ctx, created.ID, in.CategoryIDs); err != nil {
				return err
			}
		}
		return s.loadCategories(ctx, created)
	})
	if err != nil {
		return nil, storageError("create post", err)
	}

	slog.Info("post created", "id", created.ID, "slug", created.Slug, "published", created.IsPublished)
	publish(ctx, s.notifier, models.ChangeEvent{Entity: models.EntityPost, Action: models.ActionCreated, ID: created.ID, Slug: created.Slug})
	return created, nil
}

// Update applies patch to the post with id. A changed title re-derives the
// slug, changed content recomputes the metrics and a non-nil CategoryIDs
// replaces the category set, all in one transaction.
func (s *PostService) Update(ctx context.Context, id uuid.UUID, patch models.PostPatch) (*models.Post, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperr.Validation("no fields to update")
	}

	patch.Title = trimPtr(patch.Title)
	if patch.Title != nil && *patch.Title == "" {
		return nil, apperr.Validation("title is required")
	}
	patch.Excerpt = trimPtr(patch.Excerpt)
	patch.CoverImageURL = trimPtr(patch.CoverImageURL)
	check := patch
	check.Excerpt = blankToNil(patch.Excerpt)
	check.CoverImageURL = blankToNil(patch.CoverImageURL)
	if err := validateStruct(check); err != nil {
		return nil, err
	}

	var updated *models.Post
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		cur, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFound("post not found")
		}

		next := *cur
		if patch.Excerpt != nil {
			next.Excerpt = blankToNil(patch.Excerpt)
		}
		if patch.CoverImageURL != nil {
			next.CoverImageURL = blankToNil(patch.CoverImageURL)
		}
		if patch.IsPublished != nil {
			next.IsPublished = *patch.IsPublished
		}
		if patch.Content != nil {
			m := markdown.Measure(*patch.Content)
			next.Content, next.WordCount, next.ReadingTime = *patch.Content, m.WordCount, m.ReadingTime
		}

		if patch.Title != nil && *patch.Title != cur.Title {
			next.Title = *patch.Title
			_, err = s.slugs.Claim(ctx, next.Title, slug.NamespacePosts, &id, func(ctx context.Context, candidate string) error {
				next.Slug = candidate
				updated, err = s.write(ctx, &next)
				return err
			})
		} else {
			updated, err = s.write(ctx, &next)
		}
		if err != nil {
			return err
		}

		if patch.CategoryIDs != nil {
			if _, err := s.assoc.Sync(ctx, id, *patch.CategoryIDs); err != nil {
				return err
			}
		}
		return s.loadCategories(ctx, updated)
	})
	if errors.Is(err, errPostGone) {
		return nil, apperr.NotFound("post not found")
	}
	if err != nil {
		return nil, storageError("update post", err)
	}

	slog.Info("post updated", "id", updated.ID, "slug", updated.Slug)
	publish(ctx, s.notifier, models.ChangeEvent{Entity: models.EntityPost, Action: models.ActionUpdated, ID: updated.ID, Slug: updated.Slug})
	return updated, nil
}

// write persists p and maps a vanished row onto errPostGone.
func (s *PostService) write(ctx context.Context, p *models.Post) (*models.Post, error) {
	out, err := s.posts.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errPostGone
	}
	return out, nil
}

// Delete removes a post together with its category links.
func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := RequireAdmin(ctx); err != nil {
		return err
	}

	var gone *models.Post
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.NotFound("post not found")
		}
		if err := s.links.DeleteByPost(ctx, id); err != nil {
			return err
		}
		deleted, err := s.posts.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return apperr.NotFound("post not found")
		}
		gone = p
		return nil
	})
	if err != nil {
		return storageError("delete post", err)
	}

	slog.Info("post deleted", "id", gone.ID, "slug", gone.Slug)
	publish(ctx, s.notifier, models.ChangeEvent{Entity: models.EntityPost, Action: models.ActionDeleted, ID: gone.ID, Slug: gone.Slug})
	return nil
}

// TogglePublish flips the publishing state, or sets it to *explicit when
// explicit is non-nil.
func (s *PostService) TogglePublish(ctx context.Context, id uuid.UUID, explicit *bool) (*models.Post, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	var updated *models.Post
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		cur, err := s.posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFound("post not found")
		}

		next := *cur
		next.IsPublished = !cur.IsPublished
		if explicit != nil {
			next.IsPublished = *explicit
		}
		if updated, err = s.write(ctx, &next); err != nil {
			return err
		}
		return s.loadCategories(ctx, updated)
	})
	if errors.Is(err, errPostGone) {
		return nil, apperr.NotFound("post not found")
	}
	if err != nil {
		return nil, storageError("toggle publish", err)
	}

	action := models.ActionUnpublished
	if updated.IsPublished {
		action = models.ActionPublished
	}
	slog.Info("post "+action, "id", updated.ID, "slug", updated.Slug)
	publish(ctx, s.notifier, models.ChangeEvent{Entity: models.EntityPost, Action: action, ID: updated.ID, Slug: updated.Slug})
	return updated, nil
}

// SetCategories replaces the category set of a post.
func (s *PostService) SetCategories(ctx context.Context, id uuid.UUID, categoryIDs []uuid.UUID) (*models.Post, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}

	var p *models.Post
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.posts.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.NotFound("post not found")
		}
		if _, err := s.assoc.Sync(ctx, id, categoryIDs); err != nil {
			return err
		}
		return s.loadCategories(ctx, p)
	})
	if err != nil {
		return nil, storageError("set post categories", err)
	}

	slog.Info("post categories replaced", "id", p.ID, "slug", p.Slug, "count", len(p.Categories))
	publish(ctx, s.notifier, models.ChangeEvent{Entity: models.EntityPost, Action: models.ActionUpdated, ID: p.ID, Slug: p.Slug})
	return p, nil
}

// loadCategories fills p.Categories.
func (s *PostService) loadCategories(ctx context.Context, p *models.Post) error {
	byPost, err := s.categories.ForPosts(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return storageError("load post categories", err)
	}
	p.Categories = byPost[p.ID]
	if p.Categories == nil {
		p.Categories = []models.Category{}
	}
	return nil
}

// embedCategories fills Categories for every post in items with one query.
func (s *PostService) embedCategories(ctx context.Context, items []models.Post) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	byPost, err := s.categories.ForPosts(ctx, ids)
	if err != nil {
		return storageError("load post categories", err)
	}
	for i := range items {
		items[i].Categories = byPost[items[i].ID]
		if items[i].Categories == nil {
			items[i].Categories = []models.Category{}
		}
	}
	return nil
}
