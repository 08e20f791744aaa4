// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package service implements the post and category operations on top of
// the storage interfaces. Every mutating operation checks the admin
// capability before it validates input or touches storage, and every
// error it returns is an *apperr.Error.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/postquery"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// TxManager runs fn atomically. Repositories called with the context
// passed to fn take part in the same transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PostRepository persists posts. Lookups return nil, nil when the row
// does not exist; writes report slug collisions as slug.ErrTaken.
type PostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Insert(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, q models.PostQuery) ([]models.Post, int, error)
	Stats(ctx context.Context) (models.Stats, error)
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	SlugTaken(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Insert(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ExistingIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	ForPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]models.Category, error)
}

// LinkRepository persists post_categories rows.
type LinkRepository interface {
	DeleteByPost(ctx context.Context, postID uuid.UUID) error
	Insert(ctx context.Context, postID uuid.UUID, categoryIDs []uuid.UUID) error
	ListByPost(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}

// Notifier receives an event after each committed mutation. Delivery is
// best effort; implementations must not block for long.
type Notifier interface {
	Publish(ctx context.Context, ev models.ChangeEvent)
}

// Deps are the collaborators a Service is built from. Notifier may be nil.
type Deps struct {
	Tx         TxManager
	Posts      PostRepository
	Categories CategoryRepository
	Links      LinkRepository
	Notifier   Notifier
}

// Options tune service behavior. Zero values select the defaults.
type Options struct {
	Paging          postquery.Limits
	SlugMaxAttempts int
	SyncPolicy      SyncPolicy
}

// Service groups the post and category operation surfaces.
type Service struct {
	Posts        *PostService
	Categories   *CategoryService
	Associations *AssociationManager
}

// New wires a Service from deps.
func New(deps Deps, opts Options) *Service {
	if opts.Paging.MaxPageSize == 0 && opts.Paging.DefaultPageSize == 0 {
		opts.Paging = postquery.DefaultLimits()
	}
	if opts.SyncPolicy == "" {
		opts.SyncPolicy = SyncLenient
	}

	lookup := slugLookup{posts: deps.Posts, categories: deps.Categories}
	slugs := slug.NewGenerator(lookup, opts.SlugMaxAttempts)
	assoc := &AssociationManager{
		tx:         deps.Tx,
		categories: deps.Categories,
		links:      deps.Links,
		policy:     opts.SyncPolicy,
	}

	return &Service{
		Posts: &PostService{
			tx:         deps.Tx,
			posts:      deps.Posts,
			categories: deps.Categories,
			links:      deps.Links,
			assoc:      assoc,
			slugs:      slugs,
			notifier:   deps.Notifier,
			paging:     opts.Paging,
		},
		Categories: &CategoryService{
			tx:         deps.Tx,
			categories: deps.Categories,
			posts:      deps.Posts,
			links:      deps.Links,
			slugs:      slugs,
			notifier:   deps.Notifier,
		},
		Associations: assoc,
	}
}

// slugLookup routes slug probes to the repository owning the namespace.
type slugLookup struct {
	posts      PostRepository
	categories CategoryRepository
}

func (l slugLookup) SlugTaken(ctx context.Context, ns slug.Namespace, candidate string, excludeID *uuid.UUID) (bool, error) {
	if ns == slug.NamespaceCategories {
		return l.categories.SlugTaken(ctx, candidate, excludeID)
	}
	return l.posts.SlugTaken(ctx, candidate, excludeID)
}

// RequireAdmin fails with PermissionDenied unless ctx carries the admin
// capability.
func RequireAdmin(ctx context.Context) error {
	if !authz.IsAdmin(ctx) {
		return apperr.PermissionDenied("admin capability required")
	}
	return nil
}

// storageError converts a repository error into an *apperr.Error. Errors
// that already carry a kind pass through unchanged.
func storageError(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, slug.ErrExhausted), errors.Is(err, slug.ErrTaken):
		return apperr.Conflict("no free slug could be derived; choose a different title", err)
	case errors.Is(err, store.ErrInUse):
		return apperr.Conflict("category is still assigned to posts", err)
	case errors.Is(err, store.ErrMissingReference):
		return apperr.Conflict("a referenced category no longer exists", err)
	}

	slog.Error("storage operation failed", "op", op, "error", err)
	return apperr.Unavailable(err)
}

// publish hands ev to the notifier, if any.
func publish(ctx context.Context, n Notifier, ev models.ChangeEvent) {
	if n == nil {
		return
	}
	n.Publish(ctx, ev)
}
