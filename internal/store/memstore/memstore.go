// Package memstore is an in-memory implementation of the content stores.
// It enforces the same constraints as the PostgreSQL schema (unique slugs,
// restricted category deletes, cascading post deletes) and returns the
// same sentinel errors, so services behave identically on either backend.
package memstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

type txKey struct{}

// Store holds every table. Use Posts, Categories and Links for the
// per-table views.
type Store struct {
	mu         sync.RWMutex
	posts      map[uuid.UUID]models.Post
	categories map[uuid.UUID]models.Category
	links      map[uuid.UUID]map[uuid.UUID]struct{} // post -> categories

	calls   atomic.Int64
	faultMu sync.Mutex
	faults  map[string]error
	now     func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		posts:      make(map[uuid.UUID]models.Post),
		categories: make(map[uuid.UUID]models.Category),
		links:      make(map[uuid.UUID]map[uuid.UUID]struct{}),
		faults:     make(map[string]error),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Posts returns the posts view.
func (s *Store) Posts() *PostStore { return &PostStore{s: s} }

// Categories returns the categories view.
func (s *Store) Categories() *CategoryStore { return &CategoryStore{s: s} }

// Links returns the post_categories view.
func (s *Store) Links() *LinkStore { return &LinkStore{s: s} }

// Calls returns the number of storage operations performed so far.
func (s *Store) Calls() int64 { return s.calls.Load() }

// FailOn makes the next call of op return err. op is the method name
// prefixed by its view, e.g. "links.Insert".
func (s *Store) FailOn(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = err
}

func (s *Store) takeFault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	err := s.faults[op]
	delete(s.faults, op)
	return err
}

// WithTx runs fn with exclusive access to the store. If fn fails, every
// change it made is discarded. Nested calls join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls.Add(1)
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.posts, s.categories, s.links = snap.posts, snap.categories, snap.links
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// begin counts the call, takes the lock unless ctx already owns it, and
// returns any fault registered for op. The returned func releases the lock.
func (s *Store) begin(ctx context.Context, op string, write bool) (func(), error) {
	s.calls.Add(1)
	release := func() {}
	if !s.inTx(ctx) {
		if write {
			s.mu.Lock()
			release = s.mu.Unlock
		} else {
			s.mu.RLock()
			release = s.mu.RUnlock
		}
	}
	if err := ctx.Err(); err != nil {
		release()
		return nil, err
	}
	if err := s.takeFault(op); err != nil {
		release()
		return nil, err
	}
	return release, nil
}

type tables struct {
	posts      map[uuid.UUID]models.Post
	categories map[uuid.UUID]models.Category
	links      map[uuid.UUID]map[uuid.UUID]struct{}
}

func (s *Store) snapshot() tables {
	t := tables{
		posts:      make(map[uuid.UUID]models.Post, len(s.posts)),
		categories: make(map[uuid.UUID]models.Category, len(s.categories)),
		links:      make(map[uuid.UUID]map[uuid.UUID]struct{}, len(s.links)),
	}
	for k, v := range s.posts {
		t.posts[k] = v
	}
	for k, v := range s.categories {
		t.categories[k] = v
	}
	for k, set := range s.links {
		cp := make(map[uuid.UUID]struct{}, len(set))
		for c := range set {
			cp[c] = struct{}{}
		}
		t.links[k] = cp
	}
	return t
}

// countLinks returns the number of posts linked to categoryID.
func (s *Store) countLinks(categoryID uuid.UUID) int {
	n := 0
	for _, set := range s.links {
		if _, ok := set[categoryID]; ok {
			n++
		}
	}
	return n
}

// categoriesOf returns the categories linked to postID.
func (s *Store) categoriesOf(postID uuid.UUID) []models.Category {
	var out []models.Category
	for id := range s.links[postID] {
		if c, ok := s.categories[id]; ok {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out
}

// ErrFault is a convenience error for FailOn.
var ErrFault = errors.New("injected fault")
