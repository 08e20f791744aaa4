// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
)

// Namespace names an independent slug space. Posts and categories may
// share a slug with each other but not within their own namespace.
type Namespace string

const (
	NamespacePosts      Namespace = "posts"
	NamespaceCategories Namespace = "categories"
)

// DefaultMaxAttempts bounds the suffix search so a pathological namespace
// fails with ErrExhausted instead of looping forever.
const DefaultMaxAttempts = 10_000

var (
	// ErrTaken is returned (wrapped) by storage writes that hit the unique
	// slug constraint. Claim treats it as a signal to try the next suffix.
	ErrTaken = errors.New("slug already taken")

	// ErrExhausted means no free candidate was found within the attempt budget.
	ErrExhausted = errors.New("slug attempts exhausted")
)

// Lookup answers whether a candidate slug is used by any row other than
// excludeID in the given namespace.
type Lookup interface {
	SlugTaken(ctx context.Context, ns Namespace, candidate string, excludeID *uuid.UUID) (bool, error)
}

// Generator resolves namespace-unique slugs. The probe is advisory; the
// storage unique constraint is authoritative, which is why Claim retries
// on ErrTaken.
type Generator struct {
	lookup      Lookup
	maxAttempts int
}

// NewGenerator creates a Generator. A non-positive maxAttempts selects
// DefaultMaxAttempts.
func NewGenerator(lookup Lookup, maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{lookup: lookup, maxAttempts: maxAttempts}
}

// Candidate returns the n-th candidate for base: base itself for n == 0,
// otherwise base-n.
func Candidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

// Generate returns the first candidate derived from raw that is free in ns.
// excludeID lets a row keep its own slug on update.
func (g *Generator) Generate(ctx context.Context, raw string, ns Namespace, excludeID *uuid.UUID) (string, error) {
	base := Normalize(raw)
	for n := 0; n < g.maxAttempts; n++ {
		candidate := Candidate(base, n)
		taken, err := g.lookup.SlugTaken(ctx, ns, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s %q: %w", ns, base, ErrExhausted)
}

// Claim finds a free candidate and hands it to write. If write reports
// ErrTaken (another request won the race between probe and insert) the
// next suffix is tried. Probes and failed writes share one attempt budget.
// It returns the slug that write accepted.
func (g *Generator) Claim(ctx context.Context, raw string, ns Namespace, excludeID *uuid.UUID, write func(ctx context.Context, candidate string) error) (string, error) {
	base := Normalize(raw)
	for n := 0; n < g.maxAttempts; n++ {
		candidate := Candidate(base, n)
		taken, err := g.lookup.SlugTaken(ctx, ns, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if taken {
			continue
		}

		err = write(ctx, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, ErrTaken) {
			return "", err
		}
		slugCollisions.WithLabelValues(string(ns)).Inc()
		slog.Debug("slug lost insert race, retrying", "namespace", ns, "slug", candidate)
	}
	return "", fmt.Errorf("%s %q: %w", ns, base, ErrExhausted)
}
