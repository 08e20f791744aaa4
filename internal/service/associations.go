// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
)

// SyncPolicy decides what Sync does with category ids that do not exist.
type SyncPolicy string

const (
	// SyncLenient skips unknown ids.
	SyncLenient SyncPolicy = "lenient"
	// SyncStrict rejects the whole call before any link is touched.
	SyncStrict SyncPolicy = "strict"
)

// ParseSyncPolicy validates a policy name.
func ParseSyncPolicy(s string) (SyncPolicy, error) {
	switch p := SyncPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case SyncLenient, SyncStrict:
		return p, nil
	case "":
		return SyncLenient, nil
	}
	return "", fmt.Errorf("unknown category sync policy %q (want lenient or strict)", s)
}

// AssociationManager replaces the category set of a post.
type AssociationManager struct {
	tx         TxManager
	categories CategoryRepository
	links      LinkRepository
	policy     SyncPolicy
}

// Policy returns the configured unknown-id policy.
func (m *AssociationManager) Policy() SyncPolicy { return m.policy }

// Sync makes the links of postID exactly the de-duplicated set in
// categoryIDs. Existing links are deleted and the new ones inserted inside
// one transaction, so a failure leaves the previous set in place and no
// reader sees the post without categories mid-update. It joins the
// caller's transaction when ctx already carries one.
//
// The post must exist; callers check that first. Sync returns the ids that
// were linked.
func (m *AssociationManager) Sync(ctx context.Context, postID uuid.UUID, categoryIDs []uuid.UUID) ([]uuid.UUID, error) {
	if err := RequireAdmin(ctx); err != nil {
		return nil, err
	}
	desired := dedupe(categoryIDs)

	var linked []uuid.UUID
	err := m.tx.WithTx(ctx, func(ctx context.Context) error {
		known, err := m.categories.ExistingIDs(ctx, desired)
		if err != nil {
			return err
		}

		linked = make([]uuid.UUID, 0, len(desired))
		var unknown []string
		for _, id := range desired {
			if known[id] {
				linked = append(linked, id)
			} else {
				unknown = append(unknown, id.String())
			}
		}
		if len(unknown) > 0 {
			if m.policy == SyncStrict {
				return apperr.Validation("unknown category ids: " + strings.Join(unknown, ", "))
			}
			slog.Debug("skipping unknown category ids", "post_id", postID, "ids", unknown)
		}

		if err := m.links.DeleteByPost(ctx, postID); err != nil {
			return err
		}
		return m.links.Insert(ctx, postID, linked)
	})
	if err != nil {
		return nil, storageError("sync post categories", err)
	}
	return linked, nil
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
