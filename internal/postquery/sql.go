// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package postquery

import (
	"strconv"
	"strings"

	"inkwell/internal/models"
)

// Statement is a rendered listing query. Items selects the requested page,
// Count counts every row matching the same predicate.
type Statement struct {
	Items     string
	ItemsArgs []any
	Count     string
	CountArgs []any
}

// orderBy maps each sort onto its primary key. Every ordering ends with
// p.id so rows with equal sort values keep a stable position across pages.
var orderBy = map[models.PostSort]string{
	models.SortNewest:      `p.created_at DESC`,
	models.SortOldest:      `p.created_at ASC`,
	models.SortTitle:       `p.title COLLATE "C" ASC`,
	models.SortReadingTime: `p.reading_time DESC`,
}

// Build renders q as PostgreSQL statements selecting columns from posts
// aliased as p. q must come from Normalize.
func Build(q models.PostQuery, columns string) Statement {
	where, args := predicate(q.Filter)

	order, ok := orderBy[q.Sort]
	if !ok {
		order = orderBy[models.SortNewest]
	}

	var items strings.Builder
	items.WriteString(`SELECT ` + columns + ` FROM posts p`)
	items.WriteString(where)
	items.WriteString(` ORDER BY ` + order + `, p.id ASC`)
	items.WriteString(` LIMIT $` + strconv.Itoa(len(args)+1))
	items.WriteString(` OFFSET $` + strconv.Itoa(len(args)+2))

	itemsArgs := make([]any, 0, len(args)+2)
	itemsArgs = append(itemsArgs, args...)
	itemsArgs = append(itemsArgs, q.PageSize, q.Offset())

	return Statement{
		Items:     items.String(),
		ItemsArgs: itemsArgs,
		Count:     `SELECT COUNT(*) FROM posts p` + where,
		CountArgs: args,
	}
}

// predicate renders the WHERE clause shared by the item and count queries.
// The category condition is a semi-join, so a post linked to several
// matching categories still yields exactly one row.
func predicate(f models.PostFilter) (string, []any) {
	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.PublishedOnly {
		conds = append(conds, `p.is_published = TRUE`)
	}

	if f.Search != "" {
		ph := next("%" + EscapeLike(f.Search) + "%")
		conds = append(conds, `(p.title ILIKE `+ph+` ESCAPE '\'`+
			` OR COALESCE(p.excerpt, '') ILIKE `+ph+` ESCAPE '\'`+
			` OR p.content ILIKE `+ph+` ESCAPE '\')`)
	}

	if f.HasCategory() {
		var match []string
		if len(f.CategoryIDs) > 0 {
			ids := make([]string, len(f.CategoryIDs))
			for i, id := range f.CategoryIDs {
				ids[i] = id.String()
			}
			match = append(match, `pc.category_id = ANY(`+next(ids)+`::text[]::uuid[])`)
		}
		if len(f.CategorySlugs) > 0 {
			match = append(match, `c.slug = ANY(`+next(f.CategorySlugs)+`::text[])`)
		}
		conds = append(conds, `EXISTS (SELECT 1 FROM post_categories pc`+
			` JOIN categories c ON c.id = pc.category_id`+
			` WHERE pc.post_id = p.id AND (`+strings.Join(match, ` OR `)+`))`)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
