package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/slug"
)

var (
	// ErrInUse is returned when a row cannot be deleted because other rows
	// still reference it.
	ErrInUse = errors.New("row is still referenced")

	// ErrMissingReference is returned when a link points at a row that
	// does not exist.
	ErrMissingReference = errors.New("referenced row does not exist")
)

// SQLSTATE codes handled by the stores.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Constraint names declared by the migrations.
const (
	postsSlugKey      = "posts_slug_key"
	categoriesSlugKey = "categories_slug_key"
)

// translate wraps err with op and maps known constraint violations onto
// the sentinel errors callers branch on.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation &&
			(pgErr.ConstraintName == postsSlugKey || pgErr.ConstraintName == categoriesSlugKey):
			return fmt.Errorf("%s: %w", op, slug.ErrTaken)
		case pgErr.Code == codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrInUse, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
