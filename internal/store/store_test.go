// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// uniq returns prefix with a random suffix so tests sharing a database
// never collide on slugs.
func uniq(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// createPost inserts a draft post with the given slug and registers its removal.
func createPost(t *testing.T, db *sql.DB, slug, title string) *models.Post {
	t.Helper()
	p, err := NewPostStore(db).Insert(context.Background(), &models.Post{
		Slug: slug, Title: title, Content: "body", WordCount: 1, ReadingTime: 1,
	})
	if err != nil {
		t.Fatalf("insert post: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", p.ID) })
	return p
}

// createCategory inserts a category with the given slug and registers its removal.
func createCategory(t *testing.T, db *sql.DB, slug, name string) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Insert(context.Background(), &models.Category{
		Slug: slug, Name: name, ColorVariant: models.DefaultColor,
	})
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM post_categories WHERE category_id = $1", c.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}
