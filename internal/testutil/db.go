package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codr1/poemgrid/internal/catalog"
	"github.com/codr1/poemgrid/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// SampleBooks is a small catalog with a colored poem, a plain poem and an empty one.
func SampleBooks() []catalog.Book {
	return []catalog.Book{
		{
			Title:        "Tulips and Chimneys",
			Slug:         "tulips",
			PublicDomain: true,
			Poems: []catalog.Poem{
				{Title: "Primaries", Slug: "primaries", Text: "red blue red"},
				{Title: "Pets", Slug: "pets", Text: "the cat and the dog"},
			},
		},
		{
			Title:        "XLI Poems",
			Slug:         "xli",
			PublicDomain: true,
			Poems: []catalog.Poem{
				{Title: "(untitled)", Slug: "silence", Text: "... 123 ---"},
			},
		},
	}
}

// NewSeededDB returns a test database holding SampleBooks.
func NewSeededDB(t *testing.T) *db.DB {
	t.Helper()

	database := NewTestDB(t)
	if err := database.ReplaceCatalog(context.Background(), SampleBooks()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return database
}
