package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codr1/poemgrid/internal/catalog"
)

var ErrPoemNotFound = errors.New("poem not found")

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// CatalogRefresh records one completed catalog replacement.
type CatalogRefresh struct {
	ID          int64
	BookCount   int64
	PoemCount   int64
	RefreshedAt time.Time
}

const deleteBooks = `DELETE FROM books`

func (q *Queries) DeleteBooks(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteBooks)
	return err
}

const insertBook = `INSERT OR IGNORE INTO books (slug, title, json_url, position) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertBook(ctx context.Context, book catalog.Book, position int) error {
	_, err := q.db.ExecContext(ctx, insertBook, book.Slug, book.Title, book.JSONURL, position)
	return err
}

// Poem slugs are unique across the catalog; a later duplicate is ignored.
const insertPoem = `INSERT OR IGNORE INTO poems (slug, book_slug, title, source_url, json_url, body, position)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertPoem(ctx context.Context, poem catalog.Poem, position int) error {
	_, err := q.db.ExecContext(ctx, insertPoem,
		poem.Slug, poem.BookSlug, poem.Title, poem.SourceURL, poem.JSONURL, poem.Text, position)
	return err
}

const insertCatalogRefresh = `INSERT INTO catalog_refreshes (book_count, poem_count) VALUES (?, ?)`

func (q *Queries) InsertCatalogRefresh(ctx context.Context, bookCount, poemCount int64) error {
	_, err := q.db.ExecContext(ctx, insertCatalogRefresh, bookCount, poemCount)
	return err
}

const latestCatalogRefresh = `SELECT id, book_count, poem_count, refreshed_at
FROM catalog_refreshes ORDER BY id DESC LIMIT 1`

func (q *Queries) LatestCatalogRefresh(ctx context.Context) (CatalogRefresh, error) {
	var r CatalogRefresh
	err := q.db.QueryRowContext(ctx, latestCatalogRefresh).Scan(&r.ID, &r.BookCount, &r.PoemCount, &r.RefreshedAt)
	return r, err
}

const listBooks = `SELECT slug, title, json_url FROM books ORDER BY position`

func (q *Queries) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	rows, err := q.db.QueryContext(ctx, listBooks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []catalog.Book{}
	for rows.Next() {
		book := catalog.Book{PublicDomain: true}
		if err := rows.Scan(&book.Slug, &book.Title, &book.JSONURL); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

const poemColumns = `p.slug, p.title, p.book_slug, b.title, p.source_url, p.json_url, p.body`

const listPoems = `SELECT ` + poemColumns + `
FROM poems p JOIN books b ON b.slug = p.book_slug
ORDER BY b.position, p.position`

func (q *Queries) ListPoems(ctx context.Context) ([]catalog.Poem, error) {
	rows, err := q.db.QueryContext(ctx, listPoems)
	if err != nil {
		return nil, err
	}
	return scanPoems(rows)
}

const listPoemsByBook = `SELECT ` + poemColumns + `
FROM poems p JOIN books b ON b.slug = p.book_slug
WHERE p.book_slug = ?
ORDER BY p.position`

func (q *Queries) ListPoemsByBook(ctx context.Context, bookSlug string) ([]catalog.Poem, error) {
	rows, err := q.db.QueryContext(ctx, listPoemsByBook, bookSlug)
	if err != nil {
		return nil, err
	}
	return scanPoems(rows)
}

const getPoem = `SELECT ` + poemColumns + `
FROM poems p JOIN books b ON b.slug = p.book_slug
WHERE p.slug = ?`

func (q *Queries) GetPoem(ctx context.Context, slug string) (catalog.Poem, error) {
	var p catalog.Poem
	err := q.db.QueryRowContext(ctx, getPoem, slug).Scan(
		&p.Slug, &p.Title, &p.BookSlug, &p.BookTitle, &p.SourceURL, &p.JSONURL, &p.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Poem{}, ErrPoemNotFound
	}
	return p, err
}

const countPoems = `SELECT COUNT(*) FROM poems`

func (q *Queries) CountPoems(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPoems).Scan(&n)
	return n, err
}

func scanPoems(rows *sql.Rows) ([]catalog.Poem, error) {
	defer rows.Close()

	poems := []catalog.Poem{}
	for rows.Next() {
		var p catalog.Poem
		if err := rows.Scan(&p.Slug, &p.Title, &p.BookSlug, &p.BookTitle, &p.SourceURL, &p.JSONURL, &p.Text); err != nil {
			return nil, err
		}
		poems = append(poems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return poems, nil
}

// ReplaceCatalog swaps the stored catalog for books in a single transaction.
// Poems without a slug are not stored.
func (db *DB) ReplaceCatalog(ctx context.Context, books []catalog.Book) error {
	return db.RunInTx(ctx, func(tx *DB) error {
		if err := tx.Queries.DeleteBooks(ctx); err != nil {
			return fmt.Errorf("delete books: %w", err)
		}

		for i, book := range books {
			if err := tx.Queries.InsertBook(ctx, book, i); err != nil {
				return fmt.Errorf("insert book %q: %w", book.Slug, err)
			}
		}
		for i, poem := range catalog.Flatten(books) {
			if err := tx.Queries.InsertPoem(ctx, poem, i); err != nil {
				return fmt.Errorf("insert poem %q: %w", poem.Slug, err)
			}
		}
		poemCount, err := tx.Queries.CountPoems(ctx)
		if err != nil {
			return fmt.Errorf("count poems: %w", err)
		}

		if err := tx.Queries.InsertCatalogRefresh(ctx, int64(len(books)), poemCount); err != nil {
			return fmt.Errorf("record catalog refresh: %w", err)
		}
		return nil
	})
}

// LoadCatalog returns the stored books with their poems attached.
func (db *DB) LoadCatalog(ctx context.Context) ([]catalog.Book, error) {
	books, err := db.Queries.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	poems, err := db.Queries.ListPoems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list poems: %w", err)
	}

	index := make(map[string]int, len(books))
	for i, book := range books {
		index[book.Slug] = i
		books[i].Poems = []catalog.Poem{}
	}
	for _, poem := range poems {
		if i, ok := index[poem.BookSlug]; ok {
			books[i].Poems = append(books[i].Poems, poem)
		}
	}
	return books, nil
}

// GetPoem looks up a stored poem by slug.
func (db *DB) GetPoem(ctx context.Context, slug string) (catalog.Poem, error) {
	return db.Queries.GetPoem(ctx, slug)
}
