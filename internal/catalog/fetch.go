package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultOrigin      = "https://cummings.ee"
	booksIndexPath     = "/downloads/books.json"
	untitledPoem       = "(untitled)"
	defaultConcurrency = 8
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 16 << 20
)

var ErrIndexUnavailable = errors.New("books index unavailable")

// Fetcher builds the poem collection from a remote books index.
type Fetcher struct {
	origin      *url.URL
	client      *http.Client
	concurrency int
}

type bookRecord struct {
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	PublicDomain bool   `json:"public_domain"`
	JSONURL      string `json:"json_url"`
}

type tocEntry struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
	URL     string `json:"url"`
	Slug    string `json:"slug"`
}

type poemRecord struct {
	Text *string `json:"text"`
	HTML *string `json:"html"`
}

// NewFetcher returns a Fetcher for origin. A nil client gets a 30s timeout and a
// non-positive concurrency falls back to 8 parallel requests.
func NewFetcher(origin string, client *http.Client, concurrency int) (*Fetcher, error) {
	if strings.TrimSpace(origin) == "" {
		origin = DefaultOrigin
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse catalog origin: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("catalog origin must be absolute: %q", origin)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Fetcher{origin: parsed, client: client, concurrency: concurrency}, nil
}

// FetchDocumentCollection fetches every book and flattens their poems.
func (f *Fetcher) FetchDocumentCollection(ctx context.Context) ([]Poem, error) {
	books, err := f.FetchBooks(ctx)
	if err != nil {
		return nil, err
	}
	return Flatten(books), nil
}

// FetchBooks loads the books index, keeps public-domain books and resolves each
// table of contents. Only a failure of the index itself is an error; a book or poem
// that cannot be fetched is logged and left empty.
func (f *Fetcher) FetchBooks(ctx context.Context) ([]Book, error) {
	logger := log.Ctx(ctx).With().Str("component", "catalog_fetcher").Str("origin", f.origin.String()).Logger()

	indexURL := f.origin.ResolveReference(&url.URL{Path: booksIndexPath}).String()
	var raw json.RawMessage
	if err := f.getJSON(ctx, indexURL, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexUnavailable, err)
	}

	var records []*bookRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		logger.Warn().Err(err).Msg("Books index is not a list")
		records = nil
	}

	books := make([]Book, 0, len(records))
	for _, record := range records {
		if record == nil || !record.PublicDomain {
			continue
		}
		books = append(books, Book{
			Title:        record.Title,
			Slug:         record.Slug,
			PublicDomain: true,
			JSONURL:      record.JSONURL,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i := range books {
		book := &books[i]
		g.Go(func() error {
			book.Poems = f.fetchBookPoems(gctx, logger, book)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch books: %w", err)
	}

	logger.Info().Int("book_count", len(books)).Msg("Fetched books index")
	return books, nil
}

func (f *Fetcher) fetchBookPoems(ctx context.Context, logger zerolog.Logger, book *Book) []Poem {
	if book.JSONURL == "" {
		return []Poem{}
	}
	bookLogger := logger.With().Str("book_slug", book.Slug).Str("json_url", book.JSONURL).Logger()

	var payload struct {
		TOC json.RawMessage `json:"toc"`
	}
	if err := f.getJSON(ctx, book.JSONURL, &payload); err != nil {
		bookLogger.Warn().Err(err).Msg("Could not fetch book json")
		return []Poem{}
	}
	var entries []*tocEntry
	if err := json.Unmarshal(payload.TOC, &entries); err != nil {
		bookLogger.Debug().Msg("Book json has no table of contents")
		return []Poem{}
	}

	poems := make([]Poem, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, entry := range entries {
		if entry == nil {
			continue
		}
		g.Go(func() error {
			poems[i] = f.resolvePoem(gctx, bookLogger, *entry)
			return nil
		})
	}
	_ = g.Wait()

	kept := poems[:0]
	for i, poem := range poems {
		if entries[i] == nil {
			continue
		}
		kept = append(kept, poem)
	}
	return kept
}

func (f *Fetcher) resolvePoem(ctx context.Context, logger zerolog.Logger, entry tocEntry) Poem {
	poem := Poem{Title: firstNonEmpty(entry.Name, entry.Title, untitledPoem)}

	if rawHTMLURL := firstNonEmpty(entry.HTMLURL, entry.URL); rawHTMLURL != "" {
		if ref, err := url.Parse(rawHTMLURL); err == nil {
			resolved := f.origin.ResolveReference(ref)
			poem.SourceURL = resolved.String()
			poem.JSONURL = poemJSONURL(resolved)
		}
	}

	poem.Slug = entry.Slug
	if poem.Slug == "" && poem.SourceURL != "" {
		if u, err := url.Parse(poem.SourceURL); err == nil {
			poem.Slug = lastPathSegment(u.Path)
		}
	}

	if poem.JSONURL == "" {
		return poem
	}
	var record poemRecord
	if err := f.getJSON(ctx, poem.JSONURL, &record); err != nil {
		logger.Warn().Err(err).Str("poem_json_url", poem.JSONURL).Msg("Could not fetch poem json")
		return poem
	}
	switch {
	case record.Text != nil:
		poem.Text = *record.Text
	case record.HTML != nil:
		poem.Text = StripMarkup(*record.HTML)
	}
	return poem
}

func (f *Fetcher) getJSON(ctx context.Context, target string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}

// poemJSONURL derives the JSON document of a poem page: same origin, path without
// its trailing slash, ".json" appended.
func poemJSONURL(page *url.URL) string {
	trimmed := strings.TrimSuffix(page.EscapedPath(), "/")
	return page.Scheme + "://" + page.Host + trimmed + ".json"
}

func lastPathSegment(p string) string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return ""
	}
	return path.Base(trimmed)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
