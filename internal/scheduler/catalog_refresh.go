package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/poemgrid/internal/catalog"
)

const CatalogRefreshJobName = "catalog_refresh"

// CatalogSource produces the current book collection.
type CatalogSource interface {
	FetchBooks(ctx context.Context) ([]catalog.Book, error)
}

// CatalogStore replaces the cached collection.
type CatalogStore interface {
	ReplaceCatalog(ctx context.Context, books []catalog.Book) error
}

// RefreshResult summarizes one catalog refresh.
type RefreshResult struct {
	BookCount int           `json:"bookCount"`
	PoemCount int           `json:"poemCount"`
	Duration  time.Duration `json:"duration"`
}

// CatalogRefresher fetches the collection and stores it. Concurrent refreshes are
// serialized.
type CatalogRefresher struct {
	source  CatalogSource
	store   CatalogStore
	timeout time.Duration

	mu sync.Mutex
}

func NewCatalogRefresher(source CatalogSource, store CatalogStore, timeout time.Duration) *CatalogRefresher {
	return &CatalogRefresher{source: source, store: store, timeout: timeout}
}

// Refresh fetches the collection and replaces the store contents. A failed fetch
// leaves the previous catalog in place.
func (r *CatalogRefresher) Refresh(ctx context.Context) (RefreshResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	books, err := r.source.FetchBooks(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("fetch catalog: %w", err)
	}
	if err := r.store.ReplaceCatalog(ctx, books); err != nil {
		return RefreshResult{}, fmt.Errorf("store catalog: %w", err)
	}

	result := RefreshResult{
		BookCount: len(books),
		PoemCount: len(catalog.Flatten(books)),
		Duration:  time.Since(start),
	}
	log.Ctx(ctx).Info().
		Int("book_count", result.BookCount).
		Int("poem_count", result.PoemCount).
		Dur("duration", result.Duration).
		Msg("Catalog refreshed")
	return result, nil
}

// RegisterCatalogRefreshJob schedules refresher on cronExpr.
func RegisterCatalogRefreshJob(svc *Service, refresher *CatalogRefresher, cronExpr string) error {
	if refresher == nil {
		return fmt.Errorf("catalog refresh job requires a refresher")
	}

	jobLogger := log.With().
		Str("component", "catalog_refresh_job").
		Str("job_name", CatalogRefreshJobName).
		Str("cron", cronExpr).
		Logger()

	_, err := svc.AddJob(CatalogRefreshJobName, cronExpr, func() {
		ctx := jobLogger.WithContext(context.Background())
		if _, err := refresher.Refresh(ctx); err != nil {
			jobLogger.Error().Err(err).Msg("Catalog refresh failed")
		}
	})
	return err
}
