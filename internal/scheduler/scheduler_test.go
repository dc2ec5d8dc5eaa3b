package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codr1/poemgrid/internal/catalog"
)

type fakeSource struct {
	books []catalog.Book
	err   error
	calls atomic.Int32
}

func (f *fakeSource) FetchBooks(ctx context.Context) ([]catalog.Book, error) {
	f.calls.Add(1)
	return f.books, f.err
}

type fakeStore struct {
	stored [][]catalog.Book
}

func (f *fakeStore) ReplaceCatalog(ctx context.Context, books []catalog.Book) error {
	f.stored = append(f.stored, books)
	return nil
}

func TestAddJobValidation(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	defer svc.Stop()

	if _, err := svc.AddJob("", "* * * * *", func() {}); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("AddJob(empty name) error = %v", err)
	}
	if _, err := svc.AddJob("job", " ", func() {}); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("AddJob(empty cron) error = %v", err)
	}
	if _, err := svc.AddJob("job", "every minute", func() {}); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if err := svc.RunNow("missing"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("RunNow(missing) error = %v", err)
	}
}

func TestNilServiceReportsNotInitialized(t *testing.T) {
	var svc *Service
	if _, err := svc.AddJob("job", "* * * * *", func() {}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("AddJob() error = %v", err)
	}
	if err := svc.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestCatalogRefreshJobRunsNow(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	defer svc.Stop()

	source := &fakeSource{books: []catalog.Book{{Slug: "b", Poems: []catalog.Poem{{Slug: "p"}}}}}
	store := &fakeStore{}
	refresher := NewCatalogRefresher(source, store, time.Second)
	if err := RegisterCatalogRefreshJob(svc, refresher, "0 4 * * *"); err != nil {
		t.Fatalf("RegisterCatalogRefreshJob() error = %v", err)
	}
	if names := svc.JobNames(); len(names) != 1 || names[0] != CatalogRefreshJobName {
		t.Fatalf("JobNames() = %v", names)
	}

	svc.Start()
	if err := svc.RunNow(CatalogRefreshJobName); err != nil {
		t.Fatalf("RunNow() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for source.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("catalog refresh job did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCatalogRefresherKeepsStoreOnFetchError(t *testing.T) {
	source := &fakeSource{err: errors.New("index down")}
	store := &fakeStore{}
	refresher := NewCatalogRefresher(source, store, 0)

	if _, err := refresher.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if len(store.stored) != 0 {
		t.Fatalf("store replaced %d times, want 0", len(store.stored))
	}
}

func TestCatalogRefresherCountsAddressablePoems(t *testing.T) {
	source := &fakeSource{books: []catalog.Book{
		{Slug: "a", Poems: []catalog.Poem{{Slug: "one"}, {Title: "no slug"}}},
		{Slug: "b"},
	}}
	store := &fakeStore{}

	result, err := NewCatalogRefresher(source, store, 0).Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if result.BookCount != 2 || result.PoemCount != 1 {
		t.Fatalf("Refresh() = %+v", result)
	}
	if len(store.stored) != 1 {
		t.Fatalf("store replaced %d times, want 1", len(store.stored))
	}
}
