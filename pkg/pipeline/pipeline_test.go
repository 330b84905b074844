package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"news-pull/pkg/config"
	"news-pull/pkg/domain"
)

type fakeSource struct {
	mu      sync.Mutex
	entries map[string][]domain.FeedEntry
	errs    map[string]error
	fetched []string
}

func (f *fakeSource) Fetch(ctx context.Context, url string) ([]domain.FeedEntry, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.entries[url], nil
}

type passthroughEnricher struct{}

func (passthroughEnricher) Enrich(ctx context.Context, entry domain.FeedEntry) domain.FeedEntry {
	return entry
}

type markingEnricher struct{}

func (markingEnricher) Enrich(ctx context.Context, entry domain.FeedEntry) domain.FeedEntry {
	entry.Title = "enriched: " + entry.Title
	return entry
}

type fakeStore struct {
	mu       sync.Mutex
	articles []domain.Article
	err      error
}

func (f *fakeStore) Upsert(ctx context.Context, article domain.Article) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.articles = append(f.articles, article)
	return nil
}

func (f *fakeStore) stored() []domain.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Article, len(f.articles))
	copy(out, f.articles)
	return out
}

func newPipeline(source EntrySource, enricher Enricher, store Saver, providers map[string]config.Provider) *Pipeline {
	return New(Deps{
		Source:       source,
		Enricher:     enricher,
		Store:        store,
		Providers:    providers,
		FeedWorkers:  2,
		EntryWorkers: 2,
	})
}

func singleProvider(baseURL string) map[string]config.Provider {
	return map[string]config.Provider{
		"news_au": {
			BaseURL:   baseURL,
			Endpoints: map[string]string{"world": "/world"},
		},
	}
}

func TestFetchEmptyProviderTable(t *testing.T) {
	p := newPipeline(&fakeSource{}, passthroughEnricher{}, &fakeStore{}, nil)
	if err := p.Fetch(context.Background()); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("Expected ErrNoProviders, got %v", err)
	}
}

func TestFetchStoresEntries(t *testing.T) {
	source := &fakeSource{entries: map[string][]domain.FeedEntry{
		"https://feeds.example.com/world": {
			{Title: "One", Link: "https://example.com/1", Description: "first"},
			{Title: "Two", Link: "https://example.com/2", Description: "second"},
		},
	}}
	store := &fakeStore{}

	p := newPipeline(source, markingEnricher{}, store, singleProvider("https://feeds.example.com"))
	if err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	stored := store.stored()
	if len(stored) != 2 {
		t.Fatalf("Expected 2 stored articles, got %d", len(stored))
	}
	for _, article := range stored {
		if article.Provider != "news_au" || article.Category != "world" {
			t.Errorf("Unexpected provider/category: %s/%s", article.Provider, article.Category)
		}
		// Enrichment output must flow into the stored record.
		if article.Title != "enriched: One" && article.Title != "enriched: Two" {
			t.Errorf("Expected enriched title, got %q", article.Title)
		}
	}
}

func TestFetchPoisonedFeedDoesNotAbortRun(t *testing.T) {
	providers := map[string]config.Provider{
		"bad": {
			BaseURL:   "https://bad.example.com",
			Endpoints: map[string]string{"world": "/world"},
		},
		"good": {
			BaseURL:   "https://good.example.com",
			Endpoints: map[string]string{"world": "/world"},
		},
	}
	source := &fakeSource{
		entries: map[string][]domain.FeedEntry{
			"https://good.example.com/world": {
				{Title: "Survivor", Link: "https://good.example.com/a", Description: "made it"},
			},
		},
		errs: map[string]error{
			"https://bad.example.com/world": fmt.Errorf("connection refused"),
		},
	}
	store := &fakeStore{}

	p := newPipeline(source, passthroughEnricher{}, store, providers)
	if err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	stored := store.stored()
	if len(stored) != 1 {
		t.Fatalf("Expected the good feed's article stored, got %d articles", len(stored))
	}
	if stored[0].Title != "Survivor" {
		t.Errorf("Unexpected stored article: %+v", stored[0])
	}
	if len(source.fetched) != 2 {
		t.Errorf("Expected both feeds fetched, got %v", source.fetched)
	}
}

func TestFetchSkipFilter(t *testing.T) {
	source := &fakeSource{entries: map[string][]domain.FeedEntry{
		"https://feeds.example.com/world": {
			// Empty title with non-empty description is skipped.
			{Title: "", Description: "orphan body", Link: "https://example.com/skip"},
			// Both empty proceeds: the guard is deliberately asymmetric.
			{Title: "", Description: "", Link: "https://example.com/empty"},
			{Title: "Kept", Description: "body", Link: "https://example.com/keep"},
		},
	}}
	store := &fakeStore{}

	p := newPipeline(source, passthroughEnricher{}, store, singleProvider("https://feeds.example.com"))
	if err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	stored := store.stored()
	if len(stored) != 2 {
		t.Fatalf("Expected 2 stored articles (skip filter drops one), got %d", len(stored))
	}
	for _, article := range stored {
		if article.Description == "orphan body" {
			t.Errorf("Skipped entry reached the store: %+v", article)
		}
	}
}

func TestFetchStoreErrorsAreIsolated(t *testing.T) {
	source := &fakeSource{entries: map[string][]domain.FeedEntry{
		"https://feeds.example.com/world": {
			{Title: "Lost", Link: "https://example.com/1", Description: "a"},
			{Title: "Also Lost", Link: "https://example.com/2", Description: "b"},
		},
	}}
	store := &fakeStore{err: fmt.Errorf("mongo down")}

	p := newPipeline(source, passthroughEnricher{}, store, singleProvider("https://feeds.example.com"))
	if err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("Store failures must not fail the run, got %v", err)
	}
}

func TestFetchEmptyFeedIsNotFatal(t *testing.T) {
	source := &fakeSource{entries: map[string][]domain.FeedEntry{}}
	store := &fakeStore{}

	p := newPipeline(source, passthroughEnricher{}, store, singleProvider("https://feeds.example.com"))
	if err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("Empty feed must not fail the run, got %v", err)
	}
	if len(store.stored()) != 0 {
		t.Errorf("Expected nothing stored for empty feed")
	}
}

func TestFetchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &fakeSource{entries: map[string][]domain.FeedEntry{}}
	p := newPipeline(source, passthroughEnricher{}, &fakeStore{}, singleProvider("https://feeds.example.com"))

	if err := p.Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
