package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"news-pull/pkg/config"
	"news-pull/pkg/domain"
	"news-pull/pkg/normalize"
)

// ErrNoProviders is returned when the provider table is empty. It is the
// only error that aborts an ingestion run.
var ErrNoProviders = errors.New("no feed providers configured")

// EntrySource produces the raw entries of one feed URL.
type EntrySource interface {
	Fetch(ctx context.Context, url string) ([]domain.FeedEntry, error)
}

// Enricher augments an entry with page-level metadata, best effort.
type Enricher interface {
	Enrich(ctx context.Context, entry domain.FeedEntry) domain.FeedEntry
}

// Saver persists canonical article records.
type Saver interface {
	Upsert(ctx context.Context, article domain.Article) error
}

type feedJob struct {
	provider string
	category string
	url      string
}

// Pipeline drives fetch, enrichment, normalization and persistence for
// every configured (provider, category) feed. Feeds are processed by one
// worker pool and entries within a feed by another; failures are isolated
// at the feed and entry level respectively.
type Pipeline struct {
	source       EntrySource
	enricher     Enricher
	store        Saver
	providers    map[string]config.Provider
	feedWorkers  int
	entryWorkers int
	logger       *slog.Logger
}

// Deps wires the pipeline's collaborators.
type Deps struct {
	Source       EntrySource
	Enricher     Enricher
	Store        Saver
	Providers    map[string]config.Provider
	FeedWorkers  int
	EntryWorkers int
	Logger       *slog.Logger
}

// New constructs the orchestrator. Worker counts below one fall back to
// sequential processing.
func New(deps Deps) *Pipeline {
	feedWorkers := deps.FeedWorkers
	if feedWorkers < 1 {
		feedWorkers = 1
	}
	entryWorkers := deps.EntryWorkers
	if entryWorkers < 1 {
		entryWorkers = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		source:       deps.Source,
		enricher:     deps.Enricher,
		store:        deps.Store,
		providers:    deps.Providers,
		feedWorkers:  feedWorkers,
		entryWorkers: entryWorkers,
		logger:       logger,
	}
}

// Fetch runs one full ingestion pass over the provider table. A feed that
// fails to download or parse is logged and skipped; the run itself only
// fails on an empty provider table or context cancellation.
func (p *Pipeline) Fetch(ctx context.Context) error {
	if len(p.providers) == 0 {
		return ErrNoProviders
	}

	jobs := make(chan feedJob)
	var wg sync.WaitGroup
	for i := 0; i < p.feedWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				p.pull(ctx, job)
			}
		}()
	}

dispatch:
	for name, provider := range p.providers {
		for category, path := range provider.Endpoints {
			job := feedJob{provider: name, category: category, url: provider.BaseURL + path}
			select {
			case jobs <- job:
			case <-ctx.Done():
				break dispatch
			}
		}
	}
	close(jobs)
	wg.Wait()

	return ctx.Err()
}

// pull processes one feed: fetch entries, then fan them out over the entry
// worker pool.
func (p *Pipeline) pull(ctx context.Context, job feedJob) {
	entries, err := p.source.Fetch(ctx, job.url)
	if err != nil {
		p.logger.Warn("feed fetch failed",
			"provider", job.provider, "category", job.category, "error", err)
		return
	}
	if len(entries) == 0 {
		p.logger.Warn("no items pulled",
			"provider", job.provider, "category", job.category)
		return
	}

	work := make(chan domain.FeedEntry)
	var wg sync.WaitGroup
	for i := 0; i < p.entryWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range work {
				p.process(ctx, job, entry)
			}
		}()
	}

send:
	for _, entry := range entries {
		select {
		case work <- entry:
		case <-ctx.Done():
			break send
		}
	}
	close(work)
	wg.Wait()
}

// process takes one entry through filter, enrichment, normalization and
// the store. Failures here never escape the entry.
func (p *Pipeline) process(ctx context.Context, job feedJob, entry domain.FeedEntry) {
	if normalize.ShouldSkip(entry) {
		return
	}

	enriched := p.enricher.Enrich(ctx, entry)
	article := normalize.Normalize(enriched, job.category, job.provider)

	if err := p.store.Upsert(ctx, article); err != nil {
		p.logger.Error("article upsert failed",
			"provider", job.provider, "category", job.category,
			"title", article.Title, "error", err)
		return
	}

	p.logger.Info("article stored",
		"provider", job.provider, "category", job.category, "title", article.Title)
}
