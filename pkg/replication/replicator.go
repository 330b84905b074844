package replication

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"news-pull/pkg/db"
	"news-pull/pkg/domain"
)

// ArticleLister reads the full article set from the document store.
type ArticleLister interface {
	All(ctx context.Context) ([]domain.Article, error)
}

// Replicator mirrors the article collection into a relational table so
// the read layer can serve SQL consumers. One-shot, full-copy flow: rows
// whose (title, description) pair already exists are left untouched.
type Replicator struct {
	store  ArticleLister
	target db.DBProvider
	logger *slog.Logger
}

// New wires the replicator.
func New(store ArticleLister, target db.DBProvider, logger *slog.Logger) (*Replicator, error) {
	if store == nil {
		return nil, fmt.Errorf("article store is required")
	}
	if target == nil {
		return nil, fmt.Errorf("mirror target is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Replicator{store: store, target: target, logger: logger}, nil
}

// Run copies every stored article into the target's article table.
func (r *Replicator) Run(ctx context.Context) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}

	articles, err := r.store.All(ctx)
	if err != nil {
		return fmt.Errorf("read articles: %w", err)
	}
	r.logger.Info("mirror started", "articles", len(articles))

	inserted, err := r.mirror(ctx, articles)
	if err != nil {
		return err
	}

	r.logger.Info("mirror complete", "processed", len(articles), "inserted", inserted)
	return nil
}

func (r *Replicator) ensureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS article (
		id BIGSERIAL PRIMARY KEY,
		item_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		language TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		summary TEXT,
		category TEXT NOT NULL,
		image_url TEXT,
		link_url TEXT,
		publish_date TIMESTAMPTZ,
		last_modified TIMESTAMPTZ,
		UNIQUE (title, description)
	)`
	if _, err := r.target.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure article table: %w", err)
	}
	return nil
}

// mirror inserts the articles with a small worker pool, batch by batch.
func (r *Replicator) mirror(ctx context.Context, articles []domain.Article) (int, error) {
	const batchSize = 100
	const workers = 5

	batches := splitBatches(articles, batchSize)
	jobs := make(chan []domain.Article, len(batches))
	for _, batch := range batches {
		jobs <- batch
	}
	close(jobs)

	var (
		mu       sync.Mutex
		inserted int
		firstErr error
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				n, err := r.insertBatch(ctx, batch)
				mu.Lock()
				inserted += n
				if err != nil && firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return inserted, firstErr
}

func (r *Replicator) insertBatch(ctx context.Context, batch []domain.Article) (int, error) {
	const stmt = `INSERT INTO article
		(item_id, provider, language, title, description, summary, category,
		 image_url, link_url, publish_date, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (title, description) DO NOTHING`

	inserted := 0
	for _, article := range batch {
		result, err := r.target.DB().ExecContext(ctx, stmt,
			article.ItemID, article.Provider, article.Language,
			article.Title, article.Description, article.Summary, article.Category,
			article.ImageURL, article.LinkURL, article.PublishDate, article.LastModified)
		if err != nil {
			return inserted, fmt.Errorf("insert article %q: %w", article.Title, err)
		}
		if rows, err := result.RowsAffected(); err == nil {
			inserted += int(rows)
		}
	}
	return inserted, nil
}

// splitBatches partitions articles into slices of at most size elements.
func splitBatches(articles []domain.Article, size int) [][]domain.Article {
	if size < 1 || len(articles) == 0 {
		return nil
	}
	batches := make([][]domain.Article, 0, (len(articles)+size-1)/size)
	for start := 0; start < len(articles); start += size {
		end := start + size
		if end > len(articles) {
			end = len(articles)
		}
		batches = append(batches, articles[start:end])
	}
	return batches
}
