package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"news-pull/pkg/content"
	"news-pull/pkg/domain"
	"news-pull/pkg/httpclient"
)

// Enricher augments feed entries with metadata extracted from the linked
// article page. Enrichment is best effort: on any failure the entry comes
// back unchanged, and Enrich never returns an error.
type Enricher struct {
	client *httpclient.Client
	logger *slog.Logger
}

// NewEnricher creates an enricher that downloads pages with the given
// client.
func NewEnricher(client *httpclient.Client, logger *slog.Logger) *Enricher {
	return &Enricher{
		client: client,
		logger: logger,
	}
}

// Enrich fetches the entry's target page (link preferred, id as fallback)
// and overrides title, description and image with extracted values when
// they are non-empty. A failed download is retried once against the link
// before enrichment is skipped. Existing fields are never cleared.
func (e *Enricher) Enrich(ctx context.Context, entry domain.FeedEntry) domain.FeedEntry {
	target := entry.TargetURL()
	if target == "" {
		return entry
	}

	page, err := e.fetchPage(ctx, target)
	if err != nil && entry.Link != "" {
		page, err = e.fetchPage(ctx, entry.Link)
	}
	if err != nil {
		e.logger.Debug("enrichment skipped", "url", target, "error", err)
		return entry
	}

	if title, terr := content.ExtractTitle(page); terr == nil && title != "" {
		entry.Title = title
	}
	if text, xerr := content.ExtractText(page); xerr == nil && text != "" {
		entry.Description = text
	}
	if image, ierr := content.ExtractTopImage(page); ierr == nil && image != "" {
		entry.ImageURL = image
	}

	return entry
}

func (e *Enricher) fetchPage(ctx context.Context, url string) (string, error) {
	resp, err := e.client.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	page := string(body)
	if strings.TrimSpace(page) == "" {
		return "", fmt.Errorf("empty response from %s", url)
	}
	return page, nil
}
