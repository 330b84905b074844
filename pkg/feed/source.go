package feed

import (
	"context"
	"fmt"
	"time"

	"news-pull/pkg/domain"

	"github.com/mmcdole/gofeed"
)

// Source fetches and parses one syndication feed per call. Every call
// produces a fresh entry slice; no iteration state is shared between
// calls, so concurrent fetches of different URLs are safe.
type Source struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

// NewSource creates a feed source. The timeout bounds the whole
// download-and-parse of a single feed URL.
func NewSource(timeout time.Duration) *Source {
	return &Source{
		parser:  gofeed.NewParser(),
		timeout: timeout,
	}
}

// Fetch downloads and parses the feed at url. Entries carrying neither a
// link nor an id are excluded: enrichment would have nothing to fetch.
// A download or parse failure is returned to the caller; it covers the
// whole URL, never individual entries.
func (s *Source) Fetch(ctx context.Context, url string) ([]domain.FeedEntry, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	parsed, err := s.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	entries := make([]domain.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || (item.Link == "" && item.GUID == "") {
			continue
		}
		entries = append(entries, entryFromItem(item))
	}
	return entries, nil
}

func entryFromItem(item *gofeed.Item) domain.FeedEntry {
	return domain.FeedEntry{
		Title:       item.Title,
		Summary:     item.Description,
		ID:          item.GUID,
		Link:        item.Link,
		Description: item.Description,
		Published:   item.PublishedParsed,
		ImageURL:    imageURL(item),
	}
}

// imageURL picks the first media:content URL when the item carries a media
// extension, then the item-level image, then nothing.
func imageURL(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	if item.Image != nil {
		return item.Image.URL
	}
	return ""
}
