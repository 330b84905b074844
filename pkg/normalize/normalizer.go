package normalize

import (
	"regexp"
	"time"

	"news-pull/pkg/domain"

	"github.com/google/uuid"
)

const defaultLanguage = "English"

// Matches HTML-like tags in free text; entities are left alone.
var tagPattern = regexp.MustCompile(`<[^<]+?>`)

// Normalize converts an enriched feed entry into the canonical article
// record for the given provider and category. Tags, topics and
// classifications are reserved extension points and always empty.
//
// Both timestamps are ingestion time: the feed's own publish time is not
// carried onto the record.
func Normalize(entry domain.FeedEntry, category, provider string) domain.Article {
	now := time.Now()

	return domain.Article{
		ItemID:          uuid.NewString(),
		Provider:        provider,
		Language:        defaultLanguage,
		Title:           entry.Title,
		Description:     tagPattern.ReplaceAllString(entry.Description, ""),
		Summary:         entry.Summary,
		Tags:            []string{},
		Topics:          []string{},
		Classifications: []string{},
		Category:        category,
		ImageURL:        entry.ImageURL,
		LinkURL:         entry.Link,
		PublishDate:     now,
		LastModified:    now,
	}
}

// ShouldSkip reports whether the orchestrator should drop the entry before
// normalization: an empty title with a non-empty description. The guard is
// deliberately asymmetric; an entry with both fields empty proceeds.
func ShouldSkip(entry domain.FeedEntry) bool {
	return entry.Title == "" && entry.Description != ""
}
