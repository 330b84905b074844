package domain

import "time"

// FeedEntry is the raw per-item view of a syndication feed, before
// enrichment and normalization. Only the whitelisted feed fields are
// carried; everything else from the wire format is dropped at parse time.
type FeedEntry struct {
	Title       string
	Summary     string
	ID          string
	Link        string
	Description string
	Published   *time.Time
	ImageURL    string
}

// TargetURL returns the URL enrichment should fetch: the entry link when
// present, otherwise the feed-supplied id (many feeds carry a permalink
// there). Empty when the entry has neither.
func (e FeedEntry) TargetURL() string {
	if e.Link != "" {
		return e.Link
	}
	return e.ID
}

// Article is the canonical record persisted for every ingested feed entry.
// The stored identity is the trimmed (title, description) pair; ItemID is
// minted fresh on every normalization and is not part of identity.
type Article struct {
	ItemID          string    `bson:"item_id"`
	Provider        string    `bson:"provider"`
	Language        string    `bson:"language"`
	Title           string    `bson:"title"`
	Description     string    `bson:"description"`
	Summary         string    `bson:"summary"`
	Tags            []string  `bson:"tags"`
	Topics          []string  `bson:"topics"`
	Category        string    `bson:"rss_categories"`
	ImageURL        string    `bson:"image_url"`
	LinkURL         string    `bson:"link_url"`
	Classifications []string  `bson:"classifications"`
	PublishDate     time.Time `bson:"publish_date"`
	LastModified    time.Time `bson:"last_modified"`
}

// Projection is the reduced article view returned to query callers.
type Projection struct {
	Title   string `bson:"title" json:"title"`
	Summary string `bson:"summary" json:"summary"`
	LinkURL string `bson:"link_url" json:"link_url"`
}
