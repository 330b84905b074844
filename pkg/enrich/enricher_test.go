package enrich

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"news-pull/pkg/domain"
	"news-pull/pkg/httpclient"
)

const pageHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Storm Warning Issued for Coast</title>
	<meta property="og:image" content="https://example.com/storm.jpg" />
</head>
<body>
	<article>
		<h1>Storm Warning Issued for Coast</h1>
		<p>The bureau issued a severe storm warning for coastal districts on Tuesday.</p>
		<p>Residents are advised to secure loose items and avoid travel.</p>
	</article>
</body>
</html>`

func newTestEnricher(t *testing.T) *Enricher {
	t.Helper()
	client := httpclient.New(httpclient.BrowserProfile, 5*time.Second)
	return NewEnricher(client, slog.Default())
}

func TestEnrichOverridesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(pageHTML))
	}))
	defer server.Close()

	entry := domain.FeedEntry{
		Title:       "storm warning",
		Link:        server.URL,
		Description: "short feed blurb",
		Summary:     "short feed blurb",
	}

	enriched := newTestEnricher(t).Enrich(context.Background(), entry)

	if !strings.Contains(enriched.Title, "Storm Warning") {
		t.Errorf("Expected cleaned title, got %q", enriched.Title)
	}
	if !strings.Contains(enriched.Description, "severe storm warning") {
		t.Errorf("Expected extracted body text, got %q", enriched.Description)
	}
	if enriched.ImageURL != "https://example.com/storm.jpg" {
		t.Errorf("Expected top image, got %q", enriched.ImageURL)
	}
	// Summary is never touched by enrichment.
	if enriched.Summary != "short feed blurb" {
		t.Errorf("Expected summary unchanged, got %q", enriched.Summary)
	}
}

func TestEnrichFetchFailureKeepsEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	entry := domain.FeedEntry{
		Title:       "original title",
		Link:        server.URL,
		Description: "original description",
		ImageURL:    "https://example.com/original.jpg",
	}

	enriched := newTestEnricher(t).Enrich(context.Background(), entry)

	if enriched != entry {
		t.Errorf("Expected entry unchanged on fetch failure, got %+v", enriched)
	}
}

func TestEnrichRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(pageHTML))
	}))
	defer server.Close()

	entry := domain.FeedEntry{Title: "flaky", Link: server.URL}
	enriched := newTestEnricher(t).Enrich(context.Background(), entry)

	if calls.Load() != 2 {
		t.Fatalf("Expected exactly 2 fetch attempts, got %d", calls.Load())
	}
	if !strings.Contains(enriched.Title, "Storm Warning") {
		t.Errorf("Expected retry to enrich the entry, got title %q", enriched.Title)
	}
}

func TestEnrichUsesIDWhenLinkMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(pageHTML))
	}))
	defer server.Close()

	entry := domain.FeedEntry{Title: "by id", ID: server.URL}
	enriched := newTestEnricher(t).Enrich(context.Background(), entry)

	if !strings.Contains(enriched.Title, "Storm Warning") {
		t.Errorf("Expected enrichment via id URL, got title %q", enriched.Title)
	}
}

func TestEnrichNoTarget(t *testing.T) {
	entry := domain.FeedEntry{Title: "nothing to fetch"}
	enriched := newTestEnricher(t).Enrich(context.Background(), entry)
	if enriched != entry {
		t.Errorf("Expected entry unchanged when no target URL, got %+v", enriched)
	}
}
