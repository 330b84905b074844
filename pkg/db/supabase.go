package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	supabase "github.com/supabase-community/supabase-go"
)

// SupabaseConfig holds settings for a Supabase-hosted mirror target. The
// direct Postgres connection is used for mirror writes; the SDK client is
// kept around for project-level features.
type SupabaseConfig struct {
	// ProjectURL, e.g. "https://<project-ref>.supabase.co".
	ProjectURL string

	// APIKey for the SDK (service role key for server-side use).
	APIKey string

	// Password is the database password used to build the Postgres DSN.
	Password string
}

// SupabaseClient provides the sql.DB handle for the article mirror plus
// the Supabase SDK client.
type SupabaseClient struct {
	db  *sql.DB
	sdk *supabase.Client
	cfg SupabaseConfig
}

// NewSupabaseClient constructs an unconnected client.
func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	return &SupabaseClient{cfg: cfg}
}

// Connect initializes the SDK and opens the direct Postgres connection.
func (c *SupabaseClient) Connect(ctx context.Context) error {
	if c.cfg.ProjectURL != "" && c.cfg.APIKey != "" {
		sdk, err := supabase.NewClient(c.cfg.ProjectURL, c.cfg.APIKey, nil)
		if err != nil {
			return fmt.Errorf("initialize supabase sdk: %w", err)
		}
		c.sdk = sdk
	}

	dsn, err := c.buildDSN()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open supabase postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping supabase postgres: %w", err)
	}

	c.db = db
	return nil
}

// Close closes the Postgres pool.
func (c *SupabaseClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB exposes the underlying handle for the replicator.
func (c *SupabaseClient) DB() *sql.DB {
	return c.db
}

// SDK returns the Supabase SDK client, or nil when project URL or API key
// were not configured.
func (c *SupabaseClient) SDK() *supabase.Client {
	return c.sdk
}

// buildDSN derives the direct Postgres DSN from the project URL and the
// database password. Prepared-statement caching is disabled: the mirror
// runs its batches in parallel.
func (c *SupabaseClient) buildDSN() (string, error) {
	if c.cfg.ProjectURL == "" {
		return "", fmt.Errorf("supabase project URL is required")
	}
	if c.cfg.Password == "" {
		return "", fmt.Errorf("supabase database password is required")
	}

	parsed, err := url.Parse(c.cfg.ProjectURL)
	if err != nil {
		return "", fmt.Errorf("parse supabase URL: %w", err)
	}

	parts := strings.Split(parsed.Host, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid supabase URL: expected <project-ref>.supabase.co")
	}
	projectRef := parts[0]

	return fmt.Sprintf(
		"postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require&statement_cache_capacity=0",
		url.QueryEscape(c.cfg.Password), projectRef,
	), nil
}
