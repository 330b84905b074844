package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "NEWS_PULL_CONFIG"
	mongoURIEnv    = "MONGO_URI"
	postgresDSNEnv = "POSTGRES_DSN"
	supabaseURLEnv = "SUPABASE_URL"
	supabaseKeyEnv = "SUPABASE_KEY"
	listenAddrEnv  = "LISTEN_ADDR"
	logLevelEnv    = "LOG_LEVEL"
)

// Config holds everything the service needs at startup: the HTTP listen
// address, store connections, fetch tuning and the provider feed table.
type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Logging   LoggingConfig       `yaml:"logging"`
	Mongo     MongoConfig         `yaml:"mongo"`
	Mirror    MirrorConfig        `yaml:"mirror"`
	Fetch     FetchConfig         `yaml:"fetch"`
	Providers map[string]Provider `yaml:"providers"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MongoConfig describes the article store connection.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// MirrorConfig describes the optional relational mirror targets used by
// the replication command.
type MirrorConfig struct {
	PostgresDSN      string `yaml:"postgres_dsn"`
	SupabaseURL      string `yaml:"supabase_url"`
	SupabaseKey      string `yaml:"supabase_key"`
	SupabasePassword string `yaml:"supabase_password"`
}

// FetchConfig tunes the ingestion run: one timeout bounds every network
// call (feed downloads and enrichment page fetches), and the worker counts
// size the two pools the pipeline fans out over.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	FeedWorkers  int           `yaml:"feed_workers"`
	EntryWorkers int           `yaml:"entry_workers"`
}

// Provider is one news source: a base URL plus category-to-path endpoints.
// The full feed URL for a category is BaseURL + path.
type Provider struct {
	BaseURL   string            `yaml:"base_url"`
	Endpoints map[string]string `yaml:"endpoints"`
}

// Load reads YAML configuration from path (or $NEWS_PULL_CONFIG when path
// is empty) over the defaults, then applies environment overrides. A
// missing file is an error only when explicitly requested.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if path == "" {
		path = os.Getenv(configPathEnv)
		explicit = path != ""
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if explicit {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(mongoURIEnv); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv(postgresDSNEnv); v != "" {
		c.Mirror.PostgresDSN = v
	}
	if v := os.Getenv(supabaseURLEnv); v != "" {
		c.Mirror.SupabaseURL = v
	}
	if v := os.Getenv(supabaseKeyEnv); v != "" {
		c.Mirror.SupabaseKey = v
	}
	if v := os.Getenv(listenAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "rss_articles",
			Collection: "items",
		},
		Fetch: FetchConfig{
			Timeout:      30 * time.Second,
			FeedWorkers:  4,
			EntryWorkers: 8,
		},
		Providers: map[string]Provider{},
	}
}
