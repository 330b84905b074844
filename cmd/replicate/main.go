// Command replicate mirrors the Mongo article collection into a
// relational target (plain Postgres or a Supabase project) in one shot.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"news-pull/pkg/config"
	"news-pull/pkg/db"
	"news-pull/pkg/logging"
	"news-pull/pkg/replication"
)

func main() {
	target := flag.String("target", "postgres", "mirror target: postgres or supabase")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		logging.New("info").Error("load config failed", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level).With("component", "replicate")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.NewStore(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		logger.Error("mongo client failed", "error", err)
		os.Exit(1)
	}
	if err := store.Connect(ctx); err != nil {
		logger.Error("mongo unreachable", "error", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	provider, cleanup, err := connectTarget(ctx, *target, cfg)
	if err != nil {
		logger.Error("mirror target unreachable", "target", *target, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	replicator, err := replication.New(store, provider, logger)
	if err != nil {
		logger.Error("replicator setup failed", "error", err)
		os.Exit(1)
	}

	if err := replicator.Run(ctx); err != nil {
		logger.Error("mirror run failed", "error", err)
		os.Exit(1)
	}
}

func connectTarget(ctx context.Context, target string, cfg config.Config) (db.DBProvider, func() error, error) {
	if target == "supabase" {
		client := db.NewSupabaseClient(db.SupabaseConfig{
			ProjectURL: cfg.Mirror.SupabaseURL,
			APIKey:     cfg.Mirror.SupabaseKey,
			Password:   cfg.Mirror.SupabasePassword,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}

	client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.Mirror.PostgresDSN})
	if err := client.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}
