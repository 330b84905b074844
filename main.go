package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"news-pull/pkg/api"
	"news-pull/pkg/config"
	"news-pull/pkg/db"
	"news-pull/pkg/enrich"
	"news-pull/pkg/feed"
	"news-pull/pkg/httpclient"
	"news-pull/pkg/logging"
	"news-pull/pkg/pipeline"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logging.New("info").Error("load config failed", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.NewStore(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		logger.Error("mongo client failed", "error", err)
		os.Exit(1)
	}
	if err := store.Connect(ctx); err != nil {
		logger.Error("mongo unreachable", "uri", cfg.Mongo.URI, "error", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warn("index creation failed", "error", err)
	}

	client := httpclient.New(httpclient.BrowserProfile, cfg.Fetch.Timeout)
	pipe := pipeline.New(pipeline.Deps{
		Source:       feed.NewSource(cfg.Fetch.Timeout),
		Enricher:     enrich.NewEnricher(client, logger.With("component", "enricher")),
		Store:        store,
		Providers:    cfg.Providers,
		FeedWorkers:  cfg.Fetch.FeedWorkers,
		EntryWorkers: cfg.Fetch.EntryWorkers,
		Logger:       logger.With("component", "pipeline"),
	})

	handler := api.NewHandler(pipe, store, logger.With("component", "api"))
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewServer(handler),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", cfg.Server.Addr, "providers", len(cfg.Providers))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
