package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/moviestream/internal/api"
	"github.com/dmitrymomot/moviestream/internal/catalog"
	"github.com/dmitrymomot/moviestream/internal/logger"
	"github.com/dmitrymomot/moviestream/internal/server"
	"github.com/dmitrymomot/moviestream/internal/storage/mongodb"
	"github.com/dmitrymomot/moviestream/pkg/broadcast"
)

func main() {
	// Missing .env is fine; the environment itself is authoritative.
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("failed to parse config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Log,
		slog.String("app", cfg.AppName),
		slog.String("env", cfg.Env),
	)

	if err := run(cfg, log); err != nil {
		log.Error("service exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongodb.New(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error("failed to disconnect mongodb client", slog.Any("error", err))
		}
	}()

	repo := mongodb.NewMovieRepository(client.Database(cfg.Mongo.Database))
	svc := catalog.NewService(repo, catalog.WithLogger(log))

	// One hub per process: every created record is published here and
	// replayed in full to each stream subscriber.
	hub := broadcast.NewReplayBroadcaster[catalog.MovieInfo](cfg.StreamBuffer)
	defer hub.Close()

	// Stream responses complete only when the client disconnects or the hub
	// closes, and graceful shutdown waits for in-flight responses. Closing
	// the hub on cancellation ends open streams so shutdown does not burn
	// the whole shutdown timeout on connected stream clients.
	stopStreams := context.AfterFunc(ctx, func() { _ = hub.Close() })
	defer stopStreams()

	handler := api.NewHandler(svc, hub, log)
	router := api.NewRouter(handler, log, mongodb.Healthcheck(client))

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		return err
	}

	if err := srv.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
