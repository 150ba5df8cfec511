// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command server runs the Reelquest discovery API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"reelquest/internal/api"
	"reelquest/internal/config"
	"reelquest/internal/discovery"
	"reelquest/internal/intent"
	"reelquest/internal/logging"
	"reelquest/internal/ranking"
	"reelquest/internal/search"
	"reelquest/internal/supervisor"
	"reelquest/internal/tmdb"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("starting reelquest")

	if cfg.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required (set REELQUEST_TMDB_API_KEY)")
	}

	catalog := tmdb.NewClient(&cfg.TMDB)
	extractor := intent.NewLLMExtractor(&cfg.Intent)
	resolver := discovery.NewResolver(catalog, &cfg.Discovery)
	engine := discovery.NewEngine(catalog, &cfg.Discovery)
	ranker := ranking.NewRanker(&cfg.Ranking)
	svc := search.NewService(extractor, resolver, engine, ranker, &cfg.Ranking)

	handler := api.NewHandler(svc, &cfg.API)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := tree.Root().ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
		stop()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("supervisor stopped: %w", err)
	}
}
