// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Command server runs the Fiscalis HTTP API: CSV ingestion and query
// endpoints over the IBAMA environmental-infraction collections.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dferraz/fiscalis/internal/api"
	"github.com/dferraz/fiscalis/internal/config"
	"github.com/dferraz/fiscalis/internal/database"
	"github.com/dferraz/fiscalis/internal/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("database", cfg.Mongo.Database).
		Msg("Starting fiscalis")

	ctx := context.Background()
	db, err := database.New(ctx, &cfg.Mongo)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			logging.Warn().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create indexes")
	}

	server := api.NewServer(cfg, db)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("Server stopped")
}
