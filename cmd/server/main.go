// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

// Package main is the entry point for the Touriscope server.
//
// Touriscope is a self-hosted tourism analytics platform for the Spanish
// regions. It periodically collects monthly tourism indicators (hotel
// occupancy, employment, destination rankings, competitiveness indices),
// stores them in an embedded DuckDB file, and estimates a PLS-SEM structural
// model linking tourism competitiveness, visitor satisfaction, and tourism
// employment, with bootstrap confidence intervals on the path coefficients.
//
// The server initializes in this order:
//
//  1. Configuration: koanf v2 layered load (defaults, YAML file, TOURISCOPE_* env)
//  2. Logging: zerolog, JSON by default
//  3. Database: embedded DuckDB
//  4. Pipeline: collection orchestrator plus PLS-SEM analyzer
//  5. Supervisor: suture tree running the scheduled jobs and the HTTP API
//
// Shutdown is graceful on SIGINT and SIGTERM: in-flight requests drain and
// the database closes cleanly.
//
// Example:
//
//	export TOURISCOPE_DATABASE_PATH=/data/touriscope.duckdb
//	export TOURISCOPE_SERVER_PORT=8050
//	./touriscope
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mredondo/touriscope/internal/api"
	"github.com/mredondo/touriscope/internal/collector"
	"github.com/mredondo/touriscope/internal/config"
	"github.com/mredondo/touriscope/internal/database"
	"github.com/mredondo/touriscope/internal/logging"
	"github.com/mredondo/touriscope/internal/plssem"
	"github.com/mredondo/touriscope/internal/scheduler"
	"github.com/mredondo/touriscope/internal/supervisor"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Int("regions", len(cfg.Collector.Regions)).
		Bool("scheduler", cfg.Scheduler.Enabled).
		Msg("starting touriscope")

	db, err := database.Open(database.Config{
		Path:      cfg.Database.Path,
		MaxMemory: cfg.Database.MaxMemory,
		Threads:   cfg.Database.Threads,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing database")
		}
	}()

	orchestrator := collector.NewOrchestrator(nil, cfg.Collector.Regions, cfg.Collector.MonthsBack)
	analyzer := plssem.NewAnalyzer(plssem.DefaultModel(), plssem.Config{
		MinSampleSize:      cfg.Analysis.MinSampleSize,
		BootstrapResamples: cfg.Analysis.BootstrapResamples,
		BootstrapWorkers:   cfg.Analysis.BootstrapWorkers,
		SignificanceLevel:  cfg.Analysis.SignificanceLevel,
		Seed:               cfg.Analysis.Seed,
	}, nil)
	pipeline := scheduler.NewPipeline(orchestrator, db, analyzer, cfg.Collector.MonthsBack)

	handler := api.NewHandler(db, pipeline, version)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	})

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	tree.AddAPIService(api.NewServer(addr, router, cfg.Server.Timeout))

	if cfg.Scheduler.Enabled {
		tree.AddJob(scheduler.NewCollectionJob(pipeline, cfg.Scheduler.CollectionInterval, cfg.Scheduler.RunOnStartup))
		tree.AddJob(scheduler.NewAnalysisJob(pipeline, cfg.Scheduler.AnalysisInterval, cfg.Scheduler.RunOnStartup))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree exited with error")
		os.Exit(1)
	}
	logging.Info().Msg("touriscope stopped")
}
