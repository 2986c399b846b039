// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

// Package scheduler runs Touriscope's background cycle: periodic data
// collection into DuckDB and periodic PLS-SEM analysis over the stored
// trailing window. Jobs run as supervised services under the suture tree.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/mredondo/touriscope/internal/collector"
	"github.com/mredondo/touriscope/internal/database"
	"github.com/mredondo/touriscope/internal/logging"
	"github.com/mredondo/touriscope/internal/metrics"
	"github.com/mredondo/touriscope/internal/plssem"
)

// Pipeline wires collection, storage, and analysis together. It is the
// single implementation behind both the scheduled jobs and the on-demand
// analysis endpoint.
type Pipeline struct {
	orchestrator *collector.Orchestrator
	db           *database.DB
	analyzer     *plssem.Analyzer

	// monthsBack bounds the analysis window loaded from storage.
	monthsBack int
}

// NewPipeline creates the collection-and-analysis pipeline.
func NewPipeline(orchestrator *collector.Orchestrator, db *database.DB, analyzer *plssem.Analyzer, monthsBack int) *Pipeline {
	if monthsBack < 1 {
		monthsBack = 12
	}
	return &Pipeline{
		orchestrator: orchestrator,
		db:           db,
		analyzer:     analyzer,
		monthsBack:   monthsBack,
	}
}

// RunCollection gathers the trailing window from all sources and upserts it.
func (p *Pipeline) RunCollection(ctx context.Context) (int, error) {
	observations, err := p.orchestrator.Collect(ctx)
	if err != nil {
		return 0, fmt.Errorf("collect: %w", err)
	}
	if err := p.db.UpsertObservations(ctx, observations); err != nil {
		return 0, fmt.Errorf("store observations: %w", err)
	}
	logging.Ctx(ctx).Info().Int("observations", len(observations)).Msg("collection cycle finished")
	return len(observations), nil
}

// RunAnalysis loads the stored trailing window, runs the full PLS-SEM
// pipeline, and persists the result.
func (p *Pipeline) RunAnalysis(ctx context.Context) (*plssem.Result, error) {
	start := time.Now()

	since := time.Now().UTC().AddDate(0, -p.monthsBack, 0)
	ds, err := p.db.LoadWindow(ctx, since)
	if err != nil {
		metrics.RecordAnalysis(time.Since(start), 0, err)
		return nil, fmt.Errorf("load window: %w", err)
	}

	res, err := p.analyzer.Run(ctx, ds)
	if err != nil {
		metrics.RecordAnalysis(time.Since(start), 0, err)
		return nil, fmt.Errorf("analyze: %w", err)
	}

	if err := p.db.SaveResult(ctx, res); err != nil {
		metrics.RecordAnalysis(time.Since(start), res.SampleSize, err)
		return nil, fmt.Errorf("store result: %w", err)
	}

	metrics.RecordAnalysis(time.Since(start), res.SampleSize, nil)
	for _, w := range res.Warnings {
		metrics.AnalysisWarnings.WithLabelValues(w.Code).Inc()
	}
	if res.Bootstrap != nil {
		metrics.BootstrapFailedIterations.Add(float64(res.Bootstrap.FailedIterations))
	}

	logging.Ctx(ctx).Info().
		Str("analysis_id", res.AnalysisID).
		Int("sample_size", res.SampleSize).
		Int("warnings", len(res.Warnings)).
		Dur("duration", time.Since(start)).
		Msg("analysis cycle finished")
	return res, nil
}
