// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package scheduler

import (
	"context"
	"time"

	"github.com/mredondo/touriscope/internal/logging"
)

// Job runs a function on a fixed interval as a suture.Service. Each run is
// bounded by the interval, so a stuck run cannot pile up behind the next
// tick. A failing run is logged and the ticker keeps going; only context
// cancellation ends the service.
type Job struct {
	name     string
	interval time.Duration

	// immediate runs the job once on startup before the first tick.
	immediate bool

	run func(context.Context) error
}

// NewJob creates a ticker job.
func NewJob(name string, interval time.Duration, immediate bool, run func(context.Context) error) *Job {
	return &Job{name: name, interval: interval, immediate: immediate, run: run}
}

// NewCollectionJob builds the periodic collection job over the pipeline.
func NewCollectionJob(p *Pipeline, interval time.Duration, immediate bool) *Job {
	return NewJob("collection", interval, immediate, func(ctx context.Context) error {
		_, err := p.RunCollection(ctx)
		return err
	})
}

// NewAnalysisJob builds the periodic analysis job over the pipeline.
func NewAnalysisJob(p *Pipeline, interval time.Duration, immediate bool) *Job {
	return NewJob("analysis", interval, immediate, func(ctx context.Context) error {
		_, err := p.RunAnalysis(ctx)
		return err
	})
}

// Serve implements suture.Service.
func (j *Job) Serve(ctx context.Context) error {
	if j.immediate {
		j.runOnce(ctx)
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *Job) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, j.interval)
	defer cancel()
	if err := j.run(runCtx); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("job", j.name).Msg("scheduled job failed")
	}
}

func (j *Job) String() string { return "job-" + j.name }
