// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mredondo/touriscope/internal/logging"
	"github.com/mredondo/touriscope/internal/metrics"
	"github.com/mredondo/touriscope/internal/plssem"
)

// Orchestrator runs every source over every region and merges the partial
// records into observation rows keyed by (region, month).
type Orchestrator struct {
	sources []Source
	regions []string

	// monthsBack is how many trailing months each collection covers.
	monthsBack int

	now func() time.Time
}

// NewOrchestrator builds an orchestrator over the given regions. A nil
// sources slice installs the three bundled synthetic sources.
func NewOrchestrator(sources []Source, regions []string, monthsBack int) *Orchestrator {
	if sources == nil {
		sources = []Source{INESource{}, TripAdvisorSource{}, ExcelturSource{}}
	}
	if monthsBack < 1 {
		monthsBack = 12
	}
	return &Orchestrator{
		sources:    sources,
		regions:    regions,
		monthsBack: monthsBack,
		now:        time.Now,
	}
}

// Collect gathers the trailing window from every source for every region.
// A failing source is logged and skipped; its indicators are simply absent
// from the merged rows, and listwise deletion downstream handles the gaps.
// Collect fails only when the context ends or every source failed.
func (o *Orchestrator) Collect(ctx context.Context) ([]plssem.Observation, error) {
	months := monthsWindow(o.now(), o.monthsBack)

	type key struct {
		region string
		date   time.Time
	}
	merged := make(map[key]map[string]float64)

	failedSources := 0
	for _, src := range o.sources {
		start := time.Now()
		count := 0
		var srcErr error

		for _, region := range o.regions {
			records, err := src.Collect(ctx, region, months)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				srcErr = err
				logging.Ctx(ctx).Error().Err(err).
					Str("source", src.Name()).
					Str("region", region).
					Msg("source collection failed")
				break
			}
			for _, r := range records {
				k := key{region: r.Region, date: r.Date}
				if merged[k] == nil {
					merged[k] = make(map[string]float64, 8)
				}
				for name, v := range r.Values {
					merged[k][name] = v
				}
				count++
			}
		}

		metrics.RecordCollection(src.Name(), count, time.Since(start), srcErr)
		if srcErr != nil {
			failedSources++
			continue
		}
		logging.Ctx(ctx).Info().
			Str("source", src.Name()).
			Int("records", count).
			Msg("source collection finished")
	}

	if failedSources == len(o.sources) {
		return nil, fmt.Errorf("all %d sources failed", failedSources)
	}

	observations := make([]plssem.Observation, 0, len(merged))
	for k, values := range merged {
		observations = append(observations, plssem.Observation{
			Region: k.region,
			Date:   k.date,
			Values: values,
		})
	}
	sort.Slice(observations, func(i, j int) bool {
		if observations[i].Region != observations[j].Region {
			return observations[i].Region < observations[j].Region
		}
		return observations[i].Date.Before(observations[j].Date)
	})

	metrics.CollectionLastSuccess.SetToCurrentTime()
	return observations, nil
}
