// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// BootstrapConfig controls the resampling loop.
type BootstrapConfig struct {
	// Resamples is the number of bootstrap iterations. Default: 5000.
	Resamples int

	// Workers is the number of parallel workers. Iterations are pure and
	// independent, so they chunk freely. If <= 0, defaults to NumCPU.
	Workers int

	// Seed makes the resampling reproducible. A zero seed is used as-is,
	// so callers wanting run-to-run variation must supply one.
	Seed int64

	// MaxFailureFraction is the tolerated share of failed iterations before
	// the aggregate statistics carry a low-confidence caveat. Default: 0.1.
	MaxFailureFraction float64

	// SignificanceLevel is the two-sided alpha for flagging a path as
	// significant. Default: 0.05.
	SignificanceLevel float64
}

// PathDistribution is the aggregate of one path's resampled coefficients:
// moments, the empirical 95% bootstrap CI, and a normal-approximation
// significance test.
type PathDistribution struct {
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	CILower    float64 `json:"ci_lower"`
	CIUpper    float64 `json:"ci_upper"`
	TStatistic float64 `json:"t_statistic"`
	PValue     float64 `json:"p_value"`
	// Significant reports PValue < the configured significance level. It is
	// meaningful only when Std > 0.
	Significant bool `json:"significant"`
	Samples     int  `json:"samples"`
}

// BootstrapResult is the per-path distribution set plus failure accounting.
type BootstrapResult struct {
	Paths map[string]*PathDistribution `json:"paths"`

	// FailedIterations counts resamples where any path fit was degenerate.
	// Those iterations are dropped whole; statistics cover the rest.
	FailedIterations int `json:"failed_iterations"`

	// LowConfidence is set when failures exceed the configured fraction,
	// signalling that the confidence intervals rest on a reduced sample.
	LowConfidence bool `json:"low_confidence"`
}

// Bootstrap resamples the score table with replacement and re-fits the
// single-predictor paths on every resample, aggregating the coefficient
// distributions per path.
//
// Iterations are distributed over a worker pool; each worker owns its RNG
// (seeded deterministically from the configured seed) and a private result
// buffer, so the loop shares no mutable state. Aggregate statistics are
// invariant to iteration order. Workers poll ctx between iterations for
// cooperative early exit.
func Bootstrap(ctx context.Context, model ModelSpec, fitter Fitter, scores *ScoreTable, cfg BootstrapConfig) (*BootstrapResult, error) {
	if cfg.Resamples <= 0 {
		cfg.Resamples = 5000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MaxFailureFraction <= 0 {
		cfg.MaxFailureFraction = 0.1
	}
	if cfg.SignificanceLevel <= 0 {
		cfg.SignificanceLevel = 0.05
	}
	if fitter == nil {
		fitter = OLSFitter{}
	}

	n := scores.Rows()
	if n < 2 {
		return nil, &DegenerateInputError{Step: "bootstrap", Reason: "score table has fewer than 2 rows"}
	}

	pathNames := make([]string, 0, len(model.Paths))
	for _, p := range model.Paths {
		pathNames = append(pathNames, p.Name)
	}

	type chunkResult struct {
		coeffs map[string][]float64
		failed int
	}

	workers := cfg.Workers
	if workers > cfg.Resamples {
		workers = cfg.Resamples
	}
	chunkSize := (cfg.Resamples + workers - 1) / workers
	results := make([]chunkResult, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > cfg.Resamples {
			end = cfg.Resamples
		}
		iters := end - start
		if iters <= 0 {
			break
		}

		wg.Add(1)
		go func(slot int, iters int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(cfg.Seed + int64(slot)*0x9e3779b9))
			local := chunkResult{coeffs: make(map[string][]float64, len(pathNames))}
			indices := make([]int, n)

			for it := 0; it < iters; it++ {
				if ctx.Err() != nil {
					break
				}

				for i := range indices {
					indices[i] = rng.Intn(n)
				}
				resampled := scores.Resample(indices)

				// All three fits must succeed before any coefficient is
				// recorded, so a late failure cannot leave the per-path
				// series with unequal lengths.
				iterCoeffs := make(map[string]float64, len(model.Paths))
				ok := true
				for _, p := range model.Paths {
					stats, err := fitter.Fit([][]float64{resampled.Column(p.Source)}, resampled.Column(p.Target))
					if err != nil {
						ok = false
						break
					}
					iterCoeffs[p.Name] = stats.Coefficients[0]
				}
				if !ok {
					local.failed++
					continue
				}
				for name, c := range iterCoeffs {
					local.coeffs[name] = append(local.coeffs[name], c)
				}
			}

			results[slot] = local
		}(w, iters)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := make(map[string][]float64, len(pathNames))
	out := &BootstrapResult{Paths: make(map[string]*PathDistribution, len(pathNames))}
	for _, r := range results {
		out.FailedIterations += r.failed
		for name, c := range r.coeffs {
			merged[name] = append(merged[name], c...)
		}
	}

	for _, name := range pathNames {
		coeffs := merged[name]
		if len(coeffs) == 0 {
			continue
		}
		out.Paths[name] = summarize(coeffs, cfg.SignificanceLevel)
	}

	if float64(out.FailedIterations) > cfg.MaxFailureFraction*float64(cfg.Resamples) {
		out.LowConfidence = true
	}

	return out, nil
}

// summarize reduces one coefficient series to its reported statistics.
// Std is the population standard deviation; the t statistic is mean/std
// with a zero fallback when the distribution is degenerate, and the p-value
// is the two-sided tail of the standard normal at |t|.
func summarize(coeffs []float64, alpha float64) *PathDistribution {
	mean := stat.Mean(coeffs, nil)

	var ss float64
	for _, c := range coeffs {
		d := c - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(coeffs)))

	sorted := append([]float64(nil), coeffs...)
	sort.Float64s(sorted)

	d := &PathDistribution{
		Mean:    mean,
		Std:     std,
		CILower: stat.Quantile(0.025, stat.LinInterp, sorted, nil),
		CIUpper: stat.Quantile(0.975, stat.LinInterp, sorted, nil),
		Samples: len(coeffs),
	}
	if std > 0 {
		d.TStatistic = mean / std
		norm := distuv.Normal{Mu: 0, Sigma: 1}
		d.PValue = 2 * (1 - norm.CDF(math.Abs(d.TStatistic)))
		d.Significant = d.PValue < alpha
	}
	return d
}
