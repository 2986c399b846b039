// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestBootstrap_Reproducible(t *testing.T) {
	scores := scoreFixture(120)
	cfg := BootstrapConfig{Resamples: 300, Workers: 4, Seed: 42}

	a, err := Bootstrap(context.Background(), DefaultModel(), nil, scores, cfg)
	if err != nil {
		t.Fatalf("first Bootstrap() error = %v", err)
	}
	b, err := Bootstrap(context.Background(), DefaultModel(), nil, scores, cfg)
	if err != nil {
		t.Fatalf("second Bootstrap() error = %v", err)
	}

	for name, da := range a.Paths {
		db := b.Paths[name]
		if db == nil {
			t.Fatalf("path %s missing from second run", name)
		}
		if da.Mean != db.Mean || da.Std != db.Std || da.CILower != db.CILower || da.CIUpper != db.CIUpper {
			t.Errorf("path %s statistics differ between identically seeded runs:\n%+v\n%+v", name, da, db)
		}
	}
}

func TestBootstrap_Statistics(t *testing.T) {
	scores := scoreFixture(150)

	res, err := Bootstrap(context.Background(), DefaultModel(), nil, scores, BootstrapConfig{
		Resamples: 500, Workers: 4, Seed: 7,
	})
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	for _, name := range []string{PathTCToSatisfaction, PathTCToEmployment, PathSatisfactionToEmployment} {
		d := res.Paths[name]
		if d == nil {
			t.Fatalf("no distribution for path %s", name)
		}
		if d.Samples+res.FailedIterations < 500 {
			t.Errorf("path %s: samples %d + failed %d < resamples", name, d.Samples, res.FailedIterations)
		}
		if d.CILower > d.Mean || d.Mean > d.CIUpper {
			t.Errorf("path %s: mean %g outside CI [%g, %g]", name, d.Mean, d.CILower, d.CIUpper)
		}
		if d.Std < 0 {
			t.Errorf("path %s: negative std %g", name, d.Std)
		}
		if d.PValue < 0 || d.PValue > 1 {
			t.Errorf("path %s: p-value %g outside [0, 1]", name, d.PValue)
		}
		if d.Std > 0 && math.Abs(d.TStatistic-d.Mean/d.Std) > floatTol {
			t.Errorf("path %s: t = %g, want mean/std = %g", name, d.TStatistic, d.Mean/d.Std)
		}
	}
}

func TestBootstrap_CIWidthDoesNotGrowWithN(t *testing.T) {
	// The empirical CI is an estimate of fixed population quantiles, so its
	// width must not widen systematically as the resample count grows.
	scores := scoreFixture(150)

	small, err := Bootstrap(context.Background(), DefaultModel(), nil, scores, BootstrapConfig{
		Resamples: 100, Workers: 2, Seed: 11,
	})
	if err != nil {
		t.Fatalf("Bootstrap(100) error = %v", err)
	}
	large, err := Bootstrap(context.Background(), DefaultModel(), nil, scores, BootstrapConfig{
		Resamples: 3000, Workers: 4, Seed: 11,
	})
	if err != nil {
		t.Fatalf("Bootstrap(3000) error = %v", err)
	}

	for name, s := range small.Paths {
		l := large.Paths[name]
		widthSmall := s.CIUpper - s.CILower
		widthLarge := l.CIUpper - l.CILower
		// Allow sampling slack; the large run must not be meaningfully wider.
		if widthLarge > widthSmall*1.25 {
			t.Errorf("path %s: CI width grew from %g (N=100) to %g (N=3000)", name, widthSmall, widthLarge)
		}
	}
}

func TestBootstrap_DegenerateDistribution(t *testing.T) {
	// y is an exact multiple of x, so every resample yields the same
	// coefficient: std 0, t 0 by convention, and no significance claim.
	n := 60
	x := make([]float64, n)
	y := make([]float64, n)
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = float64(i%13) - 6
		y[i] = 2 * x[i]
		z[i] = -0.5 * x[i]
	}
	scores := &ScoreTable{
		Constructs: []string{ConstructCompetitiveness, ConstructSatisfaction, ConstructEmployment},
		Columns: map[string][]float64{
			ConstructCompetitiveness: x,
			ConstructSatisfaction:    y,
			ConstructEmployment:      z,
		},
	}

	res, err := Bootstrap(context.Background(), DefaultModel(), nil, scores, BootstrapConfig{
		Resamples: 50, Workers: 2, Seed: 3,
	})
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}

	d := res.Paths[PathTCToSatisfaction]
	if d == nil {
		t.Fatal("no distribution for TC_to_Satisfaction")
	}
	if d.Std != 0 {
		t.Fatalf("std = %g, want exactly 0 for a deterministic relation", d.Std)
	}
	if d.TStatistic != 0 || d.Significant {
		t.Errorf("degenerate distribution must report t = 0 and no significance, got t=%g significant=%v",
			d.TStatistic, d.Significant)
	}
	if math.Abs(d.Mean-2) > floatTol {
		t.Errorf("mean = %g, want 2", d.Mean)
	}
}

func TestBootstrap_FailedIterationsAreCountedNotFatal(t *testing.T) {
	// With only two distinct rows, a resample that draws the same row every
	// time has zero-variance columns and must be dropped, not abort the run.
	scores := &ScoreTable{
		Constructs: []string{ConstructCompetitiveness, ConstructSatisfaction, ConstructEmployment},
		Columns: map[string][]float64{
			ConstructCompetitiveness: {0, 1},
			ConstructSatisfaction:    {0, 2},
			ConstructEmployment:      {1, 0},
		},
	}

	res, err := Bootstrap(context.Background(), DefaultModel(), nil, scores, BootstrapConfig{
		Resamples: 200, Workers: 2, Seed: 9,
	})
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if res.FailedIterations == 0 {
		t.Error("expected some degenerate resamples with n=2, got none")
	}
	// Roughly half of the two-row resamples are degenerate, far above the
	// tolerated failure fraction.
	if !res.LowConfidence {
		t.Errorf("failure rate %d/200 should trip the low-confidence caveat", res.FailedIterations)
	}
	for name, d := range res.Paths {
		if d.Samples+res.FailedIterations != 200 {
			t.Errorf("path %s: samples %d + failures %d != 200", name, d.Samples, res.FailedIterations)
		}
	}
}

func TestBootstrap_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Bootstrap(ctx, DefaultModel(), nil, scoreFixture(100), BootstrapConfig{
		Resamples: 5000, Workers: 2, Seed: 1,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Bootstrap() error = %v, want context.Canceled", err)
	}
}

func TestBootstrap_TooFewRows(t *testing.T) {
	scores := &ScoreTable{
		Constructs: []string{ConstructCompetitiveness},
		Columns:    map[string][]float64{ConstructCompetitiveness: {1}},
	}
	_, err := Bootstrap(context.Background(), DefaultModel(), nil, scores, BootstrapConfig{Resamples: 10})
	var dge *DegenerateInputError
	if !errors.As(err, &dge) {
		t.Fatalf("Bootstrap() error = %v, want *DegenerateInputError", err)
	}
}
