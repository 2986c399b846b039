// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"math"
	"testing"
)

func preparedFixture(t *testing.T, n int) *Prepared {
	t.Helper()
	prep, err := NewPreparer(DefaultModel(), PreparerConfig{MinSampleSize: 10}).Prepare(syntheticDataset(n))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return prep
}

func TestScore_Shape(t *testing.T) {
	prep := preparedFixture(t, 120)

	comp, err := Score(DefaultModel(), prep)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if got := len(comp.Scores.Constructs); got != 3 {
		t.Fatalf("got %d composite columns, want 3", got)
	}
	if comp.Scores.Rows() != prep.RowCount {
		t.Errorf("score rows = %d, want %d", comp.Scores.Rows(), prep.RowCount)
	}
	for _, c := range comp.Scores.Constructs {
		if len(comp.Scores.Column(c)) != prep.RowCount {
			t.Errorf("column %s has %d rows, want %d", c, len(comp.Scores.Column(c)), prep.RowCount)
		}
	}
}

func TestScore_Determinism(t *testing.T) {
	prep := preparedFixture(t, 150)

	a, err := Score(DefaultModel(), prep)
	if err != nil {
		t.Fatalf("first Score() error = %v", err)
	}
	b, err := Score(DefaultModel(), prep)
	if err != nil {
		t.Fatalf("second Score() error = %v", err)
	}

	for _, c := range a.Scores.Constructs {
		ca, cb := a.Scores.Column(c), b.Scores.Column(c)
		for i := range ca {
			if ca[i] != cb[i] {
				t.Fatalf("column %s row %d differs between runs: %g vs %g", c, i, ca[i], cb[i])
			}
		}
	}
}

func TestScore_SignConvention(t *testing.T) {
	prep := preparedFixture(t, 150)

	comp, err := Score(DefaultModel(), prep)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	for construct, loadings := range comp.Loadings {
		maxAbs, maxVal := 0.0, 0.0
		for _, l := range loadings {
			if math.Abs(l) > maxAbs {
				maxAbs = math.Abs(l)
				maxVal = l
			}
		}
		if maxVal < 0 {
			t.Errorf("construct %s: largest-magnitude loading = %g, sign convention requires positive", construct, maxVal)
		}
	}
}

func TestScore_SingleIndicatorPassthrough(t *testing.T) {
	prep := preparedFixture(t, 100)

	comp, err := Score(DefaultModel(), prep)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	want := prep.Blocks[ConstructEmployment].Column(IndTourismEmployment)
	got := comp.Scores.Column(ConstructEmployment)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: composite = %g, want standardized indicator %g", i, got[i], want[i])
		}
	}
	if l := comp.Loadings[ConstructEmployment][IndTourismEmployment]; l != 1.0 {
		t.Errorf("single-indicator loading = %g, want exactly 1.0", l)
	}
	if ev := comp.ExplainedVariance[ConstructEmployment]; ev != 1.0 {
		t.Errorf("single-indicator explained variance = %g, want exactly 1.0", ev)
	}
}

func TestScore_ExplainedVarianceBounds(t *testing.T) {
	prep := preparedFixture(t, 150)

	comp, err := Score(DefaultModel(), prep)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	for construct, ev := range comp.ExplainedVariance {
		if ev <= 0 || ev > 1+floatTol {
			t.Errorf("construct %s explained variance = %g, want (0, 1]", construct, ev)
		}
	}
}

func TestScore_RecoversDominantDirection(t *testing.T) {
	// Three indicators driven by one common factor must load with the same
	// sign and explain most of the block variance.
	n := 200
	block := &Block{
		Construct: "Common",
		Columns:   []string{"a", "b", "c"},
		Data:      make([][]float64, 3),
	}
	for j := range block.Data {
		block.Data[j] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		f := math.Sin(float64(i) / 7)
		block.Data[0][i] = f + 0.1*math.Sin(float64(i)/3)
		block.Data[1][i] = f + 0.1*math.Cos(float64(i)/4)
		block.Data[2][i] = f + 0.1*math.Sin(float64(i)/5)
	}

	scores, loadings, explained := firstPrincipalComponent(block)
	if len(scores) != n {
		t.Fatalf("got %d scores, want %d", len(scores), n)
	}
	for j, l := range loadings {
		if l <= 0 {
			t.Errorf("loading %d = %g, want positive for a common-factor block", j, l)
		}
	}
	if explained < 0.9 {
		t.Errorf("explained variance = %g, want > 0.9 for a dominant common factor", explained)
	}

	norm := vectorNorm(loadings)
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("loading vector norm = %g, want 1", norm)
	}
}
