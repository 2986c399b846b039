// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ScoreTable holds one composite score per observation per construct. Column
// order follows the model's construct declaration order; all columns share
// the row order of the Prepared blocks they were derived from.
type ScoreTable struct {
	Constructs []string
	Columns    map[string][]float64
}

// Rows returns the number of observations in the table.
func (s *ScoreTable) Rows() int {
	for _, col := range s.Columns {
		return len(col)
	}
	return 0
}

// Column returns the composite scores of the named construct, or nil.
func (s *ScoreTable) Column(construct string) []float64 {
	return s.Columns[construct]
}

// Resample builds a new table from the given row indices, sampling rows of
// every column in lockstep. Indices may repeat (bootstrap resampling).
func (s *ScoreTable) Resample(indices []int) *ScoreTable {
	out := &ScoreTable{
		Constructs: s.Constructs,
		Columns:    make(map[string][]float64, len(s.Columns)),
	}
	for name, col := range s.Columns {
		resampled := make([]float64, len(indices))
		for i, idx := range indices {
			resampled[i] = col[idx]
		}
		out.Columns[name] = resampled
	}
	return out
}

// Composite is the CompositeScorer output: the score table plus the loading
// vectors and explained-variance fractions captured for reporting.
type Composite struct {
	Scores            *ScoreTable
	Loadings          map[string]map[string]float64
	ExplainedVariance map[string]float64
}

// powerIterMax bounds the power-iteration loop. The blocks here are 3x3 or
// smaller, so convergence is typically a handful of iterations.
const (
	powerIterMax = 500
	powerIterTol = 1e-12
)

// Score reduces each standardized indicator block to one composite column.
//
// Multi-indicator blocks project onto the first principal component of the
// block; the per-observation score is the projection, and the component's
// loading vector and explained-variance fraction are recorded. Eigenvectors
// are sign-ambiguous, so the loading with the largest magnitude is forced
// positive. Repeated runs on identical data produce identical scores.
//
// Single-indicator blocks pass the standardized column through unchanged
// with a trivial loading of 1.0.
func Score(model ModelSpec, prep *Prepared) (*Composite, error) {
	out := &Composite{
		Scores: &ScoreTable{
			Columns: make(map[string][]float64, len(model.Constructs)),
		},
		Loadings:          make(map[string]map[string]float64, len(model.Constructs)),
		ExplainedVariance: make(map[string]float64, len(model.Constructs)),
	}

	for _, c := range model.Constructs {
		block, ok := prep.Blocks[c.Name]
		if !ok {
			return nil, &DegenerateInputError{Step: "composite", Reason: "no prepared block for construct " + c.Name}
		}
		out.Scores.Constructs = append(out.Scores.Constructs, c.Name)

		if len(block.Columns) == 1 {
			col := block.Data[0]
			out.Scores.Columns[c.Name] = append([]float64(nil), col...)
			out.Loadings[c.Name] = map[string]float64{block.Columns[0]: 1.0}
			out.ExplainedVariance[c.Name] = 1.0
			continue
		}

		scores, loadings, explained := firstPrincipalComponent(block)
		out.Scores.Columns[c.Name] = scores
		named := make(map[string]float64, len(block.Columns))
		for j, col := range block.Columns {
			named[col] = loadings[j]
		}
		out.Loadings[c.Name] = named
		out.ExplainedVariance[c.Name] = explained
	}

	return out, nil
}

// firstPrincipalComponent extracts the dominant eigenvector of the block's
// covariance matrix by power iteration and projects the (centered) rows onto
// it. Returns the per-row scores, the loading vector, and the fraction of
// total variance the component explains.
func firstPrincipalComponent(block *Block) (scores, loadings []float64, explained float64) {
	k := len(block.Columns)
	n := block.Rows()

	// Center each column. Standardized columns are already near zero mean,
	// but a zero-variance column substituted with zeros is exactly centered
	// too, so this is cheap and keeps the projection exact.
	centered := make([][]float64, k)
	for j := range block.Data {
		mean := stat.Mean(block.Data[j], nil)
		col := make([]float64, n)
		for i, v := range block.Data[j] {
			col[i] = v - mean
		}
		centered[j] = col
	}

	// Covariance matrix C = X'X / (n-1).
	cov := make([][]float64, k)
	denom := float64(n - 1)
	if denom <= 0 {
		denom = 1
	}
	for a := 0; a < k; a++ {
		cov[a] = make([]float64, k)
	}
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += centered[a][i] * centered[b][i]
			}
			cov[a][b] = sum / denom
			cov[b][a] = cov[a][b]
		}
	}

	// Power iteration from a deterministic uniform start vector. No
	// randomness: reproducibility of the dominant eigenvector matters more
	// than robustness against a pathological orthogonal start, and the
	// uniform vector is never orthogonal to the first component of a
	// positively correlated indicator block.
	v := make([]float64, k)
	for j := range v {
		v[j] = 1.0 / math.Sqrt(float64(k))
	}
	var eigenvalue float64
	for iter := 0; iter < powerIterMax; iter++ {
		next := make([]float64, k)
		for a := 0; a < k; a++ {
			var sum float64
			for b := 0; b < k; b++ {
				sum += cov[a][b] * v[b]
			}
			next[a] = sum
		}
		norm := vectorNorm(next)
		if norm == 0 {
			// All-zero covariance (every column constant): fall back to the
			// uniform direction with zero explained variance.
			break
		}
		for a := range next {
			next[a] /= norm
		}
		delta := 0.0
		for a := range next {
			delta += math.Abs(next[a] - v[a])
		}
		v = next
		eigenvalue = norm
		if delta < powerIterTol {
			break
		}
	}

	// Deterministic sign convention: largest-magnitude loading is positive.
	maxIdx := 0
	for j := 1; j < k; j++ {
		if math.Abs(v[j]) > math.Abs(v[maxIdx]) {
			maxIdx = j
		}
	}
	if v[maxIdx] < 0 {
		for j := range v {
			v[j] = -v[j]
		}
	}

	scores = make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < k; j++ {
			sum += centered[j][i] * v[j]
		}
		scores[i] = sum
	}

	var trace float64
	for a := 0; a < k; a++ {
		trace += cov[a][a]
	}
	if trace > 0 {
		explained = eigenvalue / trace
	}

	return scores, v, explained
}

func vectorNorm(v []float64) float64 {
	var ss float64
	for _, x := range v {
		ss += x * x
	}
	return math.Sqrt(ss)
}
