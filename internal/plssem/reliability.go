// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import "gonum.org/v1/gonum/stat"

// fixedErrorVariance is the per-indicator measurement-error variance assumed
// by the composite-reliability and AVE formulas. The textbook convention is
// 1 - loading^2 per indicator; this engine keeps the flat 0.3 the original
// model was published with, so reliability figures remain comparable across
// implementations. Documented as a modeling simplification, not textbook CR.
const fixedErrorVariance = 0.3

// Reliability holds the internal-consistency and convergent-validity
// diagnostics of one construct.
type Reliability struct {
	CronbachAlpha            float64 `json:"cronbach_alpha"`
	CompositeReliability     float64 `json:"composite_reliability"`
	AverageVarianceExtracted float64 `json:"average_variance_extracted"`
	// DiscriminantValidity is the Fornell-Larcker criterion: AVE > 0.5.
	DiscriminantValidity bool `json:"discriminant_validity"`
}

// Validate computes reliability diagnostics per construct from the
// standardized indicator blocks and the loadings captured by the scorer.
//
// Single-indicator constructs report exactly 1.0 for all three metrics by
// convention; the variance-partition formulas are undefined at k=1.
func Validate(model ModelSpec, prep *Prepared, loadings map[string]map[string]float64) map[string]*Reliability {
	out := make(map[string]*Reliability, len(model.Constructs))

	for _, c := range model.Constructs {
		block := prep.Blocks[c.Name]
		if block == nil {
			continue
		}
		if len(block.Columns) == 1 {
			out[c.Name] = &Reliability{
				CronbachAlpha:            1.0,
				CompositeReliability:     1.0,
				AverageVarianceExtracted: 1.0,
				DiscriminantValidity:     true,
			}
			continue
		}

		load := make([]float64, 0, len(block.Columns))
		for _, col := range block.Columns {
			load = append(load, loadings[c.Name][col])
		}

		ave := averageVarianceExtracted(load)
		out[c.Name] = &Reliability{
			CronbachAlpha:            cronbachAlpha(block),
			CompositeReliability:     compositeReliability(load),
			AverageVarianceExtracted: ave,
			DiscriminantValidity:     ave > 0.5,
		}
	}

	return out
}

// cronbachAlpha computes (k/(k-1)) * (1 - sum(item variances)/var(sum)).
// Item and total variances are sample variances (divide by n-1).
func cronbachAlpha(block *Block) float64 {
	k := len(block.Columns)
	n := block.Rows()
	if k < 2 || n < 2 {
		return 1.0
	}

	var sumItemVar float64
	for _, col := range block.Data {
		sumItemVar += stat.Variance(col, nil)
	}

	totals := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			totals[i] += block.Data[j][i]
		}
	}
	totalVar := stat.Variance(totals, nil)
	if totalVar == 0 {
		return 0
	}

	return (float64(k) / float64(k-1)) * (1 - sumItemVar/totalVar)
}

// compositeReliability computes (sum L)^2 / ((sum L)^2 + k*0.3) under the
// fixed error-variance convention.
func compositeReliability(loadings []float64) float64 {
	var sum float64
	for _, l := range loadings {
		sum += l
	}
	sumSq := sum * sum
	errVar := float64(len(loadings)) * fixedErrorVariance
	if sumSq+errVar == 0 {
		return 0
	}
	return sumSq / (sumSq + errVar)
}

// averageVarianceExtracted computes sum(L^2) / (sum(L^2) + k*0.3) under the
// same convention.
func averageVarianceExtracted(loadings []float64) float64 {
	var sumSq float64
	for _, l := range loadings {
		sumSq += l * l
	}
	errVar := float64(len(loadings)) * fixedErrorVariance
	if sumSq+errVar == 0 {
		return 0
	}
	return sumSq / (sumSq + errVar)
}
