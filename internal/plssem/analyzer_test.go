// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// generatedDataset builds n observations from a known structural process:
//
//	satisfaction = 0.884*tc + noise
//	employment   = 0.319*tc + 0.580*satisfaction + noise
//
// with each observed indicator an affine, lightly noised reading of its
// construct. Standardization removes the affine part, so the estimated
// paths must recover the generating structure.
func generatedDataset(n int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds := &Dataset{Rows: make([]Observation, 0, n)}

	for i := 0; i < n; i++ {
		tc := rng.NormFloat64()
		sat := 0.884*tc + 0.3*rng.NormFloat64()
		emp := 0.319*tc + 0.580*sat + 0.3*rng.NormFloat64()

		ind := func(latent, scale, offset, noise float64) float64 {
			return offset + scale*latent + noise*rng.NormFloat64()
		}

		ds.Rows = append(ds.Rows, Observation{
			Region: "Andalucía",
			Date:   time.Date(2024, time.Month(i%12+1), 1, 0, 0, 0, 0, time.UTC),
			Values: map[string]float64{
				IndEconomicSocialBenefit: ind(tc, 5, 75, 1),
				IndOccupancyRate:         ind(tc, 8, 65, 1.5),
				IndCompetitivenessIndex:  ind(tc, 6, 72, 1.2),
				// Rank is inverted downstream: better satisfaction, lower rank.
				IndCurrentRank:      ind(-sat, 12, 50, 2),
				IndTotalReviews:     ind(sat, 800, 5000, 150),
				IndTotalFacilities:  ind(sat, 60, 850, 12),
				IndTourismEmployment: ind(emp, 3000, 45000, 500),
			},
		})
	}
	return ds
}

func TestAnalyzer_BaselineRoundTrip(t *testing.T) {
	ds := generatedDataset(150, 20240101)
	analyzer := NewAnalyzer(DefaultModel(), Config{
		MinSampleSize:      100,
		BootstrapResamples: 400,
		BootstrapWorkers:   4,
		Seed:               1,
	}, nil)

	res, err := analyzer.Run(context.Background(), ds)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.SampleSize != 150 {
		t.Errorf("SampleSize = %d, want 150", res.SampleSize)
	}

	pathCoeff := func(name string) float64 {
		t.Helper()
		est, ok := res.PLSResults[name].(*PathEstimate)
		if !ok {
			t.Fatalf("pls_results[%s] is %T, want *PathEstimate", name, res.PLSResults[name])
		}
		if est.Err != "" {
			t.Fatalf("path %s failed: %s", name, est.Err)
		}
		return est.Coefficient
	}

	// TC and Satisfaction composites carry the same multi-indicator scaling,
	// so TC -> Satisfaction recovers the standardized generating coefficient.
	a := pathCoeff(PathTCToSatisfaction)
	if a < 0.884-0.15 || a > 0.884+0.15 {
		t.Errorf("TC_to_Satisfaction = %g, want 0.884 +/- 0.15", a)
	}

	// The remaining paths regress the single-indicator employment composite
	// on multi-indicator composites, which rescales the slopes; the ordering
	// and signs of the generating structure must still come through.
	b := pathCoeff(PathSatisfactionToEmployment)
	direct := pathCoeff(PathTCToEmployment)
	if b <= 0 || direct <= 0 {
		t.Errorf("structural slopes must be positive: Sat->Emp=%g, TC->Emp=%g", b, direct)
	}

	complete, ok := res.PLSResults["Complete_Model"].(map[string]any)
	if !ok {
		t.Fatalf("Complete_Model is %T, want map", res.PLSResults["Complete_Model"])
	}
	r2, _ := complete["r_squared"].(float64)
	if r2 < 0.5 || r2 > 1 {
		t.Errorf("complete model R2 = %g, want strong fit on generated data", r2)
	}
	tcCoeff, _ := complete["TC_coefficient"].(float64)
	satCoeff, _ := complete["Satisfaction_coefficient"].(float64)
	if tcCoeff <= 0 || satCoeff <= 0 {
		t.Errorf("complete model coefficients must be positive: TC=%g, Satisfaction=%g", tcCoeff, satCoeff)
	}
	if satCoeff <= tcCoeff {
		// The generating process weights satisfaction more heavily.
		t.Errorf("Satisfaction coefficient %g should dominate TC coefficient %g", satCoeff, tcCoeff)
	}
}

func TestAnalyzer_EffectsIdentity(t *testing.T) {
	res, err := NewAnalyzer(DefaultModel(), Config{
		MinSampleSize: 50, BootstrapResamples: 100, BootstrapWorkers: 2, Seed: 5,
	}, nil).Run(context.Background(), generatedDataset(120, 7))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	effects, ok := res.PLSResults["Effects"].(map[string]float64)
	if !ok {
		t.Fatalf("Effects is %T, want map[string]float64", res.PLSResults["Effects"])
	}

	direct := effects["direct_effect_TC_Employment"]
	indirect := effects["indirect_effect_TC_Employment"]
	total := effects["total_effect_TC_Employment"]

	a := res.PLSResults[PathTCToSatisfaction].(*PathEstimate).Coefficient
	b := res.PLSResults[PathSatisfactionToEmployment].(*PathEstimate).Coefficient

	if math.Abs(indirect-a*b) > floatTol {
		t.Errorf("indirect = %g, want product of path coefficients %g", indirect, a*b)
	}
	if math.Abs(total-(direct+indirect)) > floatTol {
		t.Errorf("total = %g, want direct+indirect = %g", total, direct+indirect)
	}
}

func TestAnalyzer_InsufficientDataCompletesWithWarning(t *testing.T) {
	res, err := NewAnalyzer(DefaultModel(), Config{
		MinSampleSize: 100, BootstrapResamples: 100, BootstrapWorkers: 2, Seed: 2,
	}, nil).Run(context.Background(), generatedDataset(80, 3))
	if err != nil {
		t.Fatalf("Run() error = %v, want completion with warning", err)
	}

	found := false
	for _, w := range res.Warnings {
		if w.Code == WarnInsufficientSample {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want %s", res.Warnings, WarnInsufficientSample)
	}
	if res.SampleSize != 80 {
		t.Errorf("SampleSize = %d, want 80", res.SampleSize)
	}
}

func TestAnalyzer_ResultSerialization(t *testing.T) {
	res, err := NewAnalyzer(DefaultModel(), Config{
		MinSampleSize: 50, BootstrapResamples: 100, BootstrapWorkers: 2, Seed: 8,
	}, nil).Run(context.Background(), generatedDataset(120, 9))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"analysis_timestamp", "pls_results", "loadings", "reliability_scores", "model_specification", "bootstrap"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("serialized result missing %q", key)
		}
	}

	pls, _ := decoded["pls_results"].(map[string]any)
	for _, key := range []string{PathTCToSatisfaction, PathTCToEmployment, PathSatisfactionToEmployment, "Complete_Model", "Effects"} {
		if _, ok := pls[key]; !ok {
			t.Errorf("pls_results missing %q", key)
		}
	}

	path, _ := pls[PathTCToSatisfaction].(map[string]any)
	for _, key := range []string{"coefficient", "r_squared", "rmse"} {
		if _, ok := path[key]; !ok {
			t.Errorf("path block missing %q", key)
		}
	}

	spec, _ := decoded["model_specification"].(map[string]any)
	ref, _ := spec["structural_model"].(map[string]any)
	if got := ref["Tourism_Competitiveness -> Satisfaction"]; got != 0.884 {
		t.Errorf("reference coefficient = %v, want 0.884", got)
	}
}

func TestAnalyzer_ModelSpecificationEchoesTopology(t *testing.T) {
	res, err := NewAnalyzer(DefaultModel(), Config{
		MinSampleSize: 50, BootstrapResamples: 100, BootstrapWorkers: 2, Seed: 4,
	}, nil).Run(context.Background(), generatedDataset(110, 13))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lv := res.ModelSpecification.LatentVariables
	if len(lv) != 3 {
		t.Fatalf("latent_variables has %d constructs, want 3", len(lv))
	}
	if len(lv[ConstructCompetitiveness]) != 3 || len(lv[ConstructSatisfaction]) != 3 || len(lv[ConstructEmployment]) != 1 {
		t.Errorf("indicator assignment wrong: %v", lv)
	}
}
