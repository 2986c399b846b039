// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Config is the explicit configuration passed into an analysis run. There is
// no ambient global state; every component reads from this struct.
type Config struct {
	// MinSampleSize is the cleaned-row count below which results carry an
	// insufficient-sample warning. Default: 100.
	MinSampleSize int

	// BootstrapResamples is the bootstrap iteration count. Default: 5000.
	BootstrapResamples int

	// BootstrapWorkers bounds bootstrap parallelism. Default: NumCPU.
	BootstrapWorkers int

	// SignificanceLevel is the two-sided alpha for significance flags.
	// Default: 0.05.
	SignificanceLevel float64

	// Seed fixes the bootstrap RNG for reproducible runs.
	Seed int64
}

// DefaultConfig returns the configuration the original model was published
// with.
func DefaultConfig() Config {
	return Config{
		MinSampleSize:      100,
		BootstrapResamples: 5000,
		SignificanceLevel:  0.05,
	}
}

// Result is the full outcome of one analysis run, shaped for the dashboard,
// report generators and agents that consume it. The field names and nesting
// are a serialization contract; consumers parse these keys.
type Result struct {
	AnalysisID        string `json:"analysis_id"`
	AnalysisTimestamp string `json:"analysis_timestamp"`

	// SampleSize is the cleaned observation count the run used.
	SampleSize int `json:"sample_size"`

	// PLSResults holds one entry per structural path (keyed by path name),
	// plus Complete_Model and Effects blocks.
	PLSResults map[string]any `json:"pls_results"`

	Loadings          map[string]map[string]float64 `json:"loadings"`
	ExplainedVariance map[string]float64            `json:"explained_variance"`
	ReliabilityScores map[string]*Reliability       `json:"reliability_scores"`

	ModelSpecification ModelSpecification `json:"model_specification"`

	Warnings []Warning `json:"warnings,omitempty"`

	Bootstrap *BootstrapResult `json:"bootstrap,omitempty"`
}

// ModelSpecification echoes the declarative topology and the published
// reference coefficients the run should be compared against.
type ModelSpecification struct {
	LatentVariables map[string][]string `json:"latent_variables"`
	StructuralModel map[string]float64  `json:"structural_model"`
}

// MarshalJSON uses goccy/go-json for the whole result tree.
func (r *Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal((*alias)(r))
}

// Analyzer runs the full estimation pipeline over a dataset. It is safe for
// concurrent use; runs share no state.
type Analyzer struct {
	model  ModelSpec
	cfg    Config
	fitter Fitter
}

// NewAnalyzer creates an Analyzer for the given model. A nil fitter
// defaults to ordinary least squares.
func NewAnalyzer(model ModelSpec, cfg Config, fitter Fitter) *Analyzer {
	if cfg.MinSampleSize <= 0 {
		cfg.MinSampleSize = 100
	}
	if cfg.BootstrapResamples <= 0 {
		cfg.BootstrapResamples = 5000
	}
	if cfg.SignificanceLevel <= 0 {
		cfg.SignificanceLevel = 0.05
	}
	if fitter == nil {
		fitter = OLSFitter{}
	}
	return &Analyzer{model: model, cfg: cfg, fitter: fitter}
}

// Model returns the structural model the analyzer interprets.
func (a *Analyzer) Model() ModelSpec { return a.model }

// Run executes prepare -> composite -> structural -> reliability ->
// bootstrap and assembles the result contract. Data-quality issues surface
// as warnings on the result; a fundamentally unusable table (wrong schema,
// zero usable rows) returns an error instead.
func (a *Analyzer) Run(ctx context.Context, ds *Dataset) (*Result, error) {
	prep, err := a.Prepare(ds)
	if err != nil {
		return nil, fmt.Errorf("prepare: %w", err)
	}

	comp, err := Score(a.model, prep)
	if err != nil {
		return nil, fmt.Errorf("composite scoring: %w", err)
	}

	structural, err := NewEstimator(a.model, a.fitter).Estimate(comp.Scores)
	if err != nil {
		return nil, fmt.Errorf("structural estimation: %w", err)
	}

	reliability := Validate(a.model, prep, comp.Loadings)

	boot, err := Bootstrap(ctx, a.model, a.fitter, comp.Scores, BootstrapConfig{
		Resamples:         a.cfg.BootstrapResamples,
		Workers:           a.cfg.BootstrapWorkers,
		Seed:              a.cfg.Seed,
		SignificanceLevel: a.cfg.SignificanceLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	res := a.assemble(prep, comp, structural, reliability)
	res.Bootstrap = boot
	if boot.LowConfidence {
		res.Warnings = append(res.Warnings, warningf(WarnBootstrapFailures,
			"%d of %d bootstrap iterations failed to fit; confidence intervals rest on a reduced sample",
			boot.FailedIterations, a.cfg.BootstrapResamples))
	}

	return res, nil
}

// Prepare exposes the cleaning stage on its own; the scheduler uses it to
// decide whether enough data has accumulated before paying for a full run.
func (a *Analyzer) Prepare(ds *Dataset) (*Prepared, error) {
	return NewPreparer(a.model, PreparerConfig{MinSampleSize: a.cfg.MinSampleSize}).Prepare(ds)
}

func (a *Analyzer) assemble(prep *Prepared, comp *Composite, structural *StructuralResult, reliability map[string]*Reliability) *Result {
	res := &Result{
		AnalysisID:        uuid.NewString(),
		AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
		SampleSize:        prep.RowCount,
		PLSResults:        make(map[string]any, len(structural.Paths)+2),
		Loadings:          comp.Loadings,
		ExplainedVariance: comp.ExplainedVariance,
		ReliabilityScores: reliability,
		ModelSpecification: ModelSpecification{
			LatentVariables: make(map[string][]string, len(a.model.Constructs)),
			StructuralModel: a.model.ReferenceCoefficients,
		},
		Warnings: append([]Warning(nil), prep.Warnings...),
	}

	for _, c := range a.model.Constructs {
		res.ModelSpecification.LatentVariables[c.Name] = c.Indicators
	}

	for name, est := range structural.Paths {
		res.PLSResults[name] = est
		if est.Err != "" {
			res.Warnings = append(res.Warnings, warningf(WarnPathFailed,
				"path %s could not be estimated: %s", name, est.Err))
		}
	}

	if cm := structural.Complete; cm != nil {
		complete := make(map[string]any, len(cm.Coefficients)+3)
		for _, pred := range cm.Predictors {
			label := pred
			if c := a.model.Construct(pred); c != nil && c.Label != "" {
				label = c.Label
			}
			complete[label+"_coefficient"] = cm.Coefficients[pred]
		}
		if cm.Err == "" {
			complete["r_squared"] = cm.RSquared
			complete["rmse"] = cm.RMSE
		} else {
			complete["error"] = cm.Err
			res.Warnings = append(res.Warnings, warningf(WarnPathFailed,
				"complete model could not be estimated: %s", cm.Err))
		}
		res.PLSResults["Complete_Model"] = complete
	}

	if eff := structural.Effects; eff != nil {
		srcLabel := a.labelOf(eff.Source)
		tgtLabel := a.labelOf(eff.Target)
		res.PLSResults["Effects"] = map[string]float64{
			fmt.Sprintf("direct_effect_%s_%s", srcLabel, tgtLabel):   eff.Direct,
			fmt.Sprintf("indirect_effect_%s_%s", srcLabel, tgtLabel): eff.Indirect,
			fmt.Sprintf("total_effect_%s_%s", srcLabel, tgtLabel):    eff.Total,
		}
	}

	return res
}

func (a *Analyzer) labelOf(construct string) string {
	if c := a.model.Construct(construct); c != nil && c.Label != "" {
		return c.Label
	}
	return construct
}
