// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"fmt"
	"math"
)

// FitStats is the output of a single regression fit: one coefficient per
// predictor (intercept excluded), the in-sample coefficient of
// determination, and the root-mean-squared error.
type FitStats struct {
	Coefficients []float64
	RSquared     float64
	RMSE         float64
}

// Fitter is the capability contract for structural regressions: fit a
// response on one or more predictor columns and report coefficients with
// fit statistics. Implementations must fail explicitly on degenerate input
// instead of returning fabricated coefficients.
type Fitter interface {
	Fit(predictors [][]float64, response []float64) (*FitStats, error)
}

// OLSFitter fits by ordinary least squares with an intercept, solving the
// normal equations with a Cholesky decomposition. For the standardized
// single- and two-predictor fits used here this is numerically equivalent
// to a one-component partial-least-squares fit.
type OLSFitter struct{}

// Fit implements Fitter.
func (OLSFitter) Fit(predictors [][]float64, response []float64) (*FitStats, error) {
	k := len(predictors)
	n := len(response)

	if k == 0 {
		return nil, &DegenerateInputError{Step: "ols", Reason: "no predictor columns"}
	}
	if n < 2 {
		return nil, &DegenerateInputError{Step: "ols", Reason: fmt.Sprintf("need at least 2 rows, got %d", n)}
	}
	for j, col := range predictors {
		if len(col) != n {
			return nil, &DegenerateInputError{Step: "ols",
				Reason: fmt.Sprintf("predictor %d has %d rows, response has %d", j, len(col), n)}
		}
		if !hasVariance(col) {
			return nil, &DegenerateInputError{Step: "ols", Reason: fmt.Sprintf("predictor %d has zero variance", j)}
		}
	}
	if !hasVariance(response) {
		return nil, &DegenerateInputError{Step: "ols", Reason: "response has zero variance"}
	}

	// Design matrix columns: intercept followed by the predictors.
	dim := k + 1
	xtx := make([][]float64, dim)
	for a := range xtx {
		xtx[a] = make([]float64, dim)
	}
	xty := make([]float64, dim)

	colAt := func(a, i int) float64 {
		if a == 0 {
			return 1
		}
		return predictors[a-1][i]
	}
	for a := 0; a < dim; a++ {
		for b := a; b < dim; b++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += colAt(a, i) * colAt(b, i)
			}
			xtx[a][b] = sum
			xtx[b][a] = sum
		}
		var sum float64
		for i := 0; i < n; i++ {
			sum += colAt(a, i) * response[i]
		}
		xty[a] = sum
	}

	beta, err := solveCholesky(xtx, xty)
	if err != nil {
		return nil, &DegenerateInputError{Step: "ols", Reason: err.Error()}
	}

	// Residuals against the same sample the fit used: in-sample R2 and RMSE.
	meanY := 0.0
	for _, y := range response {
		meanY += y
	}
	meanY /= float64(n)

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		pred := beta[0]
		for j := 0; j < k; j++ {
			pred += beta[j+1] * predictors[j][i]
		}
		r := response[i] - pred
		ssRes += r * r
		d := response[i] - meanY
		ssTot += d * d
	}

	return &FitStats{
		Coefficients: beta[1:],
		RSquared:     1 - ssRes/ssTot,
		RMSE:         math.Sqrt(ssRes / float64(n)),
	}, nil
}

// solveCholesky solves the symmetric positive-definite system A*x = b.
// Returns an error when the decomposition hits a non-positive pivot, which
// for normal equations means collinear or constant predictors.
func solveCholesky(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 1e-12 {
					return nil, fmt.Errorf("normal-equations matrix is not positive definite at pivot %d", i)
				}
				l[i][j] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}

	// Forward substitution L*z = b, then back substitution L'*x = z.
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= l[i][j] * z[j]
		}
		z[i] = sum / l[i][i]
	}
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= l[j][i] * x[j]
		}
		x[i] = sum / l[i][i]
	}
	return x, nil
}

func hasVariance(col []float64) bool {
	if len(col) == 0 {
		return false
	}
	first := col[0]
	for _, v := range col[1:] {
		if v != first {
			return true
		}
	}
	return false
}

// PathEstimate is one estimated structural path. When the fit for this path
// was degenerate, Err carries the reason and the numeric fields are zero;
// the failure is local and does not block other paths.
type PathEstimate struct {
	Name        string  `json:"-"`
	Source      string  `json:"-"`
	Target      string  `json:"-"`
	Coefficient float64 `json:"coefficient"`
	RSquared    float64 `json:"r_squared"`
	RMSE        float64 `json:"rmse"`
	Err         string  `json:"error,omitempty"`
}

// CompleteModel is the joint regression of the final endogenous construct on
// all of its direct predecessors.
type CompleteModel struct {
	Target       string
	Predictors   []string
	Coefficients map[string]float64
	RSquared     float64
	RMSE         float64
	Err          string
}

// Effects is the path-tracing decomposition of the exogenous construct's
// influence on the final target: the direct path coefficient, the product
// of coefficients along the mediated route, and their sum. These are
// algebraic combinations of estimated paths, never independently fitted.
type Effects struct {
	Source   string
	Mediator string
	Target   string
	Direct   float64
	Indirect float64
	Total    float64
}

// StructuralResult bundles the per-path estimates, the complete model, and
// the derived effects for one estimation run.
type StructuralResult struct {
	Paths    map[string]*PathEstimate
	Complete *CompleteModel
	Effects  *Effects
}

// Estimator fits the structural model over composite scores.
type Estimator struct {
	model  ModelSpec
	fitter Fitter
}

// NewEstimator creates an Estimator. A nil fitter defaults to OLS.
func NewEstimator(model ModelSpec, fitter Fitter) *Estimator {
	if fitter == nil {
		fitter = OLSFitter{}
	}
	return &Estimator{model: model, fitter: fitter}
}

// Estimate fits every declared path as a single-predictor regression, the
// complete model as a joint regression on the final target's predecessors,
// and derives direct/indirect/total effects by path tracing. Degeneracy in
// one fit is recorded on that estimate and does not abort the others.
func (e *Estimator) Estimate(scores *ScoreTable) (*StructuralResult, error) {
	if scores.Rows() < 2 {
		return nil, &DegenerateInputError{Step: "structural",
			Reason: fmt.Sprintf("score table has %d rows, need at least 2", scores.Rows())}
	}

	res := &StructuralResult{Paths: make(map[string]*PathEstimate, len(e.model.Paths))}

	for _, p := range e.model.Paths {
		est := &PathEstimate{Name: p.Name, Source: p.Source, Target: p.Target}
		res.Paths[p.Name] = est

		x := scores.Column(p.Source)
		y := scores.Column(p.Target)
		if x == nil || y == nil {
			est.Err = fmt.Sprintf("missing composite column for path %s", p.Name)
			continue
		}
		stats, err := e.fitter.Fit([][]float64{x}, y)
		if err != nil {
			est.Err = err.Error()
			continue
		}
		est.Coefficient = stats.Coefficients[0]
		est.RSquared = stats.RSquared
		est.RMSE = stats.RMSE
	}

	res.Complete = e.estimateComplete(scores)
	res.Effects = e.deriveEffects(res)

	return res, nil
}

// estimateComplete fits the joint regression for the final target, when the
// topology declares one.
func (e *Estimator) estimateComplete(scores *ScoreTable) *CompleteModel {
	target := e.model.FinalTarget()
	if target == "" {
		return nil
	}
	predictors := e.model.PredictorsOf(target)

	cm := &CompleteModel{
		Target:       target,
		Predictors:   predictors,
		Coefficients: make(map[string]float64, len(predictors)),
	}

	cols := make([][]float64, 0, len(predictors))
	for _, p := range predictors {
		col := scores.Column(p)
		if col == nil {
			cm.Err = fmt.Sprintf("missing composite column for predictor %s", p)
			return cm
		}
		cols = append(cols, col)
	}
	y := scores.Column(target)
	if y == nil {
		cm.Err = fmt.Sprintf("missing composite column for target %s", target)
		return cm
	}

	stats, err := e.fitter.Fit(cols, y)
	if err != nil {
		cm.Err = err.Error()
		return cm
	}
	for i, p := range predictors {
		cm.Coefficients[p] = stats.Coefficients[i]
	}
	cm.RSquared = stats.RSquared
	cm.RMSE = stats.RMSE
	return cm
}

// deriveEffects finds the mediation triangle (source -> mediator -> target
// alongside a direct source -> target path) and applies standard SEM
// decomposition: indirect = a*b, total = direct + indirect.
func (e *Estimator) deriveEffects(res *StructuralResult) *Effects {
	for _, direct := range e.model.Paths {
		for _, first := range e.model.Paths {
			if first.Source != direct.Source || first.Target == direct.Target {
				continue
			}
			for _, second := range e.model.Paths {
				if second.Source != first.Target || second.Target != direct.Target {
					continue
				}
				d := res.Paths[direct.Name]
				a := res.Paths[first.Name]
				b := res.Paths[second.Name]
				if d.Err != "" || a.Err != "" || b.Err != "" {
					return nil
				}
				indirect := a.Coefficient * b.Coefficient
				return &Effects{
					Source:   direct.Source,
					Mediator: first.Target,
					Target:   direct.Target,
					Direct:   d.Coefficient,
					Indirect: indirect,
					Total:    d.Coefficient + indirect,
				}
			}
		}
	}
	return nil
}
