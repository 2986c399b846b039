// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"errors"
	"fmt"
)

// ErrNoUsableRows is returned when listwise deletion leaves zero rows. The
// input table is fundamentally unusable and the analysis cannot proceed.
var ErrNoUsableRows = errors.New("plssem: no usable rows after listwise deletion")

// MissingColumnError is returned when a required indicator column is absent
// from every row of the input. This is a configuration problem (wrong schema
// feeding the engine), not a data-quality problem.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("plssem: required indicator %q is missing from the input table", e.Column)
}

// DegenerateInputError is returned when a fit is mathematically undefined:
// fewer rows than the fit needs, or a predictor or response with zero
// variance. It aborts the affected estimation step rather than letting
// fabricated coefficients through; other paths keep running.
type DegenerateInputError struct {
	Step   string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("plssem: degenerate input in %s: %s", e.Step, e.Reason)
}

// Warning codes carried in analysis output. Warnings are data, not errors:
// the run completes, but consumers should treat confidence as reduced.
const (
	WarnInsufficientSample = "insufficient_sample"
	WarnZeroVariance       = "zero_variance"
	WarnBootstrapFailures  = "bootstrap_failures"
	WarnPathFailed         = "path_failed"
)

// Warning is a non-fatal data-quality condition detected during a run.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func warningf(code, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}
