// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

// Package plssem implements the PLS-SEM (Partial Least Squares Structural
// Equation Modeling) estimation engine for tourism indicator panels.
//
// The engine turns a table of observed monthly indicators into latent
// construct scores, estimates the path coefficients of the structural model,
// computes reliability and validity diagnostics, and derives bootstrap
// confidence intervals for each path.
//
// The pipeline is a sequence of pure transforms:
//
//	Dataset -> Preparer -> Prepared (standardized indicator blocks)
//	        -> CompositeScorer -> ScoreTable (one column per construct)
//	        -> Estimator -> StructuralResult (paths, complete model, effects)
//	        -> Bootstrap -> per-path coefficient distributions
//
// ReliabilityValidator operates on the Preparer output (pre-composite) and is
// independent of the score table. No component retains state across runs;
// every analysis starts fresh from the current observation set.
//
// The structural topology is declarative (ModelSpec) but the default model is
// fixed: Tourism_Competitiveness -> Satisfaction, Tourism_Competitiveness ->
// Tourism_Employment, and Satisfaction -> Tourism_Employment, with total
// effects decomposed by standard path-tracing algebra.
package plssem
