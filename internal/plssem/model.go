// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"math"
	"time"
)

// Indicator column names shared between the collectors, the database schema
// and the estimation engine.
const (
	IndOccupancyRate         = "room_occupancy_rate"
	IndTourismEmployment     = "tourism_employment"
	IndCompetitivenessIndex  = "tourism_competitiveness_index"
	IndCurrentRank           = "current_rank"
	IndTotalReviews          = "total_reviews"
	IndTotalFacilities       = "total_facilities"
	IndEconomicSocialBenefit = "performance_economic_social_benefit"
)

// Construct names of the default structural model.
const (
	ConstructCompetitiveness = "Tourism_Competitiveness"
	ConstructSatisfaction    = "Satisfaction"
	ConstructEmployment      = "Tourism_Employment"
)

// Path names of the default structural model. These double as the keys of
// the serialized pls_results block, so they are part of the output contract.
const (
	PathTCToSatisfaction        = "TC_to_Satisfaction"
	PathTCToEmployment          = "TC_to_Employment"
	PathSatisfactionToEmployment = "Satisfaction_to_Employment"
)

// Observation is one row of the integrated indicator panel: a region, a
// month, and the named numeric indicators collected for it. A missing
// indicator is represented by an absent key (NaN values are treated the same
// way). Duplicate (region, date) rows are legal and treated as independent
// samples, never merged.
type Observation struct {
	Region string
	Date   time.Time
	Values map[string]float64
}

// Value returns the named indicator and whether it is present and finite.
func (o *Observation) Value(name string) (float64, bool) {
	v, ok := o.Values[name]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Dataset is an in-memory observation table. How the rows were produced
// (collectors, database, fixtures) is not the engine's concern.
type Dataset struct {
	Rows []Observation
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ConstructSpec describes one latent variable: its name, a short label used
// in derived output keys (e.g. "TC_coefficient"), the observed indicators
// assigned to it, and which of those indicators are rank-like (lower raw
// value means better standing) and must be inverted before standardization.
type ConstructSpec struct {
	Name       string
	Label      string
	Indicators []string
	Inverted   []string
}

// IsInverted reports whether the named indicator is on an inverted scale.
func (c *ConstructSpec) IsInverted(indicator string) bool {
	for _, inv := range c.Inverted {
		if inv == indicator {
			return true
		}
	}
	return false
}

// PathSpec is one directed edge of the structural model.
type PathSpec struct {
	Name   string
	Source string
	Target string
}

// ModelSpec is the declarative structural-model descriptor the estimator
// interprets: the constructs with their indicator blocks, the directed paths,
// and the reference coefficients reported alongside results for comparison
// with the published model.
type ModelSpec struct {
	Constructs []ConstructSpec
	Paths      []PathSpec

	// ReferenceCoefficients are the published estimates the running model is
	// compared against, keyed by "Source -> Target".
	ReferenceCoefficients map[string]float64
}

// Construct returns the named construct spec, or nil.
func (m *ModelSpec) Construct(name string) *ConstructSpec {
	for i := range m.Constructs {
		if m.Constructs[i].Name == name {
			return &m.Constructs[i]
		}
	}
	return nil
}

// RequiredIndicators returns the union of all indicators used by any
// construct, preserving first-seen order.
func (m *ModelSpec) RequiredIndicators() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range m.Constructs {
		for _, ind := range c.Indicators {
			if !seen[ind] {
				seen[ind] = true
				out = append(out, ind)
			}
		}
	}
	return out
}

// PredictorsOf returns the source constructs of every path pointing at the
// named target, in declaration order.
func (m *ModelSpec) PredictorsOf(target string) []string {
	var out []string
	for _, p := range m.Paths {
		if p.Target == target {
			out = append(out, p.Source)
		}
	}
	return out
}

// FinalTarget returns the construct that is a target of more than one path
// and a source of none, i.e. the endogenous variable of the complete model.
// Returns "" if the topology has no such construct.
func (m *ModelSpec) FinalTarget() string {
	sources := make(map[string]bool)
	targets := make(map[string]int)
	for _, p := range m.Paths {
		sources[p.Source] = true
		targets[p.Target]++
	}
	for name, n := range targets {
		if n > 1 && !sources[name] {
			return name
		}
	}
	return ""
}

// DefaultModel returns the fixed three-construct tourism model:
//
//	Tourism_Competitiveness -> Satisfaction
//	Tourism_Competitiveness -> Tourism_Employment
//	Satisfaction            -> Tourism_Employment
//
// Satisfaction uses the TripAdvisor rank, which is inverted so that larger
// transformed values mean better standing, consistent with every other
// indicator. Tourism_Employment is a single-indicator construct.
func DefaultModel() ModelSpec {
	return ModelSpec{
		Constructs: []ConstructSpec{
			{
				Name:  ConstructCompetitiveness,
				Label: "TC",
				Indicators: []string{
					IndEconomicSocialBenefit,
					IndOccupancyRate,
					IndCompetitivenessIndex,
				},
			},
			{
				Name:  ConstructSatisfaction,
				Label: "Satisfaction",
				Indicators: []string{
					IndCurrentRank,
					IndTotalReviews,
					IndTotalFacilities,
				},
				Inverted: []string{IndCurrentRank},
			},
			{
				Name:       ConstructEmployment,
				Label:      "Employment",
				Indicators: []string{IndTourismEmployment},
			},
		},
		Paths: []PathSpec{
			{Name: PathTCToSatisfaction, Source: ConstructCompetitiveness, Target: ConstructSatisfaction},
			{Name: PathTCToEmployment, Source: ConstructCompetitiveness, Target: ConstructEmployment},
			{Name: PathSatisfactionToEmployment, Source: ConstructSatisfaction, Target: ConstructEmployment},
		},
		ReferenceCoefficients: map[string]float64{
			"Tourism_Competitiveness -> Satisfaction":      0.884,
			"Tourism_Competitiveness -> Tourism_Employment": 0.319,
			"Satisfaction -> Tourism_Employment":            0.580,
		},
	}
}
