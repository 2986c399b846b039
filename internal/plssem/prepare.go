// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package plssem

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Block is one standardized indicator block: the columns of a single
// construct over the cleaned sample. Data is column-major (Data[j][i] is
// row i of indicator j) because every downstream consumer works per column.
// All blocks produced by one Prepare call share the same row order.
type Block struct {
	Construct string
	Columns   []string
	Data      [][]float64
}

// Rows returns the number of observations in the block.
func (b *Block) Rows() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Column returns the standardized values of the named indicator, or nil.
func (b *Block) Column(name string) []float64 {
	for j, col := range b.Columns {
		if col == name {
			return b.Data[j]
		}
	}
	return nil
}

// Prepared is the Preparer output: one standardized block per construct plus
// the data-quality warnings raised while cleaning.
type Prepared struct {
	Blocks   map[string]*Block
	RowCount int
	Warnings []Warning
}

// PreparerConfig controls row filtering.
type PreparerConfig struct {
	// MinSampleSize is the cleaned-row threshold below which an
	// insufficient-sample warning is raised. The run still proceeds on
	// whatever data remains. Default: 100.
	MinSampleSize int
}

// Preparer cleans raw observations and produces standardized per-construct
// indicator blocks. It holds no state between calls; standardization
// statistics are fit on the current sample only.
type Preparer struct {
	model ModelSpec
	cfg   PreparerConfig
}

// NewPreparer creates a Preparer for the given model.
func NewPreparer(model ModelSpec, cfg PreparerConfig) *Preparer {
	if cfg.MinSampleSize <= 0 {
		cfg.MinSampleSize = 100
	}
	return &Preparer{model: model, cfg: cfg}
}

// Prepare filters rows with any missing required indicator (listwise
// deletion), inverts rank-scaled indicators, and z-score standardizes each
// construct block column-wise.
//
// A required indicator absent from every row is a *MissingColumnError; zero
// rows after deletion is ErrNoUsableRows. A cleaned sample below the minimum
// size and a constant (zero-variance) column are warnings, not errors: the
// constant column is emitted as all zeros so that no NaN ever propagates
// into downstream fits.
func (p *Preparer) Prepare(ds *Dataset) (*Prepared, error) {
	required := p.model.RequiredIndicators()

	// Distinguish a wrong input schema from incomplete rows: a column that
	// never appears is a configuration error, not missing data.
	for _, col := range required {
		if !columnPresent(ds, col) {
			return nil, &MissingColumnError{Column: col}
		}
	}

	kept := make([]int, 0, ds.Len())
	for i := range ds.Rows {
		if rowComplete(&ds.Rows[i], required) {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoUsableRows
	}

	out := &Prepared{
		Blocks:   make(map[string]*Block, len(p.model.Constructs)),
		RowCount: len(kept),
	}
	if len(kept) < p.cfg.MinSampleSize {
		out.Warnings = append(out.Warnings, warningf(WarnInsufficientSample,
			"cleaned sample has %d rows, below the configured minimum of %d; results carry reduced confidence",
			len(kept), p.cfg.MinSampleSize))
	}

	// Rank inversion uses the maximum over the cleaned sample so that the
	// transform max - rank + 1 maps the best (lowest) rank to the top value.
	inverted := p.invertedMaxima(ds, kept)

	for ci := range p.model.Constructs {
		c := &p.model.Constructs[ci]
		block := &Block{
			Construct: c.Name,
			Columns:   append([]string(nil), c.Indicators...),
			Data:      make([][]float64, len(c.Indicators)),
		}
		for j, ind := range c.Indicators {
			col := make([]float64, len(kept))
			for i, rowIdx := range kept {
				v, _ := ds.Rows[rowIdx].Value(ind)
				if c.IsInverted(ind) {
					v = inverted[ind] - v + 1
				}
				col[i] = v
			}
			std, ok := standardize(col)
			if !ok {
				out.Warnings = append(out.Warnings, warningf(WarnZeroVariance,
					"indicator %q of construct %q is constant across the cleaned sample; standardized column set to zeros",
					ind, c.Name))
			}
			block.Data[j] = std
		}
		out.Blocks[c.Name] = block
	}

	return out, nil
}

// invertedMaxima returns, for every inverted indicator in the model, its
// maximum over the kept rows.
func (p *Preparer) invertedMaxima(ds *Dataset, kept []int) map[string]float64 {
	maxima := make(map[string]float64)
	for _, c := range p.model.Constructs {
		for _, ind := range c.Inverted {
			max := math.Inf(-1)
			for _, rowIdx := range kept {
				if v, ok := ds.Rows[rowIdx].Value(ind); ok && v > max {
					max = v
				}
			}
			maxima[ind] = max
		}
	}
	return maxima
}

// standardize z-scores a column in place of a copy using the mean and
// population standard deviation of the current sample. A zero-variance
// column yields all zeros and ok=false.
func standardize(col []float64) ([]float64, bool) {
	mean := stat.Mean(col, nil)
	sd := popStdDev(col, mean)

	out := make([]float64, len(col))
	if sd == 0 {
		return out, false
	}
	for i, v := range col {
		out[i] = (v - mean) / sd
	}
	return out, true
}

// popStdDev is the population (divide-by-n) standard deviation, matching the
// convention of the scaler the indicator pipeline was calibrated against.
func popStdDev(col []float64, mean float64) float64 {
	if len(col) == 0 {
		return 0
	}
	var ss float64
	for _, v := range col {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(col)))
}

func columnPresent(ds *Dataset, col string) bool {
	for i := range ds.Rows {
		if _, ok := ds.Rows[i].Value(col); ok {
			return true
		}
	}
	return false
}

func rowComplete(o *Observation, required []string) bool {
	for _, col := range required {
		if _, ok := o.Value(col); !ok {
			return false
		}
	}
	return true
}
