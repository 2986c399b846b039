// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package collector

import (
	"context"
	"hash/fnv"
	"time"
)

// Record is one source's partial reading for a region and month. Sources
// contribute only the indicators they know; the orchestrator merges records
// from all sources into full observation rows.
type Record struct {
	Region string
	Date   time.Time
	Values map[string]float64
}

// Source produces monthly records for one region. Implementations must be
// safe for concurrent use across regions.
type Source interface {
	Name() string
	Collect(ctx context.Context, region string, months []time.Time) ([]Record, error)
}

// regionHash folds region and month into a stable uint64. The synthetic
// sources derive their pseudo-random factors from it, so repeated
// collections of the same window produce identical values.
func regionHash(region string, date time.Time) uint64 {
	h := fnv.New64a()
	h.Write([]byte(region))
	h.Write([]byte(date.Format("2006-01")))
	return h.Sum64()
}

// monthsWindow returns the first-of-month UTC timestamps for the trailing
// monthsBack months ending with now's month, oldest first.
func monthsWindow(now time.Time, monthsBack int) []time.Time {
	months := make([]time.Time, 0, monthsBack)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := monthsBack - 1; i >= 0; i-- {
		months = append(months, first.AddDate(0, -i, 0))
	}
	return months
}

// summer reports the high-season months used by the occupancy and
// employment seasonality factors.
func summer(m time.Month) bool {
	return m == time.June || m == time.July || m == time.August
}
