// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package collector

import (
	"context"
	"time"

	"github.com/mredondo/touriscope/internal/plssem"
)

// TripAdvisorSource synthesizes destination rankings, review volume, and
// facility counts in the shape of the TripAdvisor content API.
type TripAdvisorSource struct{}

func (TripAdvisorSource) Name() string { return "tripadvisor" }

func (TripAdvisorSource) Collect(ctx context.Context, region string, months []time.Time) ([]Record, error) {
	records := make([]Record, 0, len(months))
	for _, m := range months {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h := regionHash(region, m)
		years := float64(m.Year() - 2020)
		records = append(records, Record{
			Region: region,
			Date:   m,
			Values: map[string]float64{
				// Rank runs 1 (best) to 100; the analysis inverts it.
				plssem.IndCurrentRank:     float64(h%100 + 1),
				plssem.IndTotalReviews:    5000 + years*500 + float64(h%1000),
				plssem.IndTotalFacilities: 850 + years*25,
			},
		})
	}
	return records, nil
}
