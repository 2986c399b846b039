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

// ExcelturSource synthesizes the MoniTUR competitiveness index and the
// economic and social benefit score published by Exceltur.
type ExcelturSource struct{}

func (ExcelturSource) Name() string { return "exceltur" }

func (ExcelturSource) Collect(ctx context.Context, region string, months []time.Time) ([]Record, error) {
	records := make([]Record, 0, len(months))
	for _, m := range months {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, Record{
			Region: region,
			Date:   m,
			Values: map[string]float64{
				plssem.IndCompetitivenessIndex:  competitivenessIndex(region, m),
				plssem.IndEconomicSocialBenefit: economicSocialBenefit(m),
			},
		})
	}
	return records, nil
}

// competitivenessIndex models a 72.5 base improving half a point per year,
// lifted in the May through September season, clamped to [0, 100].
func competitivenessIndex(region string, m time.Time) float64 {
	base := 72.5
	improvement := 0.5 * float64(m.Year()-2020)
	seasonal := -1.0
	if m.Month() >= time.May && m.Month() <= time.September {
		seasonal = 2.0
	}
	random := (float64(regionHash(region, m)%10) - 5) / 2

	idx := base + improvement + seasonal + random
	if idx < 0 {
		idx = 0
	}
	if idx > 100 {
		idx = 100
	}
	return round2(idx)
}

// economicSocialBenefit models a slowly rising benefit score off a 75 base.
func economicSocialBenefit(m time.Time) float64 {
	growth := 0.2 * float64(m.Year()-2020)
	return round2(75 + growth*2)
}
