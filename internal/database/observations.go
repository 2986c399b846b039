// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mredondo/touriscope/internal/database/query"
	"github.com/mredondo/touriscope/internal/metrics"
	"github.com/mredondo/touriscope/internal/plssem"
)

// indicatorColumns maps observation columns in declaration order. Indicator
// names double as column names, so the analysis model and the schema cannot
// drift apart silently.
var indicatorColumns = []string{
	plssem.IndOccupancyRate,
	plssem.IndTourismEmployment,
	plssem.IndCompetitivenessIndex,
	plssem.IndCurrentRank,
	plssem.IndTotalReviews,
	plssem.IndTotalFacilities,
	plssem.IndEconomicSocialBenefit,
}

// UpsertObservations writes observations in one transaction, replacing rows
// that share (region, date). Re-collecting a window is therefore idempotent.
func (db *DB) UpsertObservations(ctx context.Context, observations []plssem.Observation) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "observations", time.Since(start), err) }()

	if len(observations) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	insert := `INSERT OR REPLACE INTO observations (
		region, date,
		room_occupancy_rate, tourism_employment, tourism_competitiveness_index,
		current_rank, total_reviews, total_facilities,
		performance_economic_social_benefit, collected_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, obs := range observations {
		args := make([]any, 0, len(indicatorColumns)+3)
		args = append(args, obs.Region, obs.Date.UTC())
		for _, col := range indicatorColumns {
			if v, ok := obs.Value(col); ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		args = append(args, now)
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("upsert observation %s/%s: %w", obs.Region, obs.Date.Format("2006-01"), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit observations: %w", err)
	}
	return nil
}

// ObservationFilter narrows observation reads. Zero-value fields are
// skipped.
type ObservationFilter struct {
	Since   *time.Time
	Until   *time.Time
	Regions []string
}

// LoadWindow reads all observations dated at or after since, ordered by
// region then date, as a dataset ready for analysis.
func (db *DB) LoadWindow(ctx context.Context, since time.Time) (*plssem.Dataset, error) {
	return db.LoadObservations(ctx, ObservationFilter{Since: &since})
}

// LoadObservations reads observations matching the filter, ordered by
// region then date.
func (db *DB) LoadObservations(ctx context.Context, f ObservationFilter) (ds *plssem.Dataset, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "observations", time.Since(start), err) }()

	where, args := query.NewWhereBuilder().
		AddDateRange(f.Since, f.Until).
		AddRegions(f.Regions).
		Build()

	stmt := fmt.Sprintf(`SELECT region, date,
		room_occupancy_rate, tourism_employment, tourism_competitiveness_index,
		current_rank, total_reviews, total_facilities,
		performance_economic_social_benefit
	FROM observations
	WHERE %s
	ORDER BY region, date`, where)

	rows, err := db.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	ds = &plssem.Dataset{}
	for rows.Next() {
		var (
			region string
			date   time.Time
			vals   [7]sql.NullFloat64
		)
		if err = rows.Scan(&region, &date,
			&vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5], &vals[6]); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}

		values := make(map[string]float64, len(indicatorColumns))
		for i, col := range indicatorColumns {
			if vals[i].Valid {
				values[col] = vals[i].Float64
			}
		}
		ds.Rows = append(ds.Rows, plssem.Observation{Region: region, Date: date, Values: values})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	return ds, nil
}

// CountObservations returns the total number of stored observation rows.
func (db *DB) CountObservations(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("count", "observations", time.Since(start), err) }()

	err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return n, nil
}
