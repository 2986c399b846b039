// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/mredondo/touriscope/internal/metrics"
	"github.com/mredondo/touriscope/internal/plssem"
)

// ErrNoResults is returned when no analysis result has been stored yet.
var ErrNoResults = errors.New("no analysis results stored")

// StoredResult is one persisted analysis run.
type StoredResult struct {
	AnalysisID string          `json:"analysis_id"`
	CreatedAt  time.Time       `json:"created_at"`
	SampleSize int             `json:"sample_size"`
	Result     json.RawMessage `json:"result"`
}

// SaveResult persists one analysis result as JSON.
func (db *DB) SaveResult(ctx context.Context, res *plssem.Result) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "analysis_results", time.Since(start), err) }()

	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO analysis_results (analysis_id, created_at, sample_size, result) VALUES (?, ?, ?, ?)`,
		res.AnalysisID, time.Now().UTC(), res.SampleSize, string(raw))
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// LatestResult returns the most recent stored analysis, or ErrNoResults.
func (db *DB) LatestResult(ctx context.Context) (sr *StoredResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "analysis_results", time.Since(start), err) }()

	sr = &StoredResult{}
	var raw string
	err = db.conn.QueryRowContext(ctx,
		`SELECT analysis_id, created_at, sample_size, result
		 FROM analysis_results ORDER BY created_at DESC LIMIT 1`).
		Scan(&sr.AnalysisID, &sr.CreatedAt, &sr.SampleSize, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, fmt.Errorf("query latest result: %w", err)
	}
	sr.Result = json.RawMessage(raw)
	return sr, nil
}

// ListResults returns up to limit stored analyses, newest first, without the
// result payloads.
func (db *DB) ListResults(ctx context.Context, limit int) (list []StoredResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("select", "analysis_results", time.Since(start), err) }()

	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT analysis_id, created_at, sample_size
		 FROM analysis_results ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sr StoredResult
		if err = rows.Scan(&sr.AnalysisID, &sr.CreatedAt, &sr.SampleSize); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		list = append(list, sr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return list, nil
}
