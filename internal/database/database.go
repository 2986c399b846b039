// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

// Package database stores Touriscope's observations and analysis results in
// an embedded DuckDB file. DuckDB's columnar engine keeps the trailing-window
// loads that feed the PLS-SEM pipeline fast without an external server.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/mredondo/touriscope/internal/logging"
)

// Config holds connection settings.
type Config struct {
	// Path to the database file. ":memory:" for ephemeral storage.
	Path string

	// MaxMemory caps DuckDB's memory use, e.g. "1GB".
	MaxMemory string

	// Threads for DuckDB's internal pool. 0 means NumCPU.
	Threads int
}

// DB wraps the DuckDB connection.
type DB struct {
	conn *sql.DB
}

// Open connects to DuckDB, configures the pool, and creates the schema.
func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path must not be empty")
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, threads, maxMemory)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	db := &DB{conn: conn}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("database opened")
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// createTables creates the schema if it does not exist. All columns are
// declared up front; DuckDB handles sparse NULLs cheaply in its columnar
// layout, so absent indicators cost nothing.
func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS observations (
			region VARCHAR NOT NULL,
			date TIMESTAMP NOT NULL,
			room_occupancy_rate DOUBLE,
			tourism_employment DOUBLE,
			tourism_competitiveness_index DOUBLE,
			current_rank DOUBLE,
			total_reviews DOUBLE,
			total_facilities DOUBLE,
			performance_economic_social_benefit DOUBLE,
			collected_at TIMESTAMP NOT NULL,
			PRIMARY KEY (region, date)
		)`,
		`CREATE TABLE IF NOT EXISTS analysis_results (
			analysis_id VARCHAR PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			sample_size INTEGER NOT NULL,
			result VARCHAR NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_observations_date ON observations(date)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_created ON analysis_results(created_at)`,
	}
	for _, q := range queries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
