// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

// Package config loads Touriscope configuration with layered precedence:
// built-in defaults, then an optional YAML file, then TOURISCOPE_* environment
// variables. Loading is backed by koanf v2.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Touriscope server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Collector CollectorConfig `koanf:"collector"`
	Analysis  AnalysisConfig  `koanf:"analysis"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"` // read/write timeout

	// RateLimitReqs requests per RateLimitWindow per client IP. Zero disables.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path to the DuckDB file. ":memory:" keeps everything in process.
	Path string `koanf:"path"`

	MaxMemory string `koanf:"max_memory"`

	// Threads for DuckDB's pool. 0 lets DuckDB pick.
	Threads int `koanf:"threads"`
}

// CollectorConfig holds data collection settings.
type CollectorConfig struct {
	// Regions to collect observations for. Defaults to the Spanish
	// autonomous communities plus Ceuta and Melilla.
	Regions []string `koanf:"regions"`

	// MonthsBack is how many trailing months each collection covers.
	MonthsBack int `koanf:"months_back"`

	Timeout time.Duration `koanf:"timeout"` // per-source collection budget
}

// AnalysisConfig holds PLS-SEM estimation settings.
type AnalysisConfig struct {
	MinSampleSize      int     `koanf:"min_sample_size"`
	BootstrapResamples int     `koanf:"bootstrap_resamples"`
	BootstrapWorkers   int     `koanf:"bootstrap_workers"` // 0 = NumCPU
	SignificanceLevel  float64 `koanf:"significance_level"`

	// Seed fixes the bootstrap RNG for reproducible runs.
	Seed int64 `koanf:"seed"`
}

// SchedulerConfig holds background job cadence.
type SchedulerConfig struct {
	Enabled            bool          `koanf:"enabled"`
	CollectionInterval time.Duration `koanf:"collection_interval"`
	AnalysisInterval   time.Duration `koanf:"analysis_interval"`

	// RunOnStartup triggers one collection+analysis cycle immediately
	// instead of waiting for the first tick.
	RunOnStartup bool `koanf:"run_on_startup"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SpanishRegions is the default study scope: the 17 autonomous communities
// plus Ceuta and Melilla.
var SpanishRegions = []string{
	"Andalucía", "Cataluña", "Madrid", "Valencia", "Canarias",
	"Baleares", "Galicia", "Castilla y León", "País Vasco",
	"Castilla-La Mancha", "Murcia", "Aragón", "Extremadura",
	"Asturias", "Navarra", "Cantabria", "La Rioja", "Ceuta", "Melilla",
}

// defaultConfig returns the built-in defaults. These are applied first, then
// overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8050,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Path:      "/data/touriscope.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Collector: CollectorConfig{
			Regions:    SpanishRegions,
			MonthsBack: 12,
			Timeout:    2 * time.Minute,
		},
		Analysis: AnalysisConfig{
			MinSampleSize:      100,
			BootstrapResamples: 5000,
			BootstrapWorkers:   0,
			SignificanceLevel:  0.05,
		},
		Scheduler: SchedulerConfig{
			Enabled:            true,
			CollectionInterval: time.Hour,
			AnalysisInterval:   2 * time.Hour,
			RunOnStartup:       true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for values that would break startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if len(c.Collector.Regions) == 0 {
		return fmt.Errorf("collector.regions must name at least one region")
	}
	if c.Collector.MonthsBack < 1 {
		return fmt.Errorf("collector.months_back must be >= 1, got %d", c.Collector.MonthsBack)
	}
	if c.Analysis.MinSampleSize < 1 {
		return fmt.Errorf("analysis.min_sample_size must be >= 1, got %d", c.Analysis.MinSampleSize)
	}
	if c.Analysis.BootstrapResamples < 1 {
		return fmt.Errorf("analysis.bootstrap_resamples must be >= 1, got %d", c.Analysis.BootstrapResamples)
	}
	if c.Analysis.SignificanceLevel <= 0 || c.Analysis.SignificanceLevel >= 1 {
		return fmt.Errorf("analysis.significance_level must be in (0, 1), got %g", c.Analysis.SignificanceLevel)
	}
	if c.Scheduler.Enabled {
		if c.Scheduler.CollectionInterval <= 0 {
			return fmt.Errorf("scheduler.collection_interval must be positive, got %s", c.Scheduler.CollectionInterval)
		}
		if c.Scheduler.AnalysisInterval <= 0 {
			return fmt.Errorf("scheduler.analysis_interval must be positive, got %s", c.Scheduler.AnalysisInterval)
		}
	}
	return nil
}
