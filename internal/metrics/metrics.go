// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

// Package metrics exposes Prometheus instrumentation for the Touriscope
// server: data collection, PLS-SEM analysis runs, DuckDB queries, and the
// HTTP API. All collectors are registered on the default registry via
// promauto and served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Collection metrics.

	CollectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "touriscope_collection_duration_seconds",
			Help:    "Duration of data collection runs per source",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"source"},
	)

	CollectionObservations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touriscope_collection_observations_total",
			Help: "Total observations gathered per source",
		},
		[]string{"source"},
	)

	CollectionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touriscope_collection_errors_total",
			Help: "Total collection failures per source",
		},
		[]string{"source"},
	)

	CollectionLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "touriscope_collection_last_success_timestamp",
			Help: "Unix timestamp of the last fully successful collection cycle",
		},
	)

	// Analysis metrics.

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "touriscope_analysis_duration_seconds",
			Help:    "Duration of full PLS-SEM analysis runs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	AnalysisRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touriscope_analysis_runs_total",
			Help: "Total analysis runs by outcome",
		},
		[]string{"outcome"}, // "success", "error"
	)

	AnalysisSampleSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "touriscope_analysis_sample_size",
			Help: "Usable observation count of the most recent analysis",
		},
	)

	AnalysisWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touriscope_analysis_warnings_total",
			Help: "Total analysis warnings by code",
		},
		[]string{"code"},
	)

	BootstrapFailedIterations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "touriscope_bootstrap_failed_iterations_total",
			Help: "Total bootstrap resamples dropped as degenerate",
		},
	)

	// Database metrics.

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "touriscope_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touriscope_duckdb_query_errors_total",
			Help: "Total DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API metrics.

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "touriscope_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "touriscope_api_request_duration_seconds",
			Help:    "API request duration",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "touriscope_api_active_requests",
			Help: "Currently in-flight API requests",
		},
	)
)

// RecordCollection records one source's collection outcome.
func RecordCollection(source string, observations int, duration time.Duration, err error) {
	CollectionDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		CollectionErrors.WithLabelValues(source).Inc()
		return
	}
	CollectionObservations.WithLabelValues(source).Add(float64(observations))
}

// RecordAnalysis records one analysis run.
func RecordAnalysis(duration time.Duration, sampleSize int, err error) {
	AnalysisDuration.Observe(duration.Seconds())
	if err != nil {
		AnalysisRuns.WithLabelValues("error").Inc()
		return
	}
	AnalysisRuns.WithLabelValues("success").Inc()
	AnalysisSampleSize.Set(float64(sampleSize))
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
