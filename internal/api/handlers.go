// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/mredondo/touriscope/internal/database"
	"github.com/mredondo/touriscope/internal/logging"
	"github.com/mredondo/touriscope/internal/plssem"
)

// Store is the storage surface the handlers need.
type Store interface {
	Ping(ctx context.Context) error
	LoadObservations(ctx context.Context, f database.ObservationFilter) (*plssem.Dataset, error)
	CountObservations(ctx context.Context) (int, error)
	LatestResult(ctx context.Context) (*database.StoredResult, error)
	ListResults(ctx context.Context, limit int) ([]database.StoredResult, error)
}

// AnalysisRunner triggers a full collection-and-analysis cycle on demand.
type AnalysisRunner interface {
	RunAnalysis(ctx context.Context) (*plssem.Result, error)
}

// Handler holds the endpoint implementations.
type Handler struct {
	store   Store
	runner  AnalysisRunner
	started time.Time
	version string
}

// NewHandler creates the API handler. runner may be nil, in which case
// on-demand analysis returns 503.
func NewHandler(store Store, runner AnalysisRunner, version string) *Handler {
	return &Handler{
		store:   store,
		runner:  runner,
		started: time.Now(),
		version: version,
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady reports readiness: the database must answer a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		rw.Unavailable("database not reachable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}

// Health reports overall status with store counts and uptime.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	count, err := h.store.CountObservations(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("health count failed")
		rw.Unavailable("database not reachable")
		return
	}

	status := map[string]any{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"observations":   count,
	}
	if latest, err := h.store.LatestResult(r.Context()); err == nil {
		status["latest_analysis_id"] = latest.AnalysisID
		status["latest_analysis_at"] = latest.CreatedAt
	}
	rw.Success(status)
}

// observationDTO is the wire shape of one observation row.
type observationDTO struct {
	Region string             `json:"region"`
	Date   string             `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Observations lists stored observations for a trailing window.
// Query params: months (default 12, max 120), region (optional filter).
func (h *Handler) Observations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	months := 12
	if s := r.URL.Query().Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 120 {
			rw.BadRequest("months must be an integer in [1, 120]")
			return
		}
		months = n
	}
	filter := database.ObservationFilter{}
	since := time.Now().UTC().AddDate(0, -months, 0)
	filter.Since = &since
	if region := r.URL.Query().Get("region"); region != "" {
		filter.Regions = []string{region}
	}

	ds, err := h.store.LoadObservations(r.Context(), filter)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("observation query failed")
		rw.InternalError("failed to load observations")
		return
	}

	out := make([]observationDTO, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		out = append(out, observationDTO{
			Region: row.Region,
			Date:   row.Date.Format("2006-01-02"),
			Values: row.Values,
		})
	}
	rw.SuccessWithCount(out, len(out))
}

// AnalysisLatest returns the most recent stored analysis result.
func (h *Handler) AnalysisLatest(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	latest, err := h.store.LatestResult(r.Context())
	if errors.Is(err, database.ErrNoResults) {
		rw.NotFound("no analysis has been run yet")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("latest result query failed")
		rw.InternalError("failed to load analysis result")
		return
	}
	rw.Success(latest)
}

// AnalysisHistory lists stored analyses, newest first, without payloads.
// Query param: limit (default 20, max 100).
func (h *Handler) AnalysisHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 100 {
			rw.BadRequest("limit must be an integer in [1, 100]")
			return
		}
		limit = n
	}

	list, err := h.store.ListResults(r.Context(), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("result history query failed")
		rw.InternalError("failed to list analyses")
		return
	}
	rw.SuccessWithCount(list, len(list))
}

// AnalysisBootstrap returns the bootstrap section of the latest analysis.
func (h *Handler) AnalysisBootstrap(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	latest, err := h.store.LatestResult(r.Context())
	if errors.Is(err, database.ErrNoResults) {
		rw.NotFound("no analysis has been run yet")
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("latest result query failed")
		rw.InternalError("failed to load analysis result")
		return
	}

	var payload struct {
		Bootstrap json.RawMessage `json:"bootstrap"`
	}
	if err := json.Unmarshal(latest.Result, &payload); err != nil || len(payload.Bootstrap) == 0 {
		rw.NotFound("latest analysis has no bootstrap section")
		return
	}
	rw.Success(payload.Bootstrap)
}

// AnalysisRun triggers a collection-and-analysis cycle and returns the
// fresh result.
func (h *Handler) AnalysisRun(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.runner == nil {
		rw.Unavailable("on-demand analysis is not enabled")
		return
	}

	res, err := h.runner.RunAnalysis(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("on-demand analysis failed")
		rw.InternalError("analysis failed: " + err.Error())
		return
	}
	rw.Success(res)
}
