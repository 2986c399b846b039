// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the middleware knobs.
type RouterConfig struct {
	CORSOrigins     []string
	RateLimitReqs   int
	RateLimitWindow time.Duration
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestIDWithLogging())
	r.Use(CORS(cfg.CORSOrigins))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
		r.Get("/", h.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(PrometheusMetrics)
		r.Use(RateLimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))

		r.Get("/observations", h.Observations)
		r.Route("/analysis", func(r chi.Router) {
			r.Get("/latest", h.AnalysisLatest)
			r.Get("/history", h.AnalysisHistory)
			r.Get("/bootstrap", h.AnalysisBootstrap)
			r.Post("/run", h.AnalysisRun)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
