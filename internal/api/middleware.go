// Touriscope - Smart Tourism Analytics and PLS-SEM Modeling
// Copyright 2026 M. Redondo (mredondo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mredondo/touriscope

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/mredondo/touriscope/internal/logging"
	"github.com/mredondo/touriscope/internal/metrics"
)

// RequestIDWithLogging generates correlation and request IDs, stores them in
// the request context, and logs each request on completion.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logging.ContextWithCorrelationID(r.Context(), logging.GenerateCorrelationID())
			ctx = logging.ContextWithRequestID(ctx, logging.GenerateRequestID())
			r = r.WithContext(ctx)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logging.Ctx(ctx).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}

// PrometheusMetrics records request counts, latencies, and the in-flight
// gauge. The route pattern, not the raw path, labels the metrics so
// cardinality stays bounded.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(rec.status), time.Since(start))
	})
}

// CORS builds the CORS middleware for the configured origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RateLimitByIP limits each client IP to reqs requests per window. A zero
// reqs disables limiting.
func RateLimitByIP(reqs int, window time.Duration) func(http.Handler) http.Handler {
	if reqs <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(reqs, window)
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
