// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"reelquest/internal/logging"
	"reelquest/internal/metrics"
)

// TraceIDMiddleware assigns every request a trace id, exposed in the
// X-Trace-ID response header and threaded through the logging context so
// pipeline logs correlate with the response the client saw.
func TraceIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = logging.GenerateTraceID()
			}

			ctx := logging.ContextWithTraceID(r.Context(), traceID)
			w.Header().Set("X-Trace-ID", traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MetricsMiddleware records request duration and status per route pattern.
// The chi route pattern is used instead of the raw path to keep label
// cardinality bounded.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			metrics.ObserveHTTPRequest(r.Method, pattern, ww.Status(), time.Since(start))
		})
	}
}
