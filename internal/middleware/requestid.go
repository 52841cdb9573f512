// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package middleware provides HTTP middleware for request tracing and
// Prometheus instrumentation.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dferraz/fiscalis/internal/logging"
)

// RequestID generates a unique ID for each request and adds it to both the
// response header and the request context. Upstream-provided X-Request-ID
// headers are preserved.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
