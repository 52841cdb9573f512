// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package api provides the HTTP surface over the IBAMA collections:
// routing, request parsing, and standardized response handling.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/dferraz/fiscalis/internal/logging"
)

// APIResponse is the standardized response wrapper for all endpoints.
type APIResponse struct {
	// Success indicates whether the request was successful
	Success bool `json:"success"`

	// Data contains the response payload (null on error)
	Data interface{} `json:"data,omitempty"`

	// Error contains error details (null on success)
	Error *APIError `json:"error,omitempty"`

	// Meta contains optional metadata about the response
	Meta *APIMeta `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains additional error details (optional)
	Details interface{} `json:"details,omitempty"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta contains optional response metadata.
type APIMeta struct {
	// RequestID is the unique request identifier for tracing
	RequestID string `json:"request_id,omitempty"`

	// Timestamp is when the response was generated
	Timestamp time.Time `json:"timestamp"`

	// Duration is the request processing time in milliseconds
	DurationMs int64 `json:"duration_ms,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
)

// ResponseWriter provides methods for writing standardized API responses.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// Success writes a successful response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	meta := &APIMeta{
		Timestamp:  time.Now(),
		DurationMs: time.Since(rw.startTime).Milliseconds(),
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
	}

	rw.writeJSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// PNG streams a rendered chart with image headers.
func (rw *ResponseWriter) PNG(filename string, render func(w http.ResponseWriter) error) {
	rw.w.Header().Set("Content-Type", "image/png")
	rw.w.Header().Set("Content-Disposition", "inline; filename="+filename)
	if err := render(rw.w); err != nil {
		logging.Error().Err(err).Str("filename", filename).Msg("Chart rendering failed")
	}
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	requestID := logging.RequestIDFromContext(rw.r.Context())

	rw.writeJSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
		Meta: &APIMeta{
			Timestamp:  time.Now(),
			DurationMs: time.Since(rw.startTime).Milliseconds(),
			RequestID:  requestID,
		},
	})
}

// BadRequest writes a 400 Bad Request error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError writes a 500 Internal Server Error.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable writes a 503 Service Unavailable error.
func (rw *ResponseWriter) ServiceUnavailable(message string) {
	rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// ValidationError writes a 400 error with validation details.
func (rw *ResponseWriter) ValidationError(message string, validationErrors interface{}) {
	rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, message, validationErrors)
}

// DatabaseError writes a 500 error for database failures.
func (rw *ResponseWriter) DatabaseError(err error) {
	logging.Error().Err(err).Msg("Database error")
	rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "A database error occurred")
}

// writeJSON writes JSON response with proper headers.
func (rw *ResponseWriter) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
