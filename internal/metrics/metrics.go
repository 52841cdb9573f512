// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package metrics provides Prometheus instrumentation for API requests,
// MongoDB operations, and CSV ingestion runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Document Store Metrics
	MongoOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_operation_duration_seconds",
			Help:    "Duration of MongoDB operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	MongoOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_operation_errors_total",
			Help: "Total number of MongoDB operation errors",
		},
		[]string{"operation", "collection"},
	)

	// Ingestion Metrics
	IngestRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Total number of CSV rows processed per entity and outcome",
		},
		[]string{"entity", "outcome"}, // outcome: "valid", "invalid_date", "missing_identity", "error"
	)

	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Total number of ingestion runs per entity and result",
		},
		[]string{"entity", "result"}, // result: "ok", "rejected", "error"
	)

	IngestRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Duration of full ingestion runs in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"entity"},
	)
)

// RecordAPIRequest records an API request with its duration.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordMongoOperation records a MongoDB operation with its duration and
// error outcome.
func RecordMongoOperation(operation, collection string, duration time.Duration, err error) {
	MongoOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		MongoOperationErrors.WithLabelValues(operation, collection).Inc()
	}
}

// RecordIngestRows adds row counts for an ingestion run.
func RecordIngestRows(entity, outcome string, count int) {
	if count > 0 {
		IngestRowsTotal.WithLabelValues(entity, outcome).Add(float64(count))
	}
}

// RecordIngestRun records the completion of an ingestion run.
func RecordIngestRun(entity, result string, duration time.Duration) {
	IngestRunsTotal.WithLabelValues(entity, result).Inc()
	IngestRunDuration.WithLabelValues(entity).Observe(duration.Seconds())
}
