// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Batch outcomes recorded by [Metrics].
const (
	batchCommitted = "committed"
	batchRejected  = "rejected"
	batchFailed    = "failed"
)

// Metrics holds the Prometheus collectors of the HTTP server. Each Metrics
// owns its registry so that several servers (or tests) never collide on
// registration.
type Metrics struct {
	registry *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	batchCount      *prometheus.CounterVec
	batchChanges    prometheus.Histogram
}

// NewMetrics creates and registers the server collectors together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "requests_total",
				Help: "How many HTTP requests processed, partitioned by status code, HTTP method and route.",
			},
			[]string{"code", "method", "url"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "request_duration_seconds",
				Help: "The HTTP request latencies in seconds.",
			},
			[]string{"code", "method", "url"},
		),
		batchCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "batch_commits_total",
				Help: "How many batch commits were received, partitioned by outcome.",
			},
			[]string{"result"},
		),
		batchChanges: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "batch_commit_changes",
				Help:    "Number of changes carried by committed batches.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}

	m.registry.MustRegister(
		m.requestCount,
		m.requestDuration,
		m.batchCount,
		m.batchChanges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the registry the collectors were registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry, DisableCompression: true})
}

func (m *Metrics) observeBatch(result string, changes int) {
	m.batchCount.WithLabelValues(result).Inc()
	if result == batchCommitted {
		m.batchChanges.Observe(float64(changes))
	}
}

// withMetrics records count and latency of every request. The url label is
// the matched route pattern, so path parameters do not inflate cardinality.
func (h *Handler) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(rw, r)

		url := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				url = pattern
			}
		}

		status := rw.status
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		elapsed := time.Since(start).Seconds()

		h.metrics.requestDuration.WithLabelValues(code, r.Method, url).Observe(elapsed)
		h.metrics.requestCount.WithLabelValues(code, r.Method, url).Inc()
	})
}
