// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golaundry_transport_request_total",
			Help: "Total number of vendor HTTP requests",
		},
		[]string{"command", "status_class"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "golaundry_transport_request_duration_seconds",
			Help:    "Duration of vendor HTTP requests",
			Buckets: prometheus.ExponentialBuckets(0.05, 2.0, 8),
		},
		[]string{"command", "status_class"},
	)
	requestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golaundry_transport_request_errors_total",
			Help: "Number of vendor HTTP requests that failed",
		},
		[]string{"command", "status_class"},
	)
	requestRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golaundry_transport_request_rejected_total",
			Help: "Requests refused locally before reaching the vendor",
		},
		[]string{"command", "reason"}, // circuit_open|rate_limit
	)
)

func statusClass(err error, status int) string {
	if err != nil && status == 0 {
		return "error"
	}
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status > 0:
		return "1xx"
	}
	return "unknown"
}

func recordAttemptMetrics(command string, status int, duration time.Duration, err error) {
	class := statusClass(err, status)
	requestTotal.WithLabelValues(command, class).Inc()
	requestDuration.WithLabelValues(command, class).Observe(duration.Seconds())
	if class != "2xx" {
		requestErrors.WithLabelValues(command, class).Inc()
	}
}
