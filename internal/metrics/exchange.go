// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exchangeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "golaundry_exchange_total",
		Help: "Vendor exchanges by command and outcome",
	}, []string{
		"command", // Authenticate2|ConsolidatedRefresh|...
		"outcome", // success|communication|response_format|unexpected|rejected|authentication|vend|retry
	})

	exchangeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "golaundry_exchange_duration_seconds",
		Help:    "Duration of one vendor exchange, excluding re-login retries",
		Buckets: prometheus.ExponentialBuckets(0.05, 2.0, 8),
	}, []string{"command"})

	reloginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "golaundry_relogin_total",
		Help: "Self-healing re-login attempts after INPUT_MALFORMED",
	}, []string{"result"}) // success|failure|no_credentials
)

// ObserveExchange records the outcome and duration of one exchange.
func ObserveExchange(command, outcome string, d time.Duration) {
	exchangeTotal.WithLabelValues(command, outcome).Inc()
	exchangeDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordRelogin counts one recovery attempt.
func RecordRelogin(result string) {
	reloginTotal.WithLabelValues(result).Inc()
}

// ExchangeCount returns the current exchange counter for tests and diagnostics.
func ExchangeCount(command, outcome string) prometheus.Counter {
	return exchangeTotal.WithLabelValues(command, outcome)
}

// ReloginCount returns the current re-login counter for tests and diagnostics.
func ReloginCount(result string) prometheus.Counter {
	return reloginTotal.WithLabelValues(result)
}
