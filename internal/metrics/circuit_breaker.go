// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breaker collectors are fed by resilience.CircuitBreaker. The component
// label is the breaker name; the vendor transport registers as "transport",
// so an open circuit there means laundry calls fail fast as communication
// failures without reaching the vendor.
var (
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "golaundry_circuit_breaker_state",
		Help: "Active breaker state per component (1 for the current state, 0 otherwise)",
	}, []string{"component", "state"})

	circuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "golaundry_circuit_breaker_trips_total",
		Help: "Breaker transitions to open, by component and reason (threshold_exceeded, half_open_failure)",
	}, []string{"component", "reason"})
)

// breakerStates mirrors resilience.State values.
var breakerStates = []string{"closed", "half-open", "open"}

// SetCircuitBreakerState makes state the only active state of component.
func SetCircuitBreakerState(component, state string) {
	for _, s := range breakerStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		circuitBreakerState.WithLabelValues(component, s).Set(value)
	}
}

// RecordCircuitBreakerTrip counts one transition of component to open.
func RecordCircuitBreakerTrip(component, reason string) {
	circuitBreakerTrips.WithLabelValues(component, reason).Inc()
}

// CircuitBreakerState returns the gauge of one component/state pair.
func CircuitBreakerState(component, state string) prometheus.Gauge {
	return circuitBreakerState.WithLabelValues(component, state)
}

// CircuitBreakerTrips returns the trip counter of one component/reason pair.
func CircuitBreakerTrips(component, reason string) prometheus.Counter {
	return circuitBreakerTrips.WithLabelValues(component, reason)
}
