// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetCircuitBreakerState_OneActiveState(t *testing.T) {
	SetCircuitBreakerState("unit-breaker", "open")
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerState("unit-breaker", "open")))
	assert.Equal(t, 0.0, testutil.ToFloat64(CircuitBreakerState("unit-breaker", "closed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(CircuitBreakerState("unit-breaker", "half-open")))

	SetCircuitBreakerState("unit-breaker", "closed")
	assert.Equal(t, 0.0, testutil.ToFloat64(CircuitBreakerState("unit-breaker", "open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerState("unit-breaker", "closed")))
}

func TestRecordCircuitBreakerTrip(t *testing.T) {
	before := testutil.ToFloat64(CircuitBreakerTrips("unit-breaker", "threshold_exceeded"))
	RecordCircuitBreakerTrip("unit-breaker", "threshold_exceeded")
	assert.Equal(t, before+1, testutil.ToFloat64(CircuitBreakerTrips("unit-breaker", "threshold_exceeded")))
}
