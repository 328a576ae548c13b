// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	receiverRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "e2seen_receiver_requests_total",
		Help: "Total number of OpenWebIF requests, by operation and status.",
	}, []string{"operation", "status"}) // status=success|error|timeout|circuit_open

	receiverRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "e2seen_receiver_request_duration_seconds",
		Help:    "OpenWebIF request latencies in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "e2seen_circuit_breaker_state",
		Help: "Circuit breaker state by component (1 for the active state, 0 otherwise).",
	}, []string{"component", "state"})

	circuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "e2seen_circuit_breaker_trips_total",
		Help: "Total number of circuit breaker transitions to open.",
	}, []string{"component"})
)

var circuitStates = []string{"closed", "half-open", "open"}

// ObserveReceiverRequest records one OpenWebIF request.
func ObserveReceiverRequest(operation, status string, seconds float64) {
	receiverRequestsTotal.WithLabelValues(operation, status).Inc()
	receiverRequestDuration.WithLabelValues(operation).Observe(seconds)
}

// SetCircuitBreakerState records the active circuit breaker state for a component.
func SetCircuitBreakerState(component, state string) {
	for _, s := range circuitStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		circuitBreakerState.WithLabelValues(component, s).Set(value)
	}
}

// RecordCircuitBreakerTrip counts a transition to the open state.
func RecordCircuitBreakerTrip(component string) {
	circuitBreakerTrips.WithLabelValues(component).Inc()
}
