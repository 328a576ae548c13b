// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openwebif

import (
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/e2seen/internal/metrics"
)

// State represents the circuit breaker state.
type State int

const (
	StateClosed   State = iota // requests allowed
	StateOpen                  // requests blocked
	StateHalfOpen              // probing whether the receiver is back
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is returned without contacting the receiver while the breaker is open.
var ErrCircuitOpen = errors.New("openwebif: circuit breaker is open")

const breakerComponent = "openwebif"

// CircuitBreaker stops calling an unreachable receiver for a while after
// repeated failures.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            State
	failures         int
	failureThreshold int
	resetTimeout     time.Duration
	lastFailure      time.Time
	now              func() time.Time
}

// NewCircuitBreaker opens after threshold consecutive failures and lets one
// probe through once resetTimeout has passed.
func NewCircuitBreaker(threshold int, resetTimeout time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	cb := &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: threshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
	metrics.SetCircuitBreakerState(breakerComponent, cb.state.String())
	return cb
}

// Execute runs fn unless the circuit is open. Only errors for which counts
// returns true are recorded as failures.
func (cb *CircuitBreaker) Execute(fn func() error, counts func(error) bool) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	if err != nil && counts(err) {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return err
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) < cb.resetTimeout {
			return false
		}
		cb.setState(StateHalfOpen)
		return true
	default:
		return true
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == StateHalfOpen || cb.failures >= cb.failureThreshold {
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.setState(StateClosed)
}

// setState requires cb.mu.
func (cb *CircuitBreaker) setState(s State) {
	if cb.state == s {
		return
	}
	cb.state = s
	metrics.SetCircuitBreakerState(breakerComponent, s.String())
	if s == StateOpen {
		metrics.RecordCircuitBreakerTrip(breakerComponent)
	}
}
