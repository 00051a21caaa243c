package utils

import (
	"errors"
	"sync"
	"time"
)

// CircuitState is the current mode of a circuit breaker.
type CircuitState string

const (
	// StateClosed passes calls through and counts failures.
	StateClosed CircuitState = "closed"
	// StateOpen rejects calls until the reset timeout elapses.
	StateOpen CircuitState = "open"
	// StateHalfOpen lets a single probe call through to test recovery.
	StateHalfOpen CircuitState = "half-open"
)

var (
	// ErrCircuitOpen is returned while the circuit is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned when a probe is already in flight.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// CircuitBreaker trips after a run of consecutive failures and rejects
// calls until the reset timeout elapses, after which one probe call
// decides whether the circuit closes again.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration

	mu           sync.Mutex
	state        CircuitState
	failureCount int
	lastFailure  time.Time
	probing      bool
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// Call runs fn under the breaker. The fn error is returned unchanged; an
// open circuit short-circuits with ErrCircuitOpen without invoking fn.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.lastFailure) <= cb.resetTimeout {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.probing = false
	}

	if cb.state == StateHalfOpen {
		if cb.probing {
			return ErrTooManyRequests
		}
		cb.probing = true
	}

	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		// Any success while closed clears the failure run; a successful
		// probe closes the circuit.
		cb.state = StateClosed
		cb.failureCount = 0
		cb.probing = false
		return
	}

	cb.lastFailure = time.Now()
	if cb.state == StateHalfOpen {
		// Failed probe: reopen and restart the timeout.
		cb.state = StateOpen
		cb.failureCount = cb.maxFailures
		return
	}

	cb.failureCount++
	if cb.failureCount >= cb.maxFailures {
		cb.state = StateOpen
	}
}

// GetState reports the current state.
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the circuit closed and clears the failure run.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
	cb.probing = false
}
