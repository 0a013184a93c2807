// Package breaker implements per-provider circuit breaking and retry/backoff
// policy for the failover orchestrator.
package breaker

import (
	"sync"
	"time"
)

// State is the lifecycle of one provider's circuit breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

const (
	tripThreshold = 3
	tripWindow    = 300 * time.Second
	cooldown      = 600 * time.Second
)

// CircuitBreaker isolates one provider's failures, forbidding attempts for
// cooldown after trip_threshold failures within trip_window.
type CircuitBreaker struct {
	mu sync.Mutex

	state           State
	failureCount    int
	lastFailureTime time.Time
	trippedAt       time.Time

	now func() time.Time
}

// New creates a closed circuit breaker.
func New() *CircuitBreaker {
	return &CircuitBreaker{state: StateClosed, now: time.Now}
}

// State returns the current breaker state without mutating it.
func (b *CircuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsRequestAllowed reports whether a provider attempt may proceed, probing
// out of Open into HalfOpen once cooldown has elapsed.
func (b *CircuitBreaker) IsRequestAllowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Sub(b.trippedAt) >= cooldown {
			b.state = StateHalfOpen
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess clears failure tracking and closes the breaker.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	b.lastFailureTime = time.Time{}
	b.state = StateClosed
}

// RecordFailure increments (or resets) the failure count and trips the
// breaker open once trip_threshold is reached within trip_window.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	if !b.lastFailureTime.IsZero() && now.Sub(b.lastFailureTime) <= tripWindow {
		b.failureCount++
	} else {
		b.failureCount = 1
	}
	b.lastFailureTime = now

	if b.failureCount >= tripThreshold {
		b.state = StateOpen
		b.trippedAt = now
	}
}
