package provider

import (
	"sync"
	"time"

	"stockdeck/internal/errors"
)

// breakerState represents the state of the live-provider circuit breaker.
type breakerState string

const (
	breakerClosed   breakerState = "CLOSED"
	breakerOpen     breakerState = "OPEN"
	breakerHalfOpen breakerState = "HALF_OPEN"
)

// breaker trips after consecutive live-provider failures so every request
// stops paying the upstream timeout and goes straight to mock data. After
// the cooldown a single probe request is let through.
type breaker struct {
	failureThreshold int
	cooldown         time.Duration

	mu          sync.Mutex
	state       breakerState
	failures    int
	lastFailure time.Time
	probing     bool
}

func newBreaker(failureThreshold int, cooldown time.Duration) *breaker {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &breaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		state:            breakerClosed,
	}
}

// allow reports whether a live request may proceed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(b.lastFailure) >= b.cooldown {
			b.state = breakerHalfOpen
			b.probing = true
			return true
		}
		return false
	case breakerHalfOpen:
		// Only one probe at a time in half-open.
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return true
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probing = false
	b.state = breakerClosed
}

func (b *breaker) recordFailure(err error) {
	// Invalid input and unsupported ops say nothing about upstream health.
	if errors.Is(err, errors.ErrUnsupported) {
		return
	}
	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = time.Now()
	b.probing = false

	switch b.state {
	case breakerClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.state = breakerOpen
		}
	case breakerHalfOpen:
		b.state = breakerOpen
	}
}

// State returns the current breaker state for health reporting.
func (b *breaker) State() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
