package cache

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by store writes while the store's breaker is
// open. Reads during that time are plain misses.
var ErrCircuitOpen = errors.New("cache: store circuit is open")

// BreakerState is the state of a Breaker.
type BreakerState int

const (
	// BreakerClosed lets every operation through.
	BreakerClosed BreakerState = iota
	// BreakerOpen skips the store entirely.
	BreakerOpen
	// BreakerHalfOpen lets a limited number of probes through.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive store failures that opens
	// the breaker.
	// Default: 5
	MaxFailures int

	// ResetTimeout is how long the breaker stays open before probing.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// HalfOpenMaxRequests is the number of probes allowed while half-open.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange is called, with the breaker locked, on every transition.
	OnStateChange func(from, to BreakerState)
}

// Breaker stops a remote store from being called while it keeps failing,
// so that an unreachable backend costs one failed round trip per
// ResetTimeout instead of one per cached call.
type Breaker struct {
	config BreakerConfig
	now    func() time.Time

	mu            sync.Mutex
	state         BreakerState
	failures      int
	lastFailure   time.Time
	halfOpenCount int
}

// NewBreaker creates a closed breaker.
func NewBreaker(config BreakerConfig) *Breaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	return &Breaker{config: config, now: time.Now}
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentStateLocked()
}

// Reset closes the breaker and forgets past failures.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.halfOpenCount = 0
	b.setStateLocked(BreakerClosed)
}

// allow reports whether an operation may reach the store. A nil Breaker
// allows everything.
func (b *Breaker) allow() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentStateLocked() {
	case BreakerOpen:
		return false
	case BreakerHalfOpen:
		if b.halfOpenCount >= b.config.HalfOpenMaxRequests {
			return false
		}
		b.halfOpenCount++
	}
	return true
}

// record reports the outcome of an operation that allow let through.
func (b *Breaker) record(failed bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		b.lastFailure = b.now()
		if b.failures >= b.config.MaxFailures {
			b.setStateLocked(BreakerOpen)
		}
	case BreakerHalfOpen:
		if failed {
			b.lastFailure = b.now()
			b.setStateLocked(BreakerOpen)
			return
		}
		b.failures = 0
		b.setStateLocked(BreakerClosed)
	}
}

func (b *Breaker) currentStateLocked() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.lastFailure) >= b.config.ResetTimeout {
		b.setStateLocked(BreakerHalfOpen)
	}
	return b.state
}

func (b *Breaker) setStateLocked(to BreakerState) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if to == BreakerHalfOpen {
		b.halfOpenCount = 0
	}
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(from, to)
	}
}
