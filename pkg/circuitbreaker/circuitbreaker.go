// Package circuitbreaker guards an unreliable dependency with a windowed
// failure breaker: too many failures inside the window open the circuit,
// and after a cooldown a single probe call decides whether it closes again.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
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

// ErrOpen is returned without invoking the wrapped call while the circuit
// is open and the cooldown has not elapsed.
var ErrOpen = errors.New("circuit breaker is open")

type Breaker struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	cooldown    time.Duration
	failures    []time.Time
	lastFailure time.Time
	state       State
}

func New(maxFailures int, cooldown time.Duration) *Breaker {
	return NewWithWindow(maxFailures, cooldown, time.Minute)
}

func NewWithWindow(maxFailures int, cooldown, window time.Duration) *Breaker {
	return &Breaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		window:      window,
		state:       StateClosed,
	}
}

// Do runs fn unless the circuit is open. The wrapped call executes outside
// the breaker's lock.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.state == StateOpen {
		if time.Since(b.lastFailure) < b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.failures = b.failures[:0]
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.prune(now)

	if err != nil {
		b.lastFailure = now
		b.failures = append(b.failures, now)
		if len(b.failures) > b.maxFailures || b.state == StateHalfOpen {
			b.state = StateOpen
		}
		return err
	}

	if b.state == StateHalfOpen {
		b.state = StateClosed
		b.failures = b.failures[:0]
	}
	return nil
}

func (b *Breaker) prune(now time.Time) {
	cutoff := now.Add(-b.window)
	kept := b.failures[:0]
	for _, f := range b.failures {
		if f.After(cutoff) {
			kept = append(kept, f)
		}
	}
	b.failures = kept
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
