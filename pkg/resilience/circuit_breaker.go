package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half_open"
)

// BreakerConfig tunes a Breaker. Zero values get sensible defaults.
type BreakerConfig struct {
	Name             string
	FailureThreshold int           // consecutive failures before opening
	OpenTimeout      time.Duration // how long to stay open before probing
}

// Breaker is a per-peer circuit breaker. The peer client keeps one breaker
// per remote address so a dead peer stops consuming call timeouts while the
// failure detector converges on it.
type Breaker struct {
	mu sync.Mutex

	cfg      BreakerConfig
	state    BreakerState
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 10 * time.Second
	}
	return &Breaker{cfg: cfg, state: BreakerClosed}
}

// State returns the current state, accounting for open-timeout expiry.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advanceLocked(time.Now())
	return b.state
}

// Execute runs fn under the breaker. While open, calls fail fast with
// ErrCircuitOpen. After the open timeout one probe call is let through; its
// outcome decides whether the breaker closes again. Context cancellation is
// not counted as a peer failure.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}

	err := fn(ctx)
	if errors.Is(err, context.Canceled) {
		b.settleProbe()
		return err
	}
	b.record(err == nil)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.advanceLocked(now)

	switch b.state {
	case BreakerOpen:
		return b.openErrLocked()
	case BreakerHalfOpen:
		if b.probing {
			return b.openErrLocked()
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ok {
		b.state = BreakerClosed
		b.failures = 0
		b.probing = false
		return
	}

	if b.state == BreakerHalfOpen {
		b.probing = false
		b.openLocked()
		return
	}
	b.failures++
	if b.failures >= b.cfg.FailureThreshold {
		b.openLocked()
	}
}

func (b *Breaker) settleProbe() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

func (b *Breaker) advanceLocked(now time.Time) {
	if b.state == BreakerOpen && now.Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.state = BreakerHalfOpen
		b.probing = false
	}
}

func (b *Breaker) openLocked() {
	b.state = BreakerOpen
	b.openedAt = time.Now()
	b.failures = 0
}

func (b *Breaker) openErrLocked() error {
	if b.cfg.Name == "" {
		return ErrCircuitOpen
	}
	return fmt.Errorf("%w: %s", ErrCircuitOpen, b.cfg.Name)
}
