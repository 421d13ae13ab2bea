package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer blocks before a paced request
type Pacer interface {
	// Wait blocks for the pacing delay or until ctx is done
	Wait(ctx context.Context) error
}

// FixedDelay waits the same duration on every call
type FixedDelay struct {
	delay time.Duration
	after func(time.Duration) <-chan time.Time

	mu    sync.Mutex
	waits int
	total time.Duration
}

// NewFixedDelay creates a pacer sleeping delay per call. A delay of zero
// or less never blocks.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	if delay < 0 {
		delay = 0
	}
	return &FixedDelay{
		delay: delay,
		after: time.After,
	}
}

// Delay returns the configured per-call delay
func (p *FixedDelay) Delay() time.Duration {
	return p.delay
}

// Wait sleeps for the fixed delay. It returns ctx.Err() if the context is
// cancelled first.
func (p *FixedDelay) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.waits++
	p.mu.Unlock()

	if p.delay == 0 {
		return nil
	}

	start := time.Now()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.after(p.delay):
	}

	p.mu.Lock()
	p.total += time.Since(start)
	p.mu.Unlock()
	return nil
}

// Stats returns the number of Wait calls and the time spent sleeping
func (p *FixedDelay) Stats() (waits int, slept time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waits, p.total
}

// Reset clears the collected statistics
func (p *FixedDelay) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waits = 0
	p.total = 0
}

// NoDelay returns a pacer that never blocks
func NoDelay() *FixedDelay {
	return NewFixedDelay(0)
}
