package session

import (
	"context"
	"sync"
	"time"
)

// Ticker is the single logical per-session timer source. It delivers one
// callback per interval while running; drift correction is deliberately
// absent - each delivered tick counts exactly one second of session time.
type Ticker struct {
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTicker creates a ticker. A non-positive interval defaults to one second.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Run delivers ticks to fn until the context is cancelled or Stop is called.
// It blocks; callers run it in its own goroutine.
func (t *Ticker) Run(ctx context.Context, fn func()) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-ticker.C:
			fn()
		}
	}
}

// Stop terminates the tick loop. Safe to call more than once and safe to
// call while a tick is being delivered.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}
