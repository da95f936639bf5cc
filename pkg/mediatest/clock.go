package mediatest

import (
	"sync"
	"time"

	"github.com/go-drift/mediakit/pkg/media"
)

// FakeClock provides controllable time for deterministic timer tests.
// All methods are safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*FakeTicker
}

// NewFakeClock returns a FakeClock starting at a fixed epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTicker implements media.Clock. The returned ticker fires only when
// Tick is called; the requested interval is recorded but not honored.
func (c *FakeClock) NewTicker(d time.Duration) media.Ticker {
	t := &FakeTicker{interval: d, ch: make(chan time.Time, 1)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Tick advances the clock by each ticker's interval and fires every
// running ticker once.
func (c *FakeClock) Tick() {
	c.mu.Lock()
	tickers := make([]*FakeTicker, len(c.tickers))
	copy(tickers, c.tickers)
	now := c.now
	c.mu.Unlock()

	for _, t := range tickers {
		t.fire(now)
	}
}

// Tickers returns every ticker created through the clock so far.
func (c *FakeClock) Tickers() []*FakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*FakeTicker, len(c.tickers))
	copy(out, c.tickers)
	return out
}

// FakeTicker is a manually fired media.Ticker.
type FakeTicker struct {
	interval time.Duration
	ch       chan time.Time

	mu      sync.Mutex
	stopped bool
}

// C returns the tick channel.
func (t *FakeTicker) C() <-chan time.Time { return t.ch }

// Stop marks the ticker stopped; further Tick calls are ignored.
func (t *FakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Stopped reports whether Stop was called.
func (t *FakeTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *FakeTicker) fire(now time.Time) {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if stopped {
		return
	}
	select {
	case t.ch <- now:
	default:
	}
}
