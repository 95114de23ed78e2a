package testfixtures

import (
	"sync"
	"time"
)

// Clock is a simulated wall clock. Advancing it fires any ManualTicker created
// from it whose period has elapsed, so periodic jobs can be driven without
// sleeping.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	tickers []*ManualTicker
}

// NewClock returns a clock initialised to the supplied time. When start is the
// zero value, the shared ReferenceTime is used.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current simulated instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now as a function suitable for dependency injection.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set jumps the clock to t without firing tickers.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward and delivers one tick to every running
// ticker whose next deadline was reached. It returns the updated time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current
	due := make([]*ManualTicker, 0, len(c.tickers))
	for _, t := range c.tickers {
		if t.dueLocked(now) {
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.Fire(now)
	}
	return now
}

// NewTicker registers a ManualTicker with the clock.
func (c *Clock) NewTicker(period time.Duration) *ManualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &ManualTicker{
		ch:     make(chan time.Time, 1),
		period: period,
		next:   c.current.Add(period),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// ManualTicker is a ticker whose ticks are delivered explicitly.
type ManualTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
}

// C returns the tick channel.
func (t *ManualTicker) C() <-chan time.Time {
	return t.ch
}

// Stop prevents further ticks. Pending ticks are dropped.
func (t *ManualTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Stopped reports whether Stop has been called.
func (t *ManualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Fire delivers a tick unless the ticker is stopped. Like time.Ticker, a tick
// is dropped when the previous one has not been consumed yet.
func (t *ManualTicker) Fire(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	select {
	case t.ch <- at:
	default:
	}
}

func (t *ManualTicker) dueLocked(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.period <= 0 || now.Before(t.next) {
		return false
	}
	for !now.Before(t.next) {
		t.next = t.next.Add(t.period)
	}
	return true
}
