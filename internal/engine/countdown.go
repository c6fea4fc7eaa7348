package engine

import (
	"context"
	"sync"
	"time"
)

// Ticker abstracts time.Ticker so countdown behaviour is testable
// without sleeping.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a Ticker for the given cadence.
type TickerFactory func(interval time.Duration) Ticker

type wallTicker struct {
	t *time.Ticker
}

func (w *wallTicker) C() <-chan time.Time { return w.t.C }
func (w *wallTicker) Stop()               { w.t.Stop() }

// NewWallTicker is the production TickerFactory.
func NewWallTicker(interval time.Duration) Ticker {
	return &wallTicker{t: time.NewTicker(interval)}
}

// Countdown recomputes the remaining time for one end timestamp on a
// fixed cadence and hands each result to the registered callback. It
// stops itself on expiry and is cancellable through Stop or the
// context passed to Run.
type Countdown struct {
	endTime   time.Time
	interval  time.Duration
	now       func() time.Time
	newTicker TickerFactory
	onTick    func(Remaining)

	stopOnce sync.Once
	stopped  chan struct{}
}

type CountdownOption func(*Countdown)

// WithNow overrides the wall-clock read, for tests.
func WithNow(now func() time.Time) CountdownOption {
	return func(c *Countdown) { c.now = now }
}

// WithTickerFactory overrides the ticker construction, for tests.
func WithTickerFactory(f TickerFactory) CountdownOption {
	return func(c *Countdown) { c.newTicker = f }
}

// WithInterval overrides the default one-second cadence.
func WithInterval(interval time.Duration) CountdownOption {
	return func(c *Countdown) { c.interval = interval }
}

func NewCountdown(endTime time.Time, onTick func(Remaining), opts ...CountdownOption) *Countdown {
	c := &Countdown{
		endTime:   endTime,
		interval:  time.Second,
		now:       time.Now,
		newTicker: NewWallTicker,
		onTick:    onTick,
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run ticks until expiry, Stop, or context cancellation. The callback
// fires once immediately so consumers never render a stale countdown.
func (c *Countdown) Run(ctx context.Context) {
	defer c.Stop()

	if r := c.emit(); r.IsExpired {
		return
	}

	ticker := c.newTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			if r := c.emit(); r.IsExpired {
				return
			}
		case <-c.stopped:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels all further ticks. Safe to call more than once.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stopped) })
}

func (c *Countdown) emit() Remaining {
	r := RemainingAt(c.endTime, c.now())
	c.onTick(r)
	return r
}
