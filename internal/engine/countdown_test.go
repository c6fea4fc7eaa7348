package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	ch chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               {}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

func TestCountdown_StopsTickingOnceExpired(t *testing.T) {
	end := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: end.Add(-3 * time.Second)}
	ticker := &fakeTicker{ch: make(chan time.Time)}
	emitted := make(chan Remaining, 1)

	c := NewCountdown(end,
		func(r Remaining) { emitted <- r },
		WithNow(clock.Now),
		WithTickerFactory(func(time.Duration) Ticker { return ticker }),
	)

	done := make(chan struct{})
	go func() {
		c.Run(context.Background())
		close(done)
	}()

	// Immediate emission before the first tick.
	r := <-emitted
	assert.Equal(t, int64(3), r.Seconds)
	assert.False(t, r.IsExpired)

	for want := int64(2); want >= 0; want-- {
		now := clock.Advance(time.Second)
		ticker.ch <- now
		r = <-emitted
		assert.Equal(t, want, r.Seconds)
	}
	assert.True(t, r.IsExpired)

	// Reaching zero stops the loop without Stop being called.
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not stop after expiry")
	}
}

func TestCountdown_StopCancelsFurtherTicks(t *testing.T) {
	end := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: end.Add(-time.Hour)}
	ticker := &fakeTicker{ch: make(chan time.Time)}
	emitted := make(chan Remaining, 1)

	c := NewCountdown(end,
		func(r Remaining) { emitted <- r },
		WithNow(clock.Now),
		WithTickerFactory(func(time.Duration) Ticker { return ticker }),
	)

	done := make(chan struct{})
	go func() {
		c.Run(context.Background())
		close(done)
	}()

	<-emitted // initial emission
	c.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not honor Stop")
	}
	assert.Empty(t, emitted)
}

func TestCountdown_ContextCancellation(t *testing.T) {
	end := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: end.Add(-time.Hour)}
	ticker := &fakeTicker{ch: make(chan time.Time)}
	emitted := make(chan Remaining, 1)

	c := NewCountdown(end,
		func(r Remaining) { emitted <- r },
		WithNow(clock.Now),
		WithTickerFactory(func(time.Duration) Ticker { return ticker }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	<-emitted
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not honor context cancellation")
	}
}

func TestCountdown_ExpiredBeforeFirstTick(t *testing.T) {
	end := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: end.Add(time.Minute)}

	var seen []Remaining
	tickerBuilt := false
	c := NewCountdown(end,
		func(r Remaining) { seen = append(seen, r) },
		WithNow(clock.Now),
		WithTickerFactory(func(time.Duration) Ticker {
			tickerBuilt = true
			return &fakeTicker{ch: make(chan time.Time)}
		}),
	)

	c.Run(context.Background())

	require.Len(t, seen, 1)
	assert.True(t, seen[0].IsExpired)
	assert.False(t, tickerBuilt, "no ticker should be created for an expired countdown")
}
