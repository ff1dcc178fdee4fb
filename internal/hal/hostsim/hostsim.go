// Package hostsim is the one concrete hardware collaborator this
// repository ships: a development-machine stand-in for the real target's
// clock, tick interrupt, and interrupt masking, playing the same role the
// teacher repository's MockBackend plays for disk I/O. It lets the
// scheduler core's test suite run without any real hardware.
//
// The critical section and CPU-pinning primitives use Linux-specific
// signal-mask and affinity syscalls (go:build linux, see
// critsection_linux.go).
package hostsim

import (
	"sync"
	"time"

	"github.com/aerugo-rt/aerugo/internal/clock"
)

// Clock is a clock.Source backed by the host's monotonic clock, offset so
// that Now() reads zero at construction time.
type Clock struct {
	boot time.Time
}

// NewClock returns a Clock whose epoch is the moment of construction.
func NewClock() *Clock {
	return &Clock{boot: time.Now()}
}

// Now implements clock.Source.
func (c *Clock) Now() clock.Instant {
	return clock.FromMicros(time.Since(c.boot).Microseconds())
}

// Ticker is a hal.TickSource driven by a real time.Ticker, standing in
// for the target's periodic hardware timer interrupt.
type Ticker struct {
	interval time.Duration
	clockSrc clock.Source

	mu   sync.Mutex
	subs []func(now clock.Instant)

	stop chan struct{}
}

// NewTicker returns a Ticker that invokes its subscribers every interval,
// reporting the current time from clockSrc.
func NewTicker(interval time.Duration, clockSrc clock.Source) *Ticker {
	return &Ticker{interval: interval, clockSrc: clockSrc, stop: make(chan struct{})}
}

// Subscribe implements hal.TickSource.
func (t *Ticker) Subscribe(fn func(now clock.Instant)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

// Start begins delivering ticks until Stop is called. It runs in its own
// goroutine and returns immediately.
func (t *Ticker) Start() {
	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				now := t.clockSrc.Now()
				t.mu.Lock()
				subs := append([]func(now clock.Instant){}, t.subs...)
				t.mu.Unlock()
				for _, fn := range subs {
					fn(now)
				}
			}
		}
	}()
}

// Stop halts tick delivery.
func (t *Ticker) Stop() {
	close(t.stop)
}

// ManualTicker is a hal.TickSource a test drives explicitly instead of
// relying on wall-clock time, giving deterministic cyclic-execution tests
// exact control over when ticks arrive.
type ManualTicker struct {
	mu   sync.Mutex
	subs []func(now clock.Instant)
}

// Subscribe implements hal.TickSource.
func (m *ManualTicker) Subscribe(fn func(now clock.Instant)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Fire delivers now to every subscriber.
func (m *ManualTicker) Fire(now clock.Instant) {
	m.mu.Lock()
	subs := append([]func(now clock.Instant){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(now)
	}
}

