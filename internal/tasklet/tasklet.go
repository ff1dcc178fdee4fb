// Package tasklet implements the tasklet status state machine (C9): the
// cooperative unit of execution the executor schedules. A Tasklet is
// named, carries a priority, a single bound data provider, and a step
// function; it transitions Sleeping -> Waiting -> Working -> (Waiting if
// more work remains, else Sleeping), exactly as in the original firmware's
// tasklet.rs.
package tasklet

import (
	"github.com/aerugo-rt/aerugo/internal/cell"
	"github.com/aerugo-rt/aerugo/internal/clock"
	"github.com/aerugo-rt/aerugo/internal/critsection"
	"github.com/aerugo-rt/aerugo/internal/dataflow"
)

// Status is a tasklet's position in its execution state machine.
type Status int

const (
	Sleeping Status = iota
	Waiting
	Working
)

func (s Status) String() string {
	switch s {
	case Sleeping:
		return "sleeping"
	case Waiting:
		return "waiting"
	case Working:
		return "working"
	default:
		return "unknown"
	}
}

// Stats is a running summary of a tasklet's step execution time.
type Stats struct {
	Count int
	Min   clock.Duration
	Max   clock.Duration
	total int64
}

func (s *Stats) record(d clock.Duration) {
	if s.Count == 0 {
		s.Min = d
		s.Max = d
	} else {
		if d.Micros() < s.Min.Micros() {
			s.Min = d
		}
		if d.Micros() > s.Max.Micros() {
			s.Max = d
		}
	}
	s.total += d.Micros()
	s.Count++
}

// Mean returns the arithmetic mean step duration, or zero if no steps
// have run yet.
func (s *Stats) Mean() clock.Duration {
	if s.Count == 0 {
		return clock.Duration{}
	}
	return clock.Micros(s.total / int64(s.Count))
}

// Runnable is the non-generic surface the executor schedules against; a
// *Tasklet[T, C] implements it regardless of its data or context type.
type Runnable interface {
	Name() string
	Priority() int
	Status() Status
	HasWork() bool
	Execute()
	LastExecutionTime() clock.Instant
	Stats() Stats
	// SetWakeHook is called exactly once, by the executor, at
	// registration time, so Wake() can notify the executor's run queue
	// without this package importing the executor package.
	SetWakeHook(fn func())
	Wake()
}

// Tasklet is a single cooperative unit of work operating on data of type
// T with private context C.
type Tasklet[T, C any] struct {
	name     string
	priority int
	clockSrc clock.Source

	sec                critsection.Section
	status             Status
	lastExecutionTime  clock.Instant

	ctx    *C
	stepFn func(T, *C)

	provider cell.Once[dataflow.Provider[T]]
	wakeHook func()

	stats Stats
}

// Config describes a tasklet's static construction parameters.
type Config[T, C any] struct {
	Name     string
	Priority int
	Context  *C
	StepFn   func(data T, ctx *C)
	Clock    clock.Source
}

// New constructs a Tasklet from cfg. It starts Sleeping with no bound
// provider.
func New[T, C any](cfg Config[T, C]) *Tasklet[T, C] {
	return &Tasklet[T, C]{
		name:     cfg.Name,
		priority: cfg.Priority,
		clockSrc: cfg.Clock,
		ctx:      cfg.Context,
		stepFn:   cfg.StepFn,
	}
}

func (t *Tasklet[T, C]) Name() string     { return t.name }
func (t *Tasklet[T, C]) Priority() int    { return t.priority }

// Subscribe implements dataflow.Receiver[T]: it binds p as this tasklet's
// sole data source, and fails if a provider is already bound.
func (t *Tasklet[T, C]) Subscribe(p dataflow.Provider[T]) error {
	if !t.provider.Set(p) {
		return ErrAlreadySubscribed
	}
	return nil
}

type subscribedError struct{}

func (subscribedError) Error() string { return "tasklet: data receiver already subscribed" }

// ErrAlreadySubscribed is returned by Subscribe when a provider is already
// bound.
var ErrAlreadySubscribed error = subscribedError{}

// Status returns the tasklet's current state-machine status.
func (t *Tasklet[T, C]) Status() Status {
	return critsection.In2(&t.sec, func() Status { return t.status })
}

// LastExecutionTime returns the instant at which Execute last completed.
func (t *Tasklet[T, C]) LastExecutionTime() clock.Instant {
	return critsection.In2(&t.sec, func() clock.Instant { return t.lastExecutionTime })
}

// Stats returns a snapshot of this tasklet's execution-time statistics.
func (t *Tasklet[T, C]) Stats() Stats {
	return critsection.In2(&t.sec, func() Stats { return t.stats })
}

// SetWakeHook registers fn to be called whenever Wake transitions this
// tasklet out of Sleeping. The executor calls this exactly once per
// tasklet during registration.
func (t *Tasklet[T, C]) SetWakeHook(fn func()) {
	t.sec.In(func() { t.wakeHook = fn })
}

// Wake transitions the tasklet from Sleeping to Waiting. It is idempotent:
// waking a tasklet that is already Waiting or Working has no effect, so a
// tasklet that wakes itself mid-step is not double-queued. A transition
// out of Sleeping invokes the registered wake hook.
func (t *Tasklet[T, C]) Wake() {
	var hook func()
	t.sec.In(func() {
		if t.status == Sleeping {
			t.status = Waiting
			hook = t.wakeHook
		}
	})
	if hook != nil {
		hook()
	}
}

// HasWork reports whether this tasklet's bound provider currently has
// data ready.
func (t *Tasklet[T, C]) HasWork() bool {
	p, ok := t.provider.Get()
	if !ok {
		return false
	}
	return p.DataReady()
}

// Execute runs one step: it marks the tasklet Working, drains one item
// from its provider, runs the step function, records execution-time
// statistics, and then transitions back to Waiting (if more work is
// already available) or Sleeping.
func (t *Tasklet[T, C]) Execute() {
	t.sec.In(func() { t.status = Working })

	p, bound := t.provider.Get()
	if bound {
		if data, ok := p.GetData(); ok {
			start := t.now()
			t.stepFn(data, t.ctx)
			elapsed := t.now().Sub(start)
			t.sec.In(func() {
				t.stats.record(elapsed)
				t.lastExecutionTime = t.now()
			})
		}
	}

	stillHasWork := bound && p.DataReady()
	t.sec.In(func() {
		if stillHasWork {
			t.status = Waiting
		} else {
			t.status = Sleeping
		}
	})
}

func (t *Tasklet[T, C]) now() clock.Instant {
	if t.clockSrc == nil {
		return clock.Zero
	}
	return t.clockSrc.Now()
}
