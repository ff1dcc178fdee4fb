// Package timemanager implements the cyclic execution wake source and
// the tick-driven sweep that advances it (C10): a tasklet registered with
// a period and offset is woken on a fixed cadence, and if one or more
// ticks were missed (the host was busy, or — on target — an interrupt was
// masked too long), the next-execution time is advanced by whole periods
// in a single pass so exactly one wake is produced for the whole gap,
// never a burst of catch-up wakes. Ported from the original firmware's
// time_manager.rs and cyclic_execution.rs.
package timemanager

import (
	"github.com/aerugo-rt/aerugo/internal/boundedlist"
	"github.com/aerugo-rt/aerugo/internal/clock"
	"github.com/aerugo-rt/aerugo/internal/critsection"
	"github.com/aerugo-rt/aerugo/internal/dataflow"
)

// CyclicExecution wakes a single tasklet on a period, starting at an
// initial offset from system boot. It also implements
// dataflow.Provider[struct{}]: a cyclic tasklet's provider never queues
// data of its own; DataReady always reports false and GetData always
// yields, so the tasklet runs only when the time manager wakes it.
type CyclicExecution struct {
	sec               critsection.Section
	period            clock.Duration
	hasPeriod         bool
	nextExecutionTime clock.Instant
	owner             dataflow.Wakeable
}

// NewCyclicExecution returns a CyclicExecution that wakes owner every
// period, starting at offset after boot. A nil period is the spec's
// absent-period case: the target is woken unconditionally on every tick
// instead of on a fixed cadence.
func NewCyclicExecution(owner dataflow.Wakeable, period *clock.Duration, offset clock.Duration) *CyclicExecution {
	ce := &CyclicExecution{
		nextExecutionTime: clock.Zero.Add(offset),
		owner:             owner,
	}
	if period != nil {
		ce.period = *period
		ce.hasPeriod = true
	}
	return ce
}

// WakeIfDue checks whether now has reached the scheduled execution time
// and, if so, wakes the owning tasklet and advances the schedule by whole
// periods until it is back in the future relative to now — coalescing any
// number of missed periods into a single wake. A CyclicExecution with no
// period has no schedule to advance at all: it wakes its owner on every
// tick, unconditionally.
func (c *CyclicExecution) WakeIfDue(now clock.Instant) {
	due := false
	c.sec.In(func() {
		if !c.hasPeriod {
			due = true
			return
		}
		for !now.Before(c.nextExecutionTime) {
			due = true
			c.nextExecutionTime = c.nextExecutionTime.Add(c.period)
		}
	})
	if due && c.owner != nil {
		c.owner.Wake()
	}
}

// DataReady implements dataflow.Provider[struct{}]. A cyclic execution
// has no queued data of its own; it always reports not-ready, so it is
// never discovered by the executor polling for pending data — it is only
// ever pushed into the run queue by the time manager's own Wake call.
func (c *CyclicExecution) DataReady() bool { return false }

// GetData implements dataflow.Provider[struct{}]: it yields unit
// unconditionally. The false DataReady above is what keeps a cyclic
// tasklet off the polling path; once the tasklet has been woken and the
// executor invokes GetData to run its step, there is nothing to block on.
func (c *CyclicExecution) GetData() (struct{}, bool) { return struct{}{}, true }

// TimeManager owns the bounded collection of all registered cyclic
// executions and sweeps them once per hardware tick.
type TimeManager struct {
	cyclic *boundedlist.List[*CyclicExecution]
}

// New returns a TimeManager with room for up to maxCyclic registered
// cyclic executions.
func New(maxCyclic int) *TimeManager {
	return &TimeManager{cyclic: boundedlist.New[*CyclicExecution](maxCyclic)}
}

// Register adds ce to the set of cyclic executions checked on every Tick.
// It returns boundedlist.Full if the manager has reached its configured
// capacity.
func (tm *TimeManager) Register(ce *CyclicExecution) error {
	return tm.cyclic.Append(ce)
}

// Tick evaluates every registered cyclic execution against now. It is
// called once per hardware tick interrupt.
func (tm *TimeManager) Tick(now clock.Instant) {
	tm.cyclic.Each(func(ce *CyclicExecution) bool {
		ce.WakeIfDue(now)
		return true
	})
}
