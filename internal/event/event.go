// Package event implements the event and event-set wake source (C6):
// named, payload-free uint32 signals that can be emitted from anywhere,
// including the simulated interrupt context, and are multiplexed onto a
// bitmask an owning tasklet drains one id at a time. Ported from the
// original firmware's event.rs.
package event

import (
	"math/bits"

	"github.com/aerugo-rt/aerugo/internal/boundedlist"
	"github.com/aerugo-rt/aerugo/internal/critsection"
	"github.com/aerugo-rt/aerugo/internal/dataflow"
)

// Event is a named signal that can be subscribed to any number of
// EventSets and emitted at any time.
type Event struct {
	id   uint32
	sets *boundedlist.List[*Set]
}

// New returns an Event identified by id, with room to be added to up to
// maxSets event sets.
func New(id uint32, maxSets int) *Event {
	return &Event{id: id, sets: boundedlist.New[*Set](maxSets)}
}

// ID returns the event's id.
func (e *Event) ID() uint32 { return e.id }

// AddSet subscribes s to this event. It returns boundedlist.Full if e has
// already been added to its configured maximum number of sets.
func (e *Event) AddSet(s *Set) error {
	return e.sets.Append(s)
}

// Emit sets this event's bit in every subscribed set and wakes each set's
// owning tasklet. Safe to call from the simulated interrupt context.
func (e *Event) Emit() {
	e.sets.Each(func(s *Set) bool {
		s.activate(e.id)
		return true
	})
}

// Set multiplexes a bounded collection of events onto a single pending
// bitmask, exposing at most one pending id per step (the lowest-numbered
// one), so a tasklet subscribed to a Set makes bounded forward progress
// regardless of how many distinct events arrive between steps.
type Set struct {
	sec     critsection.Section
	pending uint32
	owner   dataflow.Wakeable
}

// NewSet returns an EventSet waking owner whenever any of its member
// events fire.
func NewSet(owner dataflow.Wakeable) *Set {
	return &Set{owner: owner}
}

func (s *Set) activate(id uint32) {
	s.sec.In(func() {
		s.pending |= 1 << (id % 32)
	})
	if s.owner != nil {
		s.owner.Wake()
	}
}

// DataReady implements dataflow.Provider.
func (s *Set) DataReady() bool {
	return critsection.In2(&s.sec, func() bool { return s.pending != 0 })
}

// GetData implements dataflow.Provider: it returns the lowest-numbered
// pending event id and clears its bit, or false if none are pending.
func (s *Set) GetData() (id uint32, ok bool) {
	s.sec.In(func() {
		if s.pending == 0 {
			return
		}
		id = uint32(bits.TrailingZeros32(s.pending))
		s.pending &^= 1 << id
		ok = true
	})
	return
}
