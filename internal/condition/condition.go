// Package condition implements the boolean condition and condition-set
// wake source (C7): latching boolean signals composed under an AllTrue or
// AnyTrue rule. Structurally this package mirrors internal/event one for
// one (spec component table treats C6 and C7 as the same shape with a
// different predicate); it has no dedicated file in the original firmware
// sources, so it is built directly from that component table.
package condition

import (
	"github.com/aerugo-rt/aerugo/internal/boundedlist"
	"github.com/aerugo-rt/aerugo/internal/critsection"
	"github.com/aerugo-rt/aerugo/internal/dataflow"
)

// Rule selects how a Set combines its member conditions' current values.
type Rule int

const (
	// AllTrue requires every member condition to be true.
	AllTrue Rule = iota
	// AnyTrue requires at least one member condition to be true.
	AnyTrue
)

// Condition is a single latching boolean signal that can be subscribed to
// any number of Sets.
type Condition struct {
	sec   critsection.Section
	value bool
	sets  *boundedlist.List[*Set]
}

// New returns a Condition initialized to false, with room to be added to
// up to maxSets condition sets.
func New(maxSets int) *Condition {
	return &Condition{sets: boundedlist.New[*Set](maxSets)}
}

// AddSet subscribes s to this condition. It returns boundedlist.Full if c
// has already been added to its configured maximum number of sets.
func (c *Condition) AddSet(s *Set) error {
	return c.sets.Append(s)
}

// Set stores v and re-evaluates every subscribed set, waking each set's
// owning tasklet if the set's composed value has just changed from false
// to true.
func (c *Condition) Set(v bool) {
	c.sec.In(func() { c.value = v })
	c.sets.Each(func(s *Set) bool {
		s.reevaluate()
		return true
	})
}

// Value returns the condition's current latched value.
func (c *Condition) Value() bool {
	return critsection.In2(&c.sec, func() bool { return c.value })
}

// Set composes a bounded collection of conditions under a Rule and
// implements dataflow.Provider[bool]. Its composed value is continuously
// readable, but DataReady only reports true once, across the single rising
// edge that last woke its owner: GetData consumes that one-shot pending
// flag the same way an event.Set clears its pending bit, so a tasklet
// gated on a condition set runs exactly once per rising edge instead of
// busy-looping for as long as the composed value stays true.
type Set struct {
	rule    Rule
	members *boundedlist.List[*Condition]
	owner   dataflow.Wakeable

	sec     critsection.Section
	value   bool
	pending bool
}

// NewSet returns a ConditionSet combining up to maxMembers conditions
// under rule, waking owner whenever the composed value becomes true.
func NewSet(rule Rule, maxMembers int, owner dataflow.Wakeable) *Set {
	return &Set{
		rule:    rule,
		members: boundedlist.New[*Condition](maxMembers),
		owner:   owner,
	}
}

// AddMember adds c as a member condition of this set. It returns
// boundedlist.Full if the set has reached its configured member capacity.
func (s *Set) AddMember(c *Condition) error {
	return s.members.Append(c)
}

func (s *Set) reevaluate() {
	result := s.evaluate()

	woke := false
	s.sec.In(func() {
		if result && !s.value {
			woke = true
			s.pending = true
		}
		s.value = result
	})
	if woke && s.owner != nil {
		s.owner.Wake()
	}
}

func (s *Set) evaluate() bool {
	switch s.rule {
	case AnyTrue:
		any := false
		s.members.Each(func(c *Condition) bool {
			if c.Value() {
				any = true
				return false
			}
			return true
		})
		return any
	default: // AllTrue
		all := true
		s.members.Each(func(c *Condition) bool {
			if !c.Value() {
				all = false
				return false
			}
			return true
		})
		return all
	}
}

// DataReady implements dataflow.Provider: it reports the one-shot pending
// flag set by the rising edge that last satisfied rule, not the
// continuously-valid composed value.
func (s *Set) DataReady() bool {
	return critsection.In2(&s.sec, func() bool { return s.pending })
}

// GetData implements dataflow.Provider: it returns the set's current
// composed value and consumes the pending flag, so DataReady reports false
// again immediately after the single step that handles this rising edge.
func (s *Set) GetData() (bool, bool) {
	var value bool
	ok := false
	s.sec.In(func() {
		value = s.value
		if s.pending {
			ok = true
			s.pending = false
		}
	})
	return value, ok
}
