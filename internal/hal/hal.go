// Package hal defines the hardware collaborator contract (C14): the
// small set of things the scheduler core requires from its platform and
// does not implement itself — a monotonic clock, a periodic tick source,
// and critical-section enter/leave. Register-level HAL/PAC code for any
// real target is explicitly out of scope; the only concrete
// implementation this repository ships is the host simulator in the
// hostsim subpackage.
package hal

import "github.com/aerugo-rt/aerugo/internal/clock"

// TickSource delivers a callback on every hardware tick interrupt. A real
// target wires this to its periodic timer ISR; Subscribe is expected to
// be called exactly once, during system construction.
type TickSource interface {
	Subscribe(fn func(now clock.Instant))
}

// CriticalSectionProvider enters and leaves the platform's critical
// section (on target: masks interrupt delivery). Enter returns the
// function that leaves the section.
type CriticalSectionProvider interface {
	Enter() (leave func())
}

// Platform bundles the three hardware collaborators the core depends on.
type Platform struct {
	Clock      clock.Source
	Ticks      TickSource
	CritSecPro CriticalSectionProvider
}
