//go:build !linux

package hostsim

import (
	"sync"

	"github.com/aerugo-rt/aerugo/internal/hal"
)

var _ hal.CriticalSectionProvider = (*CriticalSection)(nil)

// CriticalSection is the non-Linux fallback: a plain mutex, with no
// signal-masking equivalent available. It still satisfies
// hal.CriticalSectionProvider for running the test suite and examples on
// other platforms.
type CriticalSection struct {
	mu sync.Mutex
}

// Enter implements hal.CriticalSectionProvider.
func (c *CriticalSection) Enter() func() {
	c.mu.Lock()
	return c.mu.Unlock
}

// PinToCurrentCPU is a no-op outside Linux.
func PinToCurrentCPU() error {
	return nil
}
