//go:build linux

package hostsim

import (
	"runtime"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/aerugo-rt/aerugo/internal/hal"
)

var _ hal.CriticalSectionProvider = (*CriticalSection)(nil)

// CriticalSection is the host stand-in for disabling interrupt delivery:
// it takes a mutex to exclude other goroutines, and additionally masks
// SIGALRM for the duration of the section, so a real signal-delivered
// tick could not interrupt it mid-section either, on top of blocking
// other goroutines.
type CriticalSection struct {
	mu sync.Mutex
}

// Enter implements hal.CriticalSectionProvider.
func (c *CriticalSection) Enter() func() {
	c.mu.Lock()

	old, maskErr := blockAlarm()

	return func() {
		if maskErr == nil {
			_ = unix.Sigprocmask(unix.SIG_SETMASK, old, nil)
		}
		c.mu.Unlock()
	}
}

func blockAlarm() (*unix.Sigset_t, error) {
	var set, old unix.Sigset_t
	setSignal(&set, unix.SIGALRM)
	if err := unix.Sigprocmask(unix.SIG_BLOCK, &set, &old); err != nil {
		return nil, err
	}
	return &old, nil
}

func setSignal(set *unix.Sigset_t, sig int) {
	bit := uint(sig) - 1
	set.Val[bit/64] |= 1 << (bit % 64)
}

// PinToCurrentCPU pins the calling goroutine's OS thread to CPU 0,
// modeling the single-core constraint the executor relies on: once
// pinned, the run loop cannot migrate across cores mid-step the way a
// preemptive multi-core scheduler could move it.
func PinToCurrentCPU() error {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(0)
	return unix.SchedSetaffinity(0, &set)
}
