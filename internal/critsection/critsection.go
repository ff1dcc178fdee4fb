// Package critsection provides the single synchronization primitive the
// scheduler core uses: a scoped critical section. On real hardware this
// corresponds to masking interrupt delivery for the duration of the
// section; on the host it is backed by a mutex. Tasklets, the executor
// and the queue, event and condition wake sources guard their mutable
// state with a critsection.Section each; the bounded lists, the System's
// name registries and the logger use their own sync.Mutex.
package critsection

import "sync"

// Section guards a region of code against concurrent entry.
type Section struct {
	mu sync.Mutex
}

// In runs fn with the section held. The section is released on every exit
// path, including a panic unwinding through fn.
func (s *Section) In(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// In2 runs fn with the section held and returns its result. Use this for
// critical sections that need to produce a value, such as draining a
// queue slot or reading the lowest pending bit of an event set.
func In2[T any](s *Section, fn func() T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
