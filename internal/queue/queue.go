// Package queue implements the bounded message queue wake source (C5):
// a fixed-capacity FIFO of T that wakes every subscribed tasklet whenever
// data is sent, and that a tasklet drains one item at a time as its
// Provider. The FIFO storage is guarded by a critical section; subscribers
// are woken after an item is stored, outside that section, and the
// subscriber list is guarded by its own bounded list's lock.
package queue

import (
	"github.com/aerugo-rt/aerugo/internal/boundedlist"
	"github.com/aerugo-rt/aerugo/internal/critsection"
	"github.com/aerugo-rt/aerugo/internal/dataflow"
)

// Queue is a bounded FIFO of T. The zero value is not usable; construct
// with New.
type Queue[T any] struct {
	name string
	sec  critsection.Section
	buf  []T
	head int
	n    int

	subscribers *boundedlist.List[dataflow.Wakeable]
}

// New returns a Queue named name holding up to capacity items, with room
// for up to maxSubscribers registered tasklets.
func New[T any](name string, capacity, maxSubscribers int) *Queue[T] {
	return &Queue[T]{
		name:        name,
		buf:         make([]T, capacity),
		subscribers: boundedlist.New[dataflow.Wakeable](maxSubscribers),
	}
}

// Name returns the queue's configured name.
func (q *Queue[T]) Name() string { return q.name }

// Register adds w to the set of tasklets woken whenever Send succeeds. It
// returns boundedlist.Full if the subscriber list has reached its
// configured capacity.
func (q *Queue[T]) Register(w dataflow.Wakeable) error {
	return q.subscribers.Append(w)
}

// Send enqueues v. If the queue is already at capacity, v is rejected and
// ErrFull is returned; otherwise every registered subscriber is woken.
func (q *Queue[T]) Send(v T) error {
	ok := critsection.In2(&q.sec, func() bool {
		if q.n == len(q.buf) {
			return false
		}
		idx := (q.head + q.n) % len(q.buf)
		q.buf[idx] = v
		q.n++
		return true
	})
	if !ok {
		return ErrFull
	}

	q.subscribers.Each(func(w dataflow.Wakeable) bool {
		w.Wake()
		return true
	})
	return nil
}

// Clear empties the queue without waking any subscriber.
func (q *Queue[T]) Clear() {
	q.sec.In(func() {
		q.head = 0
		q.n = 0
	})
}

// DataReady implements dataflow.Provider.
func (q *Queue[T]) DataReady() bool {
	return critsection.In2(&q.sec, func() bool { return q.n > 0 })
}

// GetData implements dataflow.Provider: it dequeues and returns the oldest
// pending item, or false if the queue is empty.
func (q *Queue[T]) GetData() (v T, ok bool) {
	q.sec.In(func() {
		if q.n == 0 {
			return
		}
		v, ok = q.buf[q.head], true
		var zero T
		q.buf[q.head] = zero
		q.head = (q.head + 1) % len(q.buf)
		q.n--
	})
	return
}

// ErrFull is returned by Send when the queue is already at capacity.
var ErrFull = fullError{}

type fullError struct{}

func (fullError) Error() string { return "queue: full" }
