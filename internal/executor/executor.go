// Package executor implements the priority-driven run loop (C11): a
// bounded max-heap of woken tasklets, popped by priority with a stable
// tie-break, executed one at a time, and re-queued if a tasklet's step
// left more work behind. Ported from the original firmware's executor.rs;
// its control-flow shape (a single goroutine looping select{ctx.Done,
// default} over a mutex-guarded per-item state machine) is adapted from
// the teacher repository's queue runner loop.
package executor

import (
	"container/heap"
	"context"
	"runtime"

	"github.com/aerugo-rt/aerugo/internal/critsection"
	"github.com/aerugo-rt/aerugo/internal/logging"
	"github.com/aerugo-rt/aerugo/internal/tasklet"
)

// Full is the error value for an executor whose run queue has reached the
// capacity it was constructed with. Register does not check capacity and
// does not return it; a wake that finds the run queue full is dropped and
// logged at Warn instead.
var Full = fullError{}

type fullError struct{}

func (fullError) Error() string { return "executor: tasklet capacity exceeded" }

type item struct {
	r   tasklet.Runnable
	seq uint64
}

// priorityHeap is a max-heap on priority, breaking ties on the sequence
// number assigned at wake time so ordering among equal priorities is
// deterministic and starvation-free without depending on any notion of
// storage address.
type priorityHeap []*item

func (h priorityHeap) Len() int { return len(h) }
func (h priorityHeap) Less(i, j int) bool {
	if h[i].r.Priority() != h[j].r.Priority() {
		return h[i].r.Priority() > h[j].r.Priority()
	}
	return h[i].seq < h[j].seq
}
func (h priorityHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap) Push(x any)   { *h = append(*h, x.(*item)) }
func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Executor runs the registered tasklets' step functions to completion,
// one at a time, in priority order.
type Executor struct {
	sec      critsection.Section
	pq       priorityHeap
	seq      uint64
	capacity int
	notify   chan struct{}
	log      *logging.Logger
}

// New returns an Executor whose run queue holds up to capacity woken
// tasklets. The number of registered tasklets is not bounded.
func New(capacity int, log *logging.Logger) *Executor {
	if log == nil {
		log = logging.Default()
	}
	return &Executor{
		capacity: capacity,
		notify:   make(chan struct{}, 1),
		log:      log,
	}
}

// Register wires r into this executor: whenever r transitions from
// Sleeping to Waiting, it will be admitted to the run queue. Register
// must be called during the init phase, once per tasklet, before Run.
func (e *Executor) Register(r tasklet.Runnable) {
	r.SetWakeHook(func() { e.enqueue(r) })
}

func (e *Executor) enqueue(r tasklet.Runnable) {
	full := false
	e.sec.In(func() {
		if len(e.pq) >= e.capacity {
			full = true
			return
		}
		e.seq++
		heap.Push(&e.pq, &item{r: r, seq: e.seq})
	})
	if full {
		e.log.Warn("executor run queue at capacity, dropping wake", "tasklet", r.Name())
		return
	}
	select {
	case e.notify <- struct{}{}:
	default:
	}
	e.log.Debug("tasklet admitted to run queue", "tasklet", r.Name(), "priority", r.Priority())
}

func (e *Executor) popNext() tasklet.Runnable {
	return critsection.In2(&e.sec, func() tasklet.Runnable {
		if len(e.pq) == 0 {
			return nil
		}
		it := heap.Pop(&e.pq).(*item)
		return it.r
	})
}

func (e *Executor) pushBack(r tasklet.Runnable) {
	e.sec.In(func() {
		e.seq++
		heap.Push(&e.pq, &item{r: r, seq: e.seq})
	})
}

// Run drains the run queue, executing tasklets in priority order, until
// ctx is cancelled. On a real target this loop never returns; the context
// is how the host simulator and test suite stop it cleanly.
func (e *Executor) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r := e.popNext()
		if r == nil {
			select {
			case <-ctx.Done():
				return
			case <-e.notify:
				continue
			}
		}

		e.log.Debug("executing tasklet", "tasklet", r.Name())
		r.Execute()

		if r.Status() == tasklet.Waiting {
			e.pushBack(r)
		}
	}
}

// Len reports the number of tasklets currently admitted to the run queue,
// for tests and diagnostics.
func (e *Executor) Len() int {
	return critsection.In2(&e.sec, func() int { return len(e.pq) })
}
