// Package dataflow defines the uniform contract every wake source and
// every waking tasklet in the scheduler core agrees on. A Provider is
// anything that can hold data ready for consumption (a message queue, an
// event set, a boolean condition set, a cyclic execution record); a
// Receiver is anything that consumes from exactly one Provider. Keeping
// these as a small standalone interface package, separate from the
// concrete wake-source packages, avoids import cycles between queue,
// event, condition and tasklet.
package dataflow

// Provider is a source of data a tasklet can be subscribed to.
type Provider[T any] interface {
	// DataReady reports whether GetData would currently return data.
	DataReady() bool
	// GetData returns the provider's current data, or false if none is
	// ready. Calling GetData does not have to be idempotent: queues
	// dequeue, event sets clear the bit they hand back.
	GetData() (T, bool)
}

// Receiver is a consumer that may be bound to exactly one Provider over
// its lifetime.
type Receiver[T any] interface {
	// Subscribe binds p as this receiver's sole data source. It returns
	// an error if the receiver already has a bound provider.
	Subscribe(p Provider[T]) error
}

// Wakeable is the narrow interface every wake source (queue, event set,
// condition set, cyclic execution) uses to notify its subscribed tasklet
// that it has work, without needing to import the tasklet or executor
// packages directly.
type Wakeable interface {
	Wake()
}
