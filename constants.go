package aerugo

import "time"

// Defaults mirror the sizing choices a static firmware image would make
// at link time: generous enough for a typical topology, small enough to
// stay fully preallocated. A real system should size these explicitly in
// SystemConfig rather than rely on the defaults, the same way the
// original firmware's const generics had to be chosen per target.
const (
	// DefaultMaxTasklets bounds the executor's run queue. Cyclic
	// executions and per-queue subscriber lists have their own limits
	// below.
	DefaultMaxTasklets = 32

	// DefaultMaxSubscribersPerQueue bounds how many tasklets may be
	// subscribed to a single message queue.
	DefaultMaxSubscribersPerQueue = 8

	// DefaultMaxEventSets bounds how many event sets a single event may
	// be added to.
	DefaultMaxEventSets = 8

	// DefaultMaxConditionSets bounds how many condition sets a single
	// boolean condition may be added to.
	DefaultMaxConditionSets = 8

	// DefaultMaxConditionMembers bounds how many conditions may compose
	// a single condition set.
	DefaultMaxConditionMembers = 8

	// DefaultMaxCyclicExecutions bounds the time manager's registered
	// cyclic-execution list.
	DefaultMaxCyclicExecutions = 16
)

// DefaultTickInterval is the host simulator's tick cadence when a system
// is constructed without an explicit hal.Platform. 1kHz matches the
// cadence most Cortex-M SysTick configurations use in practice, giving
// cyclic executions configured in whole milliseconds the resolution they
// expect.
const DefaultTickInterval = time.Millisecond
