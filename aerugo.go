// Package aerugo implements the CORE of a static, single-core,
// priority-driven cooperative tasklet scheduler. A System is built up
// during an init phase (CreateTasklet, CreateMessageQueue, CreateEvent,
// CreateBooleanCondition, and the Subscribe* wiring calls), then handed
// to Start, which runs the executor until its context is cancelled. The
// Create* calls check at runtime whether Start has been called and then
// fail with ErrSystemAlreadyStarted; the Subscribe* and Add*ToSet calls do
// not check the phase. A step function receives only its data and its own
// context; Runtime returns a *RuntimeAPI, a view without the init-phase
// calls, for embedding in that context.
//
// This mirrors the teacher repository's two-phase device lifecycle
// (construct and wire collaborators, then hand off to a run loop) and its
// one-method-per-verb control-plane style.
package aerugo

import (
	"context"
	"sync"
	"time"

	"github.com/aerugo-rt/aerugo/internal/clock"
	"github.com/aerugo-rt/aerugo/internal/condition"
	"github.com/aerugo-rt/aerugo/internal/dataflow"
	"github.com/aerugo-rt/aerugo/internal/event"
	"github.com/aerugo-rt/aerugo/internal/executor"
	"github.com/aerugo-rt/aerugo/internal/hal"
	"github.com/aerugo-rt/aerugo/internal/hal/hostsim"
	"github.com/aerugo-rt/aerugo/internal/logging"
	"github.com/aerugo-rt/aerugo/internal/queue"
	"github.com/aerugo-rt/aerugo/internal/tasklet"
	"github.com/aerugo-rt/aerugo/internal/timemanager"
)

// SystemConfig describes a System's static sizing and platform wiring.
// Every field has a usable default; the zero value of SystemConfig is not
// meant to be used directly, see DefaultSystemConfig.
type SystemConfig struct {
	MaxTasklets            int
	MaxSubscribersPerQueue int
	MaxEventSets           int
	MaxConditionSets       int
	MaxConditionMembers    int
	MaxCyclicExecutions    int

	// Platform supplies the clock, tick source, and critical section the
	// core depends on. If nil, New builds a host-simulated platform
	// ticking at DefaultTickInterval.
	Platform *hal.Platform

	Logger *logging.Logger
}

// DefaultSystemConfig returns a SystemConfig sized for a small topology,
// using the host simulator as its platform.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		MaxTasklets:            DefaultMaxTasklets,
		MaxSubscribersPerQueue: DefaultMaxSubscribersPerQueue,
		MaxEventSets:           DefaultMaxEventSets,
		MaxConditionSets:       DefaultMaxConditionSets,
		MaxConditionMembers:    DefaultMaxConditionMembers,
		MaxCyclicExecutions:    DefaultMaxCyclicExecutions,
	}
}

// System is the scheduler core. Construct with New, wire up topology with
// the Create*/Subscribe* calls, then call Start.
type System struct {
	cfg SystemConfig
	log *logging.Logger

	executor    *executor.Executor
	timeManager *timemanager.TimeManager
	clockSrc    clock.Source
	ticks       hal.TickSource
	critSec     hal.CriticalSectionProvider
	ownedTicker *hostsim.Ticker
	pinCPU      bool

	mu             sync.Mutex
	taskletNames   map[string]bool
	queueNames     map[string]bool
	eventNames     map[string]bool
	conditionNames map[string]bool

	started   bool
	startTime clock.Instant
}

// New constructs a System from cfg, filling in any zero-valued capacity
// field from DefaultSystemConfig.
func New(cfg SystemConfig) *System {
	defaults := DefaultSystemConfig()
	if cfg.MaxTasklets == 0 {
		cfg.MaxTasklets = defaults.MaxTasklets
	}
	if cfg.MaxSubscribersPerQueue == 0 {
		cfg.MaxSubscribersPerQueue = defaults.MaxSubscribersPerQueue
	}
	if cfg.MaxEventSets == 0 {
		cfg.MaxEventSets = defaults.MaxEventSets
	}
	if cfg.MaxConditionSets == 0 {
		cfg.MaxConditionSets = defaults.MaxConditionSets
	}
	if cfg.MaxConditionMembers == 0 {
		cfg.MaxConditionMembers = defaults.MaxConditionMembers
	}
	if cfg.MaxCyclicExecutions == 0 {
		cfg.MaxCyclicExecutions = defaults.MaxCyclicExecutions
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Default()
	}

	sys := &System{
		cfg:            cfg,
		log:            log,
		executor:       executor.New(cfg.MaxTasklets, log.Component("executor")),
		timeManager:    timemanager.New(cfg.MaxCyclicExecutions),
		taskletNames:   make(map[string]bool),
		queueNames:     make(map[string]bool),
		eventNames:     make(map[string]bool),
		conditionNames: make(map[string]bool),
	}

	if cfg.Platform != nil {
		sys.clockSrc = cfg.Platform.Clock
		sys.ticks = cfg.Platform.Ticks
		sys.critSec = cfg.Platform.CritSecPro
	} else {
		c := hostsim.NewClock()
		t := hostsim.NewTicker(DefaultTickInterval, c)
		sys.clockSrc = c
		sys.ticks = t
		sys.ownedTicker = t
		sys.critSec = &hostsim.CriticalSection{}
		sys.pinCPU = true
	}
	sys.ticks.Subscribe(sys.timeManager.Tick)

	return sys
}

func (s *System) claimName(registry map[string]bool, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if registry[name] {
		return false
	}
	registry[name] = true
	return true
}

// TaskletConfig describes a tasklet's static construction parameters.
// Context, if nil, is allocated as a zero-valued *C.
type TaskletConfig[T, C any] struct {
	Name     string
	Priority int
	Context  *C
	StepFn   func(data T, ctx *C)
}

// TaskletHandle is the opaque reference to a created tasklet, used to
// wire subscriptions and to read back execution statistics.
type TaskletHandle[T, C any] struct {
	t *tasklet.Tasklet[T, C]
}

// Name returns the tasklet's configured name.
func (h *TaskletHandle[T, C]) Name() string { return h.t.Name() }

// Stats returns a snapshot of the tasklet's execution-time statistics.
func (h *TaskletHandle[T, C]) Stats() tasklet.Stats { return h.t.Stats() }

// Wake implements dataflow.Wakeable so a TaskletHandle can itself be
// passed as the owner of an event set or condition set.
func (h *TaskletHandle[T, C]) Wake() { h.t.Wake() }

// CreateTasklet registers a new tasklet on sys. Go has no generic methods,
// so tasklet construction is a package-level function parameterized on
// the tasklet's data and context types, rather than a *System method.
func CreateTasklet[T, C any](sys *System, cfg TaskletConfig[T, C]) (*TaskletHandle[T, C], error) {
	if sys.isStarted() {
		return nil, NewInitErrorFor("CreateTasklet", cfg.Name, ErrSystemAlreadyStarted, "cannot create tasklets after Start")
	}
	if !sys.claimName(sys.taskletNames, cfg.Name) {
		return nil, NewInitErrorFor("CreateTasklet", cfg.Name, ErrTaskletAlreadyCreated, "tasklet name already in use")
	}

	if cfg.Context == nil {
		cfg.Context = new(C)
	}
	t := tasklet.New(tasklet.Config[T, C]{
		Name:     cfg.Name,
		Priority: cfg.Priority,
		Context:  cfg.Context,
		StepFn:   cfg.StepFn,
		Clock:    sys.clockSrc,
	})
	sys.executor.Register(t)
	sys.log.Debug("tasklet created", "name", cfg.Name, "priority", cfg.Priority)

	return &TaskletHandle[T, C]{t: t}, nil
}

// QueueHandle is the opaque reference to a created message queue.
type QueueHandle[T any] struct {
	q *queue.Queue[T]
}

// Send enqueues v, waking every subscribed tasklet. It fails with
// ErrDataQueueFull if the queue is already at capacity.
func (h *QueueHandle[T]) Send(v T) error {
	if err := h.q.Send(v); err != nil {
		return NewRuntimeErrorFor("SendOnQueue", h.q.Name(), ErrDataQueueFull, "queue is full")
	}
	return nil
}

// Clear drains the queue without waking any subscriber.
func (h *QueueHandle[T]) Clear() { h.q.Clear() }

// CreateMessageQueue registers a new bounded message queue on sys.
func CreateMessageQueue[T any](sys *System, name string, capacity int) (*QueueHandle[T], error) {
	if sys.isStarted() {
		return nil, NewInitErrorFor("CreateMessageQueue", name, ErrSystemAlreadyStarted, "cannot create queues after Start")
	}
	if !sys.claimName(sys.queueNames, name) {
		return nil, NewInitErrorFor("CreateMessageQueue", name, ErrMessageQueueAlreadyCreated, "queue name already in use")
	}

	q := queue.New[T](name, capacity, sys.cfg.MaxSubscribersPerQueue)
	sys.log.Debug("message queue created", "name", name, "capacity", capacity)
	return &QueueHandle[T]{q: q}, nil
}

// SubscribeTaskletToQueue binds h to q as its sole data source and
// registers h to be woken whenever q.Send succeeds.
func SubscribeTaskletToQueue[T, C any](sys *System, h *TaskletHandle[T, C], q *QueueHandle[T]) error {
	if err := q.q.Register(h.t); err != nil {
		return NewInitErrorFor("SubscribeTaskletToQueue", h.Name(), ErrSubscriptionListFull, "queue subscriber list full")
	}
	if err := h.t.Subscribe(q.q); err != nil {
		return NewInitErrorFor("SubscribeTaskletToQueue", h.Name(), ErrDataReceiverAlreadySubscribed, "tasklet already has a bound provider")
	}
	return nil
}

// EventHandle is the opaque reference to a created event.
type EventHandle struct {
	name string
	e    *event.Event
}

// ID returns the event's numeric id.
func (h *EventHandle) ID() uint32 { return h.e.ID() }

// Emit fires the event, waking every tasklet subscribed through an
// EventSetHandle it has been added to.
func (h *EventHandle) Emit() { h.e.Emit() }

// CreateEvent registers a new event identified by id.
func (s *System) CreateEvent(name string, id uint32) (*EventHandle, error) {
	if s.isStarted() {
		return nil, NewInitErrorFor("CreateEvent", name, ErrSystemAlreadyStarted, "cannot create events after Start")
	}
	if !s.claimName(s.eventNames, name) {
		return nil, NewInitErrorFor("CreateEvent", name, ErrEventAlreadyCreated, "event name already in use")
	}

	e := event.New(id, s.cfg.MaxEventSets)
	s.log.Debug("event created", "name", name, "id", id)
	return &EventHandle{name: name, e: e}, nil
}

// EventSetHandle multiplexes a bounded collection of events onto a single
// subscribable provider.
type EventSetHandle struct {
	set *event.Set
}

// CreateEventSet returns an event set that wakes owner whenever any of
// its added events fire.
func (s *System) CreateEventSet(owner dataflow.Wakeable) *EventSetHandle {
	return &EventSetHandle{set: event.NewSet(owner)}
}

// AddEventToSet adds evt as a member of set.
func (s *System) AddEventToSet(evt *EventHandle, set *EventSetHandle) error {
	if err := evt.e.AddSet(set.set); err != nil {
		return NewInitErrorFor("AddEventToSet", evt.name, ErrEventSetListFull, "event's set list full")
	}
	return nil
}

// SubscribeTaskletToEventSet binds h to set as its sole data source.
func SubscribeTaskletToEventSet[C any](sys *System, h *TaskletHandle[uint32, C], set *EventSetHandle) error {
	if err := h.t.Subscribe(set.set); err != nil {
		return NewInitErrorFor("SubscribeTaskletToEventSet", h.Name(), ErrDataReceiverAlreadySubscribed, "tasklet already has a bound provider")
	}
	return nil
}

// BooleanConditionHandle is the opaque reference to a created boolean
// condition.
type BooleanConditionHandle struct {
	name string
	c    *condition.Condition
}

// Set stores v and re-evaluates every set this condition composes.
func (h *BooleanConditionHandle) Set(v bool) { h.c.Set(v) }

// Value returns the condition's current latched value.
func (h *BooleanConditionHandle) Value() bool { return h.c.Value() }

// CreateBooleanCondition registers a new latching boolean condition.
func (s *System) CreateBooleanCondition(name string) (*BooleanConditionHandle, error) {
	if s.isStarted() {
		return nil, NewInitErrorFor("CreateBooleanCondition", name, ErrSystemAlreadyStarted, "cannot create conditions after Start")
	}
	if !s.claimName(s.conditionNames, name) {
		return nil, NewInitErrorFor("CreateBooleanCondition", name, ErrBooleanConditionAlreadyCreated, "condition name already in use")
	}

	c := condition.New(s.cfg.MaxConditionSets)
	s.log.Debug("boolean condition created", "name", name)
	return &BooleanConditionHandle{name: name, c: c}, nil
}

// ConditionSetHandle composes a bounded collection of boolean conditions
// under an AllTrue/AnyTrue rule.
type ConditionSetHandle struct {
	set *condition.Set
}

// CreateConditionSet returns a condition set combining its members under
// rule, waking owner whenever the composed value becomes true.
func (s *System) CreateConditionSet(rule condition.Rule, owner dataflow.Wakeable) *ConditionSetHandle {
	return &ConditionSetHandle{set: condition.NewSet(rule, s.cfg.MaxConditionMembers, owner)}
}

// AddConditionToSet adds cond as a member of set.
func (s *System) AddConditionToSet(cond *BooleanConditionHandle, set *ConditionSetHandle) error {
	if err := set.set.AddMember(cond.c); err != nil {
		return NewInitErrorFor("AddConditionToSet", cond.name, ErrSubscriptionListFull, "condition set member list full")
	}
	if err := cond.c.AddSet(set.set); err != nil {
		return NewInitErrorFor("AddConditionToSet", cond.name, ErrEventSetListFull, "condition's set list full")
	}
	return nil
}

// SubscribeTaskletToConditionSet binds h to set as its sole data source.
func SubscribeTaskletToConditionSet[C any](sys *System, h *TaskletHandle[bool, C], set *ConditionSetHandle) error {
	if err := h.t.Subscribe(set.set); err != nil {
		return NewInitErrorFor("SubscribeTaskletToConditionSet", h.Name(), ErrDataReceiverAlreadySubscribed, "tasklet already has a bound provider")
	}
	return nil
}

// SubscribeTaskletToCyclic arranges for h to be woken every period,
// starting at offset after boot. A nil period wakes h unconditionally on
// every tick instead of on a fixed cadence, per spec.md's "absent a
// period" case. h's data type must be struct{}, since a cyclic execution
// carries no payload of its own.
func SubscribeTaskletToCyclic[C any](sys *System, h *TaskletHandle[struct{}, C], period *time.Duration, offset time.Duration) error {
	var cyclicPeriod *clock.Duration
	if period != nil {
		d := clock.Micros(period.Microseconds())
		cyclicPeriod = &d
	}
	ce := timemanager.NewCyclicExecution(h.t, cyclicPeriod, clock.Micros(offset.Microseconds()))
	if err := sys.timeManager.Register(ce); err != nil {
		return NewInitErrorFor("SubscribeTaskletToCyclic", h.Name(), ErrCyclicExecutionListFull, "cyclic execution list full")
	}
	if err := h.t.Subscribe(ce); err != nil {
		return NewInitErrorFor("SubscribeTaskletToCyclic", h.Name(), ErrDataReceiverAlreadySubscribed, "tasklet already has a bound provider")
	}
	return nil
}

func (s *System) isStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Start hands control to the executor. It starts the platform's tick
// source (if the System owns one) and blocks running tasklet steps until
// ctx is cancelled. On a real target this loop never returns.
func (s *System) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return NewInitError("Start", ErrSystemAlreadyStarted, "system already started")
	}
	s.started = true
	s.startTime = s.clockSrc.Now()
	s.mu.Unlock()

	if s.pinCPU {
		if err := hostsim.PinToCurrentCPU(); err != nil {
			s.log.Warn("failed to pin run loop to a single CPU", "error", err)
		}
	}

	if s.critSec != nil {
		leave := s.critSec.Enter()
		if s.ownedTicker != nil {
			s.ownedTicker.Start()
		}
		leave()
	} else if s.ownedTicker != nil {
		s.ownedTicker.Start()
	}
	if s.ownedTicker != nil {
		defer s.ownedTicker.Stop()
	}

	s.log.Info("system starting")
	s.executor.Run(ctx)
	s.log.Info("system stopped")
	return nil
}

// RuntimeAPI is the narrow surface a tasklet's step function is given,
// deliberately excluding every Create*/Subscribe* call: a tasklet cannot
// mutate the static topology once the system has started, because it
// never holds a *System in the first place, only whatever was embedded in
// its own context at construction time.
type RuntimeAPI struct {
	sys *System
}

// Runtime returns the narrow runtime-only view of sys, meant to be
// embedded in a tasklet's context at construction time.
func (s *System) Runtime() *RuntimeAPI {
	return &RuntimeAPI{sys: s}
}

// GetSystemTime returns the current time since boot. It fails with
// ErrSystemTimeNotAvailable if called before Start.
func (r *RuntimeAPI) GetSystemTime() (clock.Instant, error) {
	if !r.sys.isStarted() {
		return clock.Instant{}, NewRuntimeError("GetSystemTime", ErrSystemTimeNotAvailable, "system has not started")
	}
	return r.sys.clockSrc.Now(), nil
}

// GetStartupDuration returns the time elapsed since Start was called.
func (r *RuntimeAPI) GetStartupDuration() (clock.Duration, error) {
	if !r.sys.isStarted() {
		return clock.Duration{}, NewRuntimeError("GetStartupDuration", ErrSystemTimeNotAvailable, "system has not started")
	}
	return r.sys.clockSrc.Now().Sub(r.sys.startTime), nil
}
