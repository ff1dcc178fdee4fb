package aerugo

import (
	"errors"
	"fmt"
)

// InitErrorCode enumerates every way a topology-construction call made
// before Start can fail. The set is exhaustive: no Create*/Subscribe*
// method returns an error outside this list.
type InitErrorCode string

const (
	ErrTaskletAlreadyCreated           InitErrorCode = "tasklet already created"
	ErrMessageQueueAlreadyCreated      InitErrorCode = "message queue already created"
	ErrEventAlreadyCreated             InitErrorCode = "event already created"
	ErrBooleanConditionAlreadyCreated  InitErrorCode = "boolean condition already created"
	ErrSubscriptionListFull            InitErrorCode = "subscription list full"
	ErrCyclicExecutionListFull         InitErrorCode = "cyclic execution list full"
	ErrEventSetListFull                InitErrorCode = "event set list full"
	ErrDataReceiverAlreadySubscribed   InitErrorCode = "data receiver already subscribed"
	ErrSystemAlreadyStarted            InitErrorCode = "system already started"
)

// InitError is returned by every init-phase call (tasklet, queue, event,
// and condition construction, and subscription wiring). InitErrors bubble
// all the way to the caller of Start: they represent a static topology
// mistake, not a runtime condition, and the firmware is expected to halt
// rather than attempt recovery.
type InitError struct {
	Op    string
	Name  string
	Code  InitErrorCode
	Msg   string
	Inner error
}

func (e *InitError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Name != "" {
		return fmt.Sprintf("aerugo: init: %s (op=%s name=%s)", msg, e.Op, e.Name)
	}
	return fmt.Sprintf("aerugo: init: %s (op=%s)", msg, e.Op)
}

func (e *InitError) Unwrap() error { return e.Inner }

func (e *InitError) Is(target error) bool {
	te, ok := target.(*InitError)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewInitError constructs an InitError for op (e.g. "CreateTasklet") with
// the given code and human-readable message.
func NewInitError(op string, code InitErrorCode, msg string) *InitError {
	return &InitError{Op: op, Code: code, Msg: msg}
}

// NewInitErrorFor is NewInitError with the name of the offending topology
// object (tasklet name, queue name, ...) attached for diagnostics.
func NewInitErrorFor(op, name string, code InitErrorCode, msg string) *InitError {
	return &InitError{Op: op, Name: name, Code: code, Msg: msg}
}

// IsInitCode reports whether err is an *InitError carrying code.
func IsInitCode(err error, code InitErrorCode) bool {
	var ie *InitError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// RuntimeErrorCode enumerates the runtime failure codes. The calls in this
// package return ErrDataQueueFull (sending on a full queue) and
// ErrSystemTimeNotAvailable (reading time before Start); emitting an
// event, setting a condition and waking the executor return no error, so
// ErrExecutorTaskletQueueFull and ErrEventSetFull are not returned by any
// call. A RuntimeError is returned to the caller of the failing
// operation; it never aborts the core or the tasklet that raised it.
type RuntimeErrorCode string

const (
	ErrDataQueueFull            RuntimeErrorCode = "data queue full"
	ErrExecutorTaskletQueueFull RuntimeErrorCode = "executor tasklet queue full"
	ErrEventSetFull             RuntimeErrorCode = "event set full"
	ErrSystemTimeNotAvailable   RuntimeErrorCode = "system time not available"
)

// RuntimeError is returned by runtime-surface calls (QueueHandle.Send,
// RuntimeAPI.GetSystemTime, RuntimeAPI.GetStartupDuration).
type RuntimeError struct {
	Op    string
	Name  string
	Code  RuntimeErrorCode
	Msg   string
	Inner error
}

func (e *RuntimeError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Name != "" {
		return fmt.Sprintf("aerugo: runtime: %s (op=%s name=%s)", msg, e.Op, e.Name)
	}
	return fmt.Sprintf("aerugo: runtime: %s (op=%s)", msg, e.Op)
}

func (e *RuntimeError) Unwrap() error { return e.Inner }

func (e *RuntimeError) Is(target error) bool {
	te, ok := target.(*RuntimeError)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewRuntimeError constructs a RuntimeError for op with the given code and
// human-readable message.
func NewRuntimeError(op string, code RuntimeErrorCode, msg string) *RuntimeError {
	return &RuntimeError{Op: op, Code: code, Msg: msg}
}

// NewRuntimeErrorFor is NewRuntimeError with the name of the offending
// topology object attached for diagnostics.
func NewRuntimeErrorFor(op, name string, code RuntimeErrorCode, msg string) *RuntimeError {
	return &RuntimeError{Op: op, Name: name, Code: code, Msg: msg}
}

// IsRuntimeCode reports whether err is a *RuntimeError carrying code.
func IsRuntimeCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
