package timemanager

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aerugo-rt/aerugo/internal/clock"
	"github.com/aerugo-rt/aerugo/internal/executor"
	"github.com/aerugo-rt/aerugo/internal/tasklet"
)

type fakeWaker struct{ wakes int }

func (f *fakeWaker) Wake() { f.wakes++ }

// period is a small helper so tests can take the address of a clock.Duration
// literal; NewCyclicExecution's period parameter is a pointer so "no
// period" (nil) is representable distinctly from a zero-length period.
func period(d clock.Duration) *clock.Duration { return &d }

func TestWakeIfDueFiresAtOffset(t *testing.T) {
	owner := &fakeWaker{}
	ce := NewCyclicExecution(owner, period(clock.Millis(100)), clock.Millis(50))

	ce.WakeIfDue(clock.FromMicros(0))
	if owner.wakes != 0 {
		t.Fatalf("expected no wake before offset elapses, got %d", owner.wakes)
	}

	ce.WakeIfDue(clock.Zero.Add(clock.Millis(50)))
	if owner.wakes != 1 {
		t.Fatalf("expected exactly one wake at the offset, got %d", owner.wakes)
	}
}

func TestWakeIfDueRepeatsEveryPeriod(t *testing.T) {
	owner := &fakeWaker{}
	ce := NewCyclicExecution(owner, period(clock.Millis(10)), clock.Millis(0))

	ce.WakeIfDue(clock.Zero.Add(clock.Millis(10)))
	ce.WakeIfDue(clock.Zero.Add(clock.Millis(20)))
	ce.WakeIfDue(clock.Zero.Add(clock.Millis(30)))

	if owner.wakes != 3 {
		t.Fatalf("expected one wake per period boundary, got %d", owner.wakes)
	}
}

func TestMissedPeriodsCoalesceIntoOneWake(t *testing.T) {
	owner := &fakeWaker{}
	ce := NewCyclicExecution(owner, period(clock.Millis(10)), clock.Millis(0))

	// Jump far past several periods in a single tick.
	ce.WakeIfDue(clock.Zero.Add(clock.Millis(105)))

	if owner.wakes != 1 {
		t.Fatalf("expected exactly one wake despite missing ~10 periods, got %d", owner.wakes)
	}

	// The next due time should now be in the future relative to 105ms,
	// so a tick at the same instant again produces no further wake.
	ce.WakeIfDue(clock.Zero.Add(clock.Millis(105)))
	if owner.wakes != 1 {
		t.Fatalf("expected no additional wake once caught up, got %d", owner.wakes)
	}
}

func TestTimeManagerSweepsAllRegistered(t *testing.T) {
	tm := New(2)
	w1, w2 := &fakeWaker{}, &fakeWaker{}
	_ = tm.Register(NewCyclicExecution(w1, period(clock.Millis(10)), clock.Millis(0)))
	_ = tm.Register(NewCyclicExecution(w2, period(clock.Millis(20)), clock.Millis(0)))

	tm.Tick(clock.Zero.Add(clock.Millis(20)))

	if w1.wakes != 1 {
		t.Errorf("expected w1 woken once, got %d", w1.wakes)
	}
	if w2.wakes != 1 {
		t.Errorf("expected w2 woken once, got %d", w2.wakes)
	}
}

func TestDataReadyAlwaysFalseButGetDataAlwaysYields(t *testing.T) {
	ce := NewCyclicExecution(&fakeWaker{}, period(clock.Millis(10)), clock.Millis(0))
	if ce.DataReady() {
		t.Error("expected a cyclic execution to never report DataReady()==true")
	}
	// DataReady is what keeps a cyclic tasklet off the executor's polling
	// path; GetData itself must still yield unconditionally once the
	// tasklet has been woken and the executor calls it, or the step
	// function would never run.
	if _, ok := ce.GetData(); !ok {
		t.Error("expected GetData() to always report ok==true")
	}
}

func TestNoPeriodWakesOnEveryTick(t *testing.T) {
	owner := &fakeWaker{}
	ce := NewCyclicExecution(owner, nil, clock.Millis(0))

	ce.WakeIfDue(clock.Zero.Add(clock.Millis(1)))
	ce.WakeIfDue(clock.Zero.Add(clock.Millis(2)))
	ce.WakeIfDue(clock.Zero.Add(clock.Millis(2)))

	if owner.wakes != 3 {
		t.Fatalf("expected a wake on every tick with no period configured, got %d", owner.wakes)
	}
}

// TestCyclicTaskletStepFunctionActuallyRuns drives a real tasklet.Tasklet
// through a real executor.Executor, subscribed to a CyclicExecution, end
// to end. A provider that reports DataReady()==false but GetData()'s
// ok==false too would leave the step function never invoked despite the
// tasklet being woken every tick — this is the regression the unit-level
// fakeWaker tests above cannot see, since they never call Execute.
func TestCyclicTaskletStepFunctionActuallyRuns(t *testing.T) {
	var mu sync.Mutex
	runs := 0

	blink := tasklet.New(tasklet.Config[struct{}, struct{}]{
		Name:     "blink",
		Priority: 1,
		Context:  new(struct{}),
		StepFn: func(struct{}, *struct{}) {
			mu.Lock()
			runs++
			mu.Unlock()
		},
	})

	ce := NewCyclicExecution(blink, period(clock.Millis(10)), clock.Millis(0))
	if err := blink.Subscribe(ce); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	tm := New(1)
	if err := tm.Register(ce); err != nil {
		t.Fatalf("Register: %v", err)
	}

	ex := executor.New(1, nil)
	ex.Register(blink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ex.Run(ctx)
		close(done)
	}()

	tm.Tick(clock.Zero.Add(clock.Millis(10)))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := runs
		mu.Unlock()
		if n >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Fatalf("expected the cyclic tasklet's step function to run exactly once for one tick, got %d", runs)
	}
}
