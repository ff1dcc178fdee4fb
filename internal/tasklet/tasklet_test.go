package tasklet

import (
	"testing"

	"github.com/aerugo-rt/aerugo/internal/clock"
)

type fakeProvider struct {
	queue []int
}

func (p *fakeProvider) DataReady() bool { return len(p.queue) > 0 }

func (p *fakeProvider) GetData() (int, bool) {
	if len(p.queue) == 0 {
		return 0, false
	}
	v := p.queue[0]
	p.queue = p.queue[1:]
	return v, true
}

func TestNewTaskletStartsSleeping(t *testing.T) {
	tl := New(Config[int, int]{Name: "consumer", Priority: 1, Context: new(int), StepFn: func(int, *int) {}})
	if tl.Status() != Sleeping {
		t.Fatalf("expected Sleeping, got %s", tl.Status())
	}
	if tl.HasWork() {
		t.Fatal("expected a tasklet with no bound provider to report no work")
	}
}

func TestWakeIsIdempotentWhenNotSleeping(t *testing.T) {
	tl := New(Config[int, int]{Name: "t", Priority: 1, Context: new(int), StepFn: func(int, *int) {}})
	calls := 0
	tl.SetWakeHook(func() { calls++ })

	tl.Wake()
	if calls != 1 {
		t.Fatalf("expected hook called once on Sleeping->Waiting, got %d", calls)
	}

	tl.Wake()
	if calls != 1 {
		t.Fatalf("expected hook not called again while already Waiting, got %d", calls)
	}
}

func TestExecuteRunsStepAndTransitions(t *testing.T) {
	var received []int
	p := &fakeProvider{queue: []int{10, 20}}

	tl := New(Config[int, int]{
		Name:     "consumer",
		Priority: 1,
		Context:  new(int),
		StepFn:   func(v int, _ *int) { received = append(received, v) },
	})
	if err := tl.Subscribe(p); err != nil {
		t.Fatalf("unexpected error subscribing: %v", err)
	}

	if !tl.HasWork() {
		t.Fatal("expected HasWork()==true with pending data")
	}

	tl.Execute()
	if len(received) != 1 || received[0] != 10 {
		t.Fatalf("expected step to run once with 10, got %v", received)
	}
	if tl.Status() != Waiting {
		t.Fatalf("expected Waiting after Execute with more work pending, got %s", tl.Status())
	}

	tl.Execute()
	if len(received) != 2 || received[1] != 20 {
		t.Fatalf("expected second step to run with 20, got %v", received)
	}
	if tl.Status() != Sleeping {
		t.Fatalf("expected Sleeping after Execute drains all work, got %s", tl.Status())
	}
}

func TestSubscribeTwiceFails(t *testing.T) {
	tl := New(Config[int, int]{Name: "t", Priority: 1, Context: new(int), StepFn: func(int, *int) {}})
	if err := tl.Subscribe(&fakeProvider{}); err != nil {
		t.Fatalf("unexpected error on first subscribe: %v", err)
	}
	if err := tl.Subscribe(&fakeProvider{}); err != ErrAlreadySubscribed {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}

func TestStatsRecordedAfterExecute(t *testing.T) {
	p := &fakeProvider{queue: []int{1}}
	tl := New(Config[int, int]{
		Name: "t", Priority: 1, Context: new(int),
		StepFn: func(int, *int) {},
		Clock:  fixedClock{},
	})
	_ = tl.Subscribe(p)
	tl.Execute()

	stats := tl.Stats()
	if stats.Count != 1 {
		t.Fatalf("expected Count=1, got %d", stats.Count)
	}
}

type fixedClock struct{}

func (fixedClock) Now() clock.Instant { return clock.FromMicros(1000) }
