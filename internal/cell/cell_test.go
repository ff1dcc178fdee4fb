package cell

import (
	"sync"
	"testing"
)

func TestSetOnce(t *testing.T) {
	var c Once[int]

	if _, ok := c.Get(); ok {
		t.Fatal("expected empty cell to report not set")
	}

	if !c.Set(7) {
		t.Fatal("expected first Set to succeed")
	}
	if c.Set(8) {
		t.Fatal("expected second Set to fail")
	}

	v, ok := c.Get()
	if !ok || v != 7 {
		t.Fatalf("expected (7, true), got (%d, %v)", v, ok)
	}
	if !c.IsSet() {
		t.Error("expected IsSet to be true after a successful Set")
	}
}

func TestSetOnceConcurrent(t *testing.T) {
	var c Once[int]
	var wg sync.WaitGroup
	successes := make([]bool, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			successes[i] = c.Set(i)
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range successes {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one concurrent Set to succeed, got %d", count)
	}
}
