package event

import "testing"

type fakeWaker struct{ wakes int }

func (f *fakeWaker) Wake() { f.wakes++ }

func TestEmitSetsBitAndWakesOwner(t *testing.T) {
	owner := &fakeWaker{}
	set := NewSet(owner)
	evt := New(3, 2)
	_ = evt.AddSet(set)

	evt.Emit()

	if owner.wakes != 1 {
		t.Fatalf("expected owner woken once, got %d", owner.wakes)
	}
	if !set.DataReady() {
		t.Fatal("expected set to report DataReady() after emit")
	}

	id, ok := set.GetData()
	if !ok || id != 3 {
		t.Fatalf("expected (3, true), got (%d, %v)", id, ok)
	}
	if set.DataReady() {
		t.Fatal("expected set to be empty after draining its only pending id")
	}
}

func TestGetDataReturnsLowestPendingID(t *testing.T) {
	owner := &fakeWaker{}
	set := NewSet(owner)
	low := New(2, 1)
	high := New(9, 1)
	_ = low.AddSet(set)
	_ = high.AddSet(set)

	high.Emit()
	low.Emit()

	id, ok := set.GetData()
	if !ok || id != 2 {
		t.Fatalf("expected lowest pending id 2 first, got (%d, %v)", id, ok)
	}
	id, ok = set.GetData()
	if !ok || id != 9 {
		t.Fatalf("expected id 9 second, got (%d, %v)", id, ok)
	}
}

func TestAddSetFullReturnsError(t *testing.T) {
	evt := New(1, 1)
	if err := evt.AddSet(NewSet(nil)); err != nil {
		t.Fatalf("unexpected error on first AddSet: %v", err)
	}
	if err := evt.AddSet(NewSet(nil)); err == nil {
		t.Fatal("expected an error when exceeding the configured set capacity")
	}
}

func TestEmitWithNoSetsDoesNotPanic(t *testing.T) {
	evt := New(5, 1)
	evt.Emit()
}
