package core

import "testing"

type fakeReleasable struct{ released *bool }

func (f *fakeReleasable) Release() { *f.released = true }

func TestEventSignalsInReverseInsertionOrder(t *testing.T) {
	var e Event[int]
	var order []int
	e.Bind(func(v int) { order = append(order, v) }, Borrowed, nil)
	e.Bind(func(v int) { order = append(order, v+10) }, Borrowed, nil)
	e.Bind(func(v int) { order = append(order, v+20) }, Borrowed, nil)

	e.Signal(1)

	want := []int{21, 11, 1}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestEventUnbindOwnedReleases(t *testing.T) {
	var e Event[int]
	released := false
	token := e.Bind(func(int) {}, Owned, &fakeReleasable{released: &released})
	e.Unbind(token)
	if !released {
		t.Fatal("Unbind did not release an Owned listener")
	}
	if e.Len() != 0 {
		t.Fatalf("Len after unbind: got %d, want 0", e.Len())
	}
}

func TestEventUnbindByIdentityNotPosition(t *testing.T) {
	var e Event[int]
	var order []int
	tokenF0 := e.Bind(func(int) { order = append(order, 0) }, Borrowed, nil)
	tokenF1 := e.Bind(func(int) { order = append(order, 1) }, Borrowed, nil)
	e.Bind(func(int) { order = append(order, 2) }, Borrowed, nil)

	e.Unbind(tokenF0)
	e.Unbind(tokenF1)

	if e.Len() != 1 {
		t.Fatalf("Len after unbinding f0 and f1: got %d, want 1", e.Len())
	}
	order = nil
	e.Signal(0)
	if len(order) != 1 || order[0] != 2 {
		t.Fatalf("only f2 should remain bound, got %v", order)
	}
}

func TestEventUnbindDuringSignalIsSafe(t *testing.T) {
	var e Event[int]
	e.Bind(func(int) {}, Borrowed, nil)
	var tokenB Token[int]
	tokenB = e.Bind(func(int) { e.Unbind(tokenB) }, Borrowed, nil)
	e.Bind(func(int) {}, Borrowed, nil)

	// Must not panic or skip delivering to remaining listeners.
	e.Signal(0)
	if e.Len() != 2 {
		t.Fatalf("Len after self-unbind during Signal: got %d, want 2", e.Len())
	}
}
