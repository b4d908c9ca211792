package events

import "testing"

func TestSubscribeAndNotify(t *testing.T) {
	h := NewHub()
	calls := 0
	cancel := h.Subscribe(func() { calls++ })
	h.Notify()
	h.Notify()
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	cancel()
	h.Notify()
	if calls != 2 {
		t.Fatalf("calls after cancel = %d, want 2", calls)
	}
}

func TestSameCallbackTwice(t *testing.T) {
	h := NewHub()
	calls := 0
	fn := func() { calls++ }
	cancel1 := h.Subscribe(fn)
	cancel2 := h.Subscribe(fn)
	if h.Len() != 2 {
		t.Fatalf("len = %d, want 2", h.Len())
	}
	h.Notify()
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	cancel1()
	h.Notify()
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	cancel2()
	if h.Len() != 0 {
		t.Fatalf("len = %d, want 0", h.Len())
	}
}

func TestCancelIdempotent(t *testing.T) {
	h := NewHub()
	a := 0
	cancelA := h.Subscribe(func() { a++ })
	b := 0
	h.Subscribe(func() { b++ })
	cancelA()
	cancelA()
	h.Notify()
	if a != 0 || b != 1 {
		t.Fatalf("a=%d b=%d, want 0 and 1", a, b)
	}
}

func TestReentrantCancel(t *testing.T) {
	h := NewHub()
	calls := 0
	var cancel func()
	cancel = h.Subscribe(func() {
		calls++
		cancel()
	})
	h.Notify()
	h.Notify()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
