package mvi

import "testing"

func TestNewSubscriptionRunsOnce(t *testing.T) {
	calls := 0
	sub := NewSubscription(func() { calls++ })

	sub.Unsubscribe()
	sub.Unsubscribe()

	if calls != 1 {
		t.Errorf("cancel func ran %d times, want 1", calls)
	}

	// nil func is allowed
	NewSubscription(nil).Unsubscribe()
}

func TestDisposablesClear(t *testing.T) {
	d := NewDisposables()
	var order []int

	for i := 0; i < 3; i++ {
		i := i
		d.Add(NewSubscription(func() { order = append(order, i) }))
	}
	d.Add(nil)

	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}

	d.Clear()

	if !equalInts(order, []int{2, 1, 0}) {
		t.Errorf("cancelled in order %v, want [2 1 0]", order)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d after Clear", d.Len())
	}

	// Still usable after Clear
	cancelled := false
	d.Add(NewSubscription(func() { cancelled = true }))
	if cancelled || d.Len() != 1 {
		t.Error("bag unusable after Clear")
	}
}

func TestDisposablesDispose(t *testing.T) {
	d := NewDisposables()
	first := false
	d.Add(NewSubscription(func() { first = true }))

	d.Dispose()
	d.Dispose()

	if !first || !d.IsDisposed() {
		t.Fatal("Dispose did not cancel held subscriptions")
	}

	late := false
	d.Add(NewSubscription(func() { late = true }))
	if !late {
		t.Error("subscription added after Dispose was not cancelled")
	}
	if d.Len() != 0 {
		t.Errorf("disposed bag holds %d subscriptions", d.Len())
	}
}
