package mvi

import "sync"

// Subscription cancels the delivery of values to one handler.
// Unsubscribe is idempotent. Once it returns, the source that produced the
// subscription never invokes the handler again.
type Subscription interface {
	Unsubscribe()
}

type funcSubscription struct {
	once sync.Once
	fn   func()
}

func (s *funcSubscription) Unsubscribe() {
	s.once.Do(func() {
		if s.fn != nil {
			s.fn()
		}
	})
}

// NewSubscription wraps fn so that it runs at most once
func NewSubscription(fn func()) Subscription {
	return &funcSubscription{fn: fn}
}

// Disposables is a bag of subscriptions that are cancelled together.
// Clear cancels everything and leaves the bag usable; Dispose cancels
// everything and makes the bag cancel any subscription added later.
type Disposables struct {
	subs     []Subscription
	disposed bool
	mu       sync.Mutex
}

// NewDisposables creates an empty bag
func NewDisposables() *Disposables {
	return &Disposables{}
}

// Add stores a subscription in the bag.
// If the bag is already disposed the subscription is cancelled immediately.
func (d *Disposables) Add(sub Subscription) {
	if sub == nil {
		return
	}

	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	d.subs = append(d.subs, sub)
	d.mu.Unlock()
}

// Len returns the number of live subscriptions held by the bag
func (d *Disposables) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Clear cancels all held subscriptions, most recently added first
func (d *Disposables) Clear() {
	d.mu.Lock()
	subs := d.subs
	d.subs = nil
	d.mu.Unlock()

	for i := len(subs) - 1; i >= 0; i-- {
		subs[i].Unsubscribe()
	}
}

// Dispose cancels all held subscriptions and marks the bag as disposed
func (d *Disposables) Dispose() {
	d.mu.Lock()
	d.disposed = true
	d.mu.Unlock()

	d.Clear()
}

// IsDisposed reports whether Dispose has been called
func (d *Disposables) IsDisposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}
