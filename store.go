package mvi

import "sync"

// Store holds the latest value of type T and replays it to new subscribers.
// A handler receives the current value synchronously during Subscribe,
// followed by every later Set, in order. Set and Subscribe are mutually
// exclusive, so a handler never misses or duplicates a value.
//
// Handlers run while the store is locked and must not call Set.
type Store[T any] struct {
	value   T
	subject *Subject[T]
	mu      sync.Mutex
}

// NewStore creates a store holding initial
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{
		value:   initial,
		subject: NewSubject[T](),
	}
}

// Value returns the latest value
func (s *Store[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the latest value and notifies all handlers
func (s *Store[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	s.subject.Emit(value)
}

// Subscribe replays the latest value to handler and registers it for updates
func (s *Store[T]) Subscribe(handler Handler[T]) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	callHandler(handler, s.value, s.subject.panicHandlerSnapshot())
	return s.subject.Subscribe(handler)
}

// HasSubscribers returns true if any handler is registered
func (s *Store[T]) HasSubscribers() bool {
	return s.subject.HasSubscribers()
}

// Clear removes all handlers; the latest value is kept
func (s *Store[T]) Clear() {
	s.subject.Clear()
}

// SetPanicHandler sets a function to be called when a handler panics
func (s *Store[T]) SetPanicHandler(handler PanicHandler) {
	s.subject.SetPanicHandler(handler)
}
