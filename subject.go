package mvi

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Handler is a generic value handler function
type Handler[T any] func(T)

// PanicHandler is called when a handler panics.
// value is the value being delivered, or nil when there is none.
type PanicHandler func(value any, panicValue any)

// internalHandler wraps a handler with metadata
type internalHandler[T any] struct {
	fn        Handler[T]
	once      bool
	executed  int32 // For once handlers, atomically tracks if executed
	cancelled atomic.Bool
}

// Subject is a hot multicast stream of values of type T.
// Handlers only receive values emitted after they subscribe; nothing is
// replayed. Handlers run synchronously on the goroutine calling Emit.
type Subject[T any] struct {
	handlers     []*internalHandler[T]
	panicHandler PanicHandler
	mu           sync.RWMutex
}

// NewSubject creates a new Subject
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe registers a handler for values emitted from now on
func (s *Subject[T]) Subscribe(handler Handler[T]) Subscription {
	return s.subscribe(&internalHandler[T]{fn: handler})
}

// SubscribeOnce registers a handler that is called for the next value only
func (s *Subject[T]) SubscribeOnce(handler Handler[T]) Subscription {
	return s.subscribe(&internalHandler[T]{fn: handler, once: true})
}

func (s *Subject[T]) subscribe(h *internalHandler[T]) Subscription {
	s.mu.Lock()
	s.handlers = append(s.handlers, h)
	s.mu.Unlock()

	return NewSubscription(func() {
		h.cancelled.Store(true)
		s.remove(h)
	})
}

// Emit sends a value to all registered handlers in subscription order
func (s *Subject[T]) Emit(value T) {
	s.mu.RLock()
	if len(s.handlers) == 0 {
		s.mu.RUnlock()
		return
	}

	// Copy handlers slice to avoid holding lock during execution
	handlersCopy := make([]*internalHandler[T], len(s.handlers))
	copy(handlersCopy, s.handlers)
	panicHandler := s.panicHandler
	s.mu.RUnlock()

	// Track handlers to remove (for once handlers)
	var toRemove []*internalHandler[T]

	for _, h := range handlersCopy {
		if h.cancelled.Load() {
			continue
		}

		if h.once {
			if !atomic.CompareAndSwapInt32(&h.executed, 0, 1) {
				continue
			}
			toRemove = append(toRemove, h)
		}

		callHandler(h.fn, value, panicHandler)
	}

	if len(toRemove) > 0 {
		s.remove(toRemove...)
	}
}

// callHandler executes a handler, reporting a panic instead of propagating it
func callHandler[T any](fn Handler[T], value T, panicHandler PanicHandler) {
	defer func() {
		if r := recover(); r != nil {
			if panicHandler != nil {
				panicHandler(value, r)
			}
		}
	}()

	fn(value)
}

func (s *Subject[T]) remove(toRemove ...*internalHandler[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create a new slice so in-flight copies stay valid
	newHandlers := make([]*internalHandler[T], 0, len(s.handlers))
	for _, h := range s.handlers {
		shouldRemove := false
		for _, r := range toRemove {
			if h == r {
				shouldRemove = true
				break
			}
		}
		if !shouldRemove {
			newHandlers = append(newHandlers, h)
		}
	}
	s.handlers = newHandlers
}

// HasSubscribers returns true if any handler is registered
func (s *Subject[T]) HasSubscribers() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers) > 0
}

// Clear removes all handlers
func (s *Subject[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.handlers {
		h.cancelled.Store(true)
	}
	s.handlers = nil
}

// SetPanicHandler sets a function to be called when a handler panics
func (s *Subject[T]) SetPanicHandler(handler PanicHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.panicHandler = handler
}

func (s *Subject[T]) panicHandlerSnapshot() PanicHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.panicHandler
}

// EventType returns the type name of a value, as used in logs and telemetry
func EventType(value any) string {
	if value == nil {
		return "<nil>"
	}
	return reflect.TypeOf(value).String()
}
