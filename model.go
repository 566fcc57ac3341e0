package mvi

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Event is an application defined fact consumed only by Feature.Reduce
type Event any

// Equatable is implemented by values with value equality
type Equatable[T any] interface {
	Equal(other T) bool
}

// Feature supplies the per-feature behaviour of a Model.
//
// Reduce must be total: events it does not recognise return vm unchanged.
// EventsFrom and ActionsFrom are stream transforms; each intent may produce
// zero, one or many events or actions. Failures inside them should become
// events (see MapErr) rather than panics.
type Feature[VM Equatable[VM], I comparable, A comparable] interface {
	InitialViewModel() VM
	Reduce(vm VM, event Event) VM
	EventsFrom(intents Stream[I]) Stream[Event]
	ActionsFrom(intents Stream[I]) Stream[A]
}

// FailureMapper is optionally implemented by a Feature. When a mapping stage
// panics, the recovered error is folded as the event it returns.
type FailureMapper interface {
	FailureEvent(err error) Event
}

// Model turns an Intent stream into ViewModel snapshots and one-shot Actions.
//
// Events from the attached intents and from DispatchEvent are serialised
// through a single fold point, so the ViewModel observed after events A then
// B is always Reduce(Reduce(vm, A), B). Output is delivered on the model's
// Dispatcher.
type Model[VM Equatable[VM], I comparable, A comparable] struct {
	feature    Feature[VM, I, A]
	cfg        *config
	dispatcher Dispatcher
	ownLoop    *Loop

	events  *Subject[Event]
	actions *Subject[A]
	store   *Store[VM]
	foldMu  sync.Mutex

	// disposables holds the subscriptions of the current attachment
	disposables *Disposables
	mu          sync.Mutex
	attached    atomic.Bool
	closed      atomic.Bool

	// epoch advances on every detach; notifications queued under an older
	// epoch are dropped before delivery
	epoch atomic.Uint64
}

// New creates a Model for feature
func New[VM Equatable[VM], I comparable, A comparable](feature Feature[VM, I, A], opts ...Option) *Model[VM, I, A] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Model[VM, I, A]{
		feature:     feature,
		cfg:         cfg,
		dispatcher:  cfg.dispatcher,
		events:      NewSubject[Event](),
		actions:     NewSubject[A](),
		store:       NewStore(feature.InitialViewModel()),
		disposables: NewDisposables(),
	}

	if m.dispatcher == nil {
		m.ownLoop = NewLoop()
		m.ownLoop.SetPanicHandler(m.onPanic("observer"))
		m.dispatcher = m.ownLoop
	}

	m.events.SetPanicHandler(m.onPanic("event"))
	m.actions.SetPanicHandler(m.onPanic("action"))
	m.store.SetPanicHandler(m.onPanic("viewmodel"))

	return m
}

// Attach starts consuming intents. The subscription is established before
// Attach returns; events and actions derived from intents flow until Detach.
// Attaching an attached model returns ErrAlreadyAttached.
func (m *Model[VM, I, A]) Attach(intents Stream[I]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed.Load() {
		return ErrClosed
	}
	if m.attached.Load() {
		return ErrAlreadyAttached
	}

	ep := m.epoch.Load()

	// Shared so that EventsFrom and ActionsFrom see each intent exactly once
	// even when intents is a single-consumer source such as FromChan.
	shared := NewSubject[I]()
	shared.SetPanicHandler(m.onMappingPanic)

	m.disposables.Add(m.events.Subscribe(func(e Event) {
		m.fold(ep, e)
	}))
	m.disposables.Add(m.feature.EventsFrom(shared).Subscribe(m.events.Emit))
	m.disposables.Add(m.feature.ActionsFrom(shared).Subscribe(func(a A) {
		m.publishAction(ep, a)
	}))
	m.disposables.Add(NewSubscription(shared.Clear))
	m.attached.Store(true)

	// Subscribed last: a synchronous source may emit right away
	m.disposables.Add(intents.Subscribe(shared.Emit))

	m.cfg.observability.OnLifecycle(context.Background(), m.cfg.name, LifecycleAttach)
	m.cfg.logger.Debug("model attached", "model", m.cfg.name)
	return nil
}

// Detach cancels every subscription created by Attach. It is synchronous and
// idempotent: once it returns no further notification of the attachment is
// started on the delivery context, and calling it while detached is a no-op.
func (m *Model[VM, I, A]) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.detachLocked()
}

func (m *Model[VM, I, A]) detachLocked() {
	if !m.attached.Load() {
		return
	}

	m.disposables.Clear()

	// Waits for an in-flight fold or action publish of this attachment
	m.foldMu.Lock()
	m.epoch.Add(1)
	m.foldMu.Unlock()

	m.attached.Store(false)

	m.cfg.observability.OnLifecycle(context.Background(), m.cfg.name, LifecycleDetach)
	m.cfg.logger.Debug("model detached", "model", m.cfg.name)
}

// Close detaches the model and releases it permanently. Observers are
// dropped and an owned delivery loop is stopped. Close is idempotent.
func (m *Model[VM, I, A]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed.Load() {
		return
	}

	m.detachLocked()
	m.closed.Store(true)
	m.disposables.Dispose()

	m.events.Clear()
	m.actions.Clear()
	m.store.Clear()

	if m.ownLoop != nil {
		m.ownLoop.Close()
	}

	m.cfg.observability.OnLifecycle(context.Background(), m.cfg.name, LifecycleClose)
	m.cfg.logger.Debug("model closed", "model", m.cfg.name)
}

// Attached reports whether an attachment is active
func (m *Model[VM, I, A]) Attached() bool {
	return m.attached.Load()
}

// DispatchEvent folds event without going through intent mapping, for events
// from side channels such as completed background work. Events dispatched
// while detached are dropped and ErrNotAttached is returned.
func (m *Model[VM, I, A]) DispatchEvent(event Event) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.attached.Load() {
		return ErrNotAttached
	}

	m.events.Emit(event)
	return nil
}

// ViewModel returns a stream that replays the latest ViewModel to each new
// subscriber, then delivers every later ViewModel in fold order.
func (m *Model[VM, I, A]) ViewModel() Stream[VM] {
	return StreamFunc[VM](func(handler Handler[VM]) Subscription {
		var cancelled atomic.Bool
		sub := m.store.Subscribe(func(vm VM) {
			m.deliver(&cancelled, func() { handler(vm) })
		})
		return NewSubscription(func() {
			cancelled.Store(true)
			sub.Unsubscribe()
		})
	})
}

// Actions returns a stream of actions published after the subscription was
// made. Nothing is replayed.
func (m *Model[VM, I, A]) Actions() Stream[A] {
	return StreamFunc[A](func(handler Handler[A]) Subscription {
		var cancelled atomic.Bool
		sub := m.actions.Subscribe(func(a A) {
			m.deliver(&cancelled, func() { handler(a) })
		})
		return NewSubscription(func() {
			cancelled.Store(true)
			sub.Unsubscribe()
		})
	})
}

// Current returns the latest ViewModel
func (m *Model[VM, I, A]) Current() VM {
	return m.store.Value()
}

// deliver queues fn on the delivery context, stamped with the current epoch
func (m *Model[VM, I, A]) deliver(cancelled *atomic.Bool, fn func()) {
	ep := m.epoch.Load()
	m.dispatcher.Dispatch(func() {
		if cancelled.Load() || m.epoch.Load() != ep {
			return
		}
		fn()
	})
}

// fold applies event to the current ViewModel and publishes the result.
// Publication happens under foldMu so it follows acceptance order.
func (m *Model[VM, I, A]) fold(ep uint64, event Event) {
	m.foldMu.Lock()
	defer m.foldMu.Unlock()

	if m.epoch.Load() != ep {
		return
	}

	eventType := EventType(event)
	ctx := m.cfg.observability.OnEvent(context.Background(), m.cfg.name, eventType)
	start := time.Now()

	prev := m.store.Value()
	next, err := m.reduce(prev, event)
	m.cfg.observability.OnFoldComplete(ctx, time.Since(start), err)

	if err != nil {
		m.cfg.logger.Error("reduce failed, keeping previous view model",
			"model", m.cfg.name, "event", eventType, "error", err)
		return
	}
	if m.cfg.distinct && next.Equal(prev) {
		return
	}

	m.store.Set(next)
}

// publishAction hands a to action observers. It shares foldMu with the fold,
// so Detach waits for an in-flight publish and observers never see an action
// of an attachment that has already been detached.
func (m *Model[VM, I, A]) publishAction(ep uint64, a A) {
	m.foldMu.Lock()
	defer m.foldMu.Unlock()

	if m.epoch.Load() != ep {
		return
	}
	m.cfg.observability.OnAction(context.Background(), m.cfg.name, EventType(a))
	m.actions.Emit(a)
}

// reduce calls Feature.Reduce, turning a panic into the identity transition
func (m *Model[VM, I, A]) reduce(vm VM, event Event) (next VM, err error) {
	defer func() {
		if r := recover(); r != nil {
			if m.cfg.panicHandler != nil {
				m.cfg.panicHandler(event, r)
			}
			next, err = vm, fmt.Errorf("%w in reduce: %v", ErrPanic, r)
		}
	}()

	return m.feature.Reduce(vm, event), nil
}

func (m *Model[VM, I, A]) onMappingPanic(intent any, panicValue any) {
	if m.cfg.panicHandler != nil {
		m.cfg.panicHandler(intent, panicValue)
	}

	err := fmt.Errorf("%w in intent mapping: %v", ErrPanic, panicValue)
	m.cfg.logger.Error("intent mapping failed",
		"model", m.cfg.name, "intent", EventType(intent), "error", err)

	if fm, ok := m.feature.(FailureMapper); ok {
		m.events.Emit(fm.FailureEvent(err))
	}
}

func (m *Model[VM, I, A]) onPanic(stage string) PanicHandler {
	return func(value any, panicValue any) {
		if m.cfg.panicHandler != nil {
			m.cfg.panicHandler(value, panicValue)
		}
		m.cfg.logger.Error("handler panicked",
			"model", m.cfg.name, "stage", stage, "panic", fmt.Sprint(panicValue))
	}
}
