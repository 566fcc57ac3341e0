package mvi

import "sync"

// Dispatcher is the designated delivery context for a Model's output.
// Implementations must run dispatched functions one at a time, in the order
// they were dispatched, and Dispatch must not block on the functions running.
//
// Dispatch is called while the model holds its fold lock. A dispatcher that
// runs fn before returning therefore deadlocks as soon as an observer calls
// back into the model (DispatchEvent, or an intent feeding the attachment).
// Such dispatchers are only usable with observers that never do.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
// The function must hand fn off to another goroutine or queue unless the
// model's observers never call back into it (see Dispatcher).
type DispatcherFunc func(fn func())

// Dispatch implements Dispatcher
func (f DispatcherFunc) Dispatch(fn func()) {
	f(fn)
}

// Loop is a single goroutine FIFO executor with an unbounded queue.
// Dispatch never blocks, so a function running on the loop may dispatch
// more work without deadlocking.
type Loop struct {
	queue        []func()
	busy         bool
	closed       bool
	panicHandler PanicHandler
	mu           sync.Mutex
	cond         *sync.Cond
	done         chan struct{}
}

// NewLoop creates a loop and starts its goroutine
func NewLoop() *Loop {
	l := &Loop{
		done: make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)

	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if l.closed {
			l.queue = nil
			l.mu.Unlock()
			l.cond.Broadcast()
			return
		}

		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.busy = true
		panicHandler := l.panicHandler
		l.mu.Unlock()

		l.execute(fn, panicHandler)

		l.mu.Lock()
		l.busy = false
		idle := len(l.queue) == 0
		l.mu.Unlock()
		if idle {
			l.cond.Broadcast()
		}
	}
}

func (l *Loop) execute(fn func(), panicHandler PanicHandler) {
	defer func() {
		if r := recover(); r != nil {
			if panicHandler != nil {
				panicHandler(nil, r)
			}
		}
	}()

	fn()
}

// Dispatch queues fn. Functions dispatched after Close are dropped.
func (l *Loop) Dispatch(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	l.cond.Broadcast()
}

// Wait blocks until the queue is drained and nothing is running.
// It must not be called from a function running on the loop.
func (l *Loop) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for (len(l.queue) > 0 || l.busy) && !l.closed {
		l.cond.Wait()
	}
}

// Close stops the loop. Queued functions that have not started are dropped;
// a function already running completes. Close does not wait for the goroutine
// to exit, so it is safe to call from the loop itself.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.cond.Broadcast()
}

// Done returns a channel closed once the loop goroutine has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// SetPanicHandler sets a function to be called when a dispatched function panics
func (l *Loop) SetPanicHandler(handler PanicHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.panicHandler = handler
}
