// Package mvi implements a unidirectional state core for interactive
// applications.
//
// A Model turns a stream of Intents into immutable ViewModel snapshots and
// one-shot Actions:
//
//	intents ──EventsFrom──▶ events ──Reduce──▶ ViewModel store ──▶ view
//	        └─ActionsFrom─▶ actions ─────────────────────────────▶ view
//
// # Features
//
// A feature plugs its behaviour in through the Feature interface:
//
//	type Counter struct{ Count int }
//
//	func (c Counter) Equal(o Counter) bool { return c == o }
//
//	type Tap struct{}
//	type Increment struct{}
//
//	type counter struct{}
//
//	func (counter) InitialViewModel() Counter { return Counter{} }
//
//	func (counter) Reduce(vm Counter, e mvi.Event) Counter {
//	    switch e.(type) {
//	    case Increment:
//	        return Counter{Count: vm.Count + 1}
//	    }
//	    return vm
//	}
//
//	func (counter) EventsFrom(in mvi.Stream[Tap]) mvi.Stream[mvi.Event] {
//	    return mvi.Map(in, func(Tap) mvi.Event { return Increment{} })
//	}
//
//	func (counter) ActionsFrom(in mvi.Stream[Tap]) mvi.Stream[string] {
//	    return mvi.Never[string]()
//	}
//
// # Lifecycle
//
// Attach subscribes the model to an intent stream; Detach releases every
// subscription of that attachment. At most one attachment is active; a
// second Attach fails with ErrAlreadyAttached. Close releases the model for
// good.
//
// # Delivery
//
// ViewModel replays the latest snapshot to each new subscriber. Actions
// replays nothing. Both deliver on the model's Dispatcher, a Loop by default,
// so observers never run concurrently with each other.
//
// # Failures
//
// Reduce is total; a panicking reducer leaves the ViewModel unchanged.
// Mapping failures become events through MapErr, or through a Feature
// implementing FailureMapper. Failures show up as ordinary ViewModel content,
// typically a Failure ViewState.
package mvi
