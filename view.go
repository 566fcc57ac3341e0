package mvi

// View is the rendering side of a feature. It supplies intents and observes
// ViewModels and actions on the model's delivery context.
type View[VM any, I any, A any] interface {
	// Intents returns the stream of user intents. It may be infinite and is
	// subscribed again each time the view is bound.
	Intents() Stream[I]

	// Attach hands the view its output streams
	Attach(viewModel Stream[VM], actions Stream[A])
}

// Bind attaches view to the model's output, then the model to the view's
// intents. Observers are registered first so no action is missed. If the
// model cannot be attached, the subscriptions the view made are cancelled
// before the error is returned.
//
// Example:
//
//	model := mvi.New[CounterVM, Intent, Action](counter{})
//	if err := mvi.Bind(model, view); err != nil {
//	    return err
//	}
//	defer model.Detach()
func Bind[VM Equatable[VM], I comparable, A comparable](model *Model[VM, I, A], view View[VM, I, A]) error {
	if model.closed.Load() {
		return ErrClosed
	}
	if model.Attached() {
		return ErrAlreadyAttached
	}

	subs := NewDisposables()
	view.Attach(tracked(model.ViewModel(), subs), tracked(model.Actions(), subs))

	if err := model.Attach(view.Intents()); err != nil {
		subs.Dispose()
		return err
	}
	return nil
}

// tracked records every subscription made to src in subs
func tracked[T any](src Stream[T], subs *Disposables) Stream[T] {
	return StreamFunc[T](func(handler Handler[T]) Subscription {
		sub := src.Subscribe(handler)
		subs.Add(sub)
		return sub
	})
}
