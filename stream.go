package mvi

import "sync"

// Stream is a source of values that handlers can subscribe to.
// Streams built with the operators below are lazy: subscribing to a derived
// stream subscribes to its source, and unsubscribing releases the source.
type Stream[T any] interface {
	Subscribe(handler Handler[T]) Subscription
}

// StreamFunc adapts a subscribe function to the Stream interface
type StreamFunc[T any] func(handler Handler[T]) Subscription

// Subscribe implements Stream
func (f StreamFunc[T]) Subscribe(handler Handler[T]) Subscription {
	return f(handler)
}

// Map transforms every value of src with fn
func Map[T, R any](src Stream[T], fn func(T) R) Stream[R] {
	return StreamFunc[R](func(handler Handler[R]) Subscription {
		return src.Subscribe(func(v T) {
			handler(fn(v))
		})
	})
}

// MapErr transforms every value of src with fn. When fn fails, the error is
// turned into a value with fallback instead of ending the stream.
//
// Example:
//
//	events := mvi.MapErr(intents, parseQuery, func(err error) mvi.Event {
//	    return QueryFailed{Message: err.Error()}
//	})
func MapErr[T, R any](src Stream[T], fn func(T) (R, error), fallback func(error) R) Stream[R] {
	return StreamFunc[R](func(handler Handler[R]) Subscription {
		return src.Subscribe(func(v T) {
			r, err := fn(v)
			if err != nil {
				handler(fallback(err))
				return
			}
			handler(r)
		})
	})
}

// FlatMap maps every value of src to zero, one or many values
func FlatMap[T, R any](src Stream[T], fn func(T) []R) Stream[R] {
	return StreamFunc[R](func(handler Handler[R]) Subscription {
		return src.Subscribe(func(v T) {
			for _, r := range fn(v) {
				handler(r)
			}
		})
	})
}

// Filter passes through the values of src for which keep returns true
func Filter[T any](src Stream[T], keep func(T) bool) Stream[T] {
	return StreamFunc[T](func(handler Handler[T]) Subscription {
		return src.Subscribe(func(v T) {
			if keep(v) {
				handler(v)
			}
		})
	})
}

// Merge combines several streams into one
func Merge[T any](srcs ...Stream[T]) Stream[T] {
	return StreamFunc[T](func(handler Handler[T]) Subscription {
		subs := NewDisposables()
		for _, src := range srcs {
			subs.Add(src.Subscribe(handler))
		}
		return NewSubscription(subs.Dispose)
	})
}

// Never returns a stream that never emits
func Never[T any]() Stream[T] {
	return StreamFunc[T](func(Handler[T]) Subscription {
		return NewSubscription(nil)
	})
}

// Just returns a cold stream emitting values to every subscriber,
// synchronously inside Subscribe
func Just[T any](values ...T) Stream[T] {
	return FromSlice(values)
}

// FromSlice returns a cold stream emitting the elements of values in order
func FromSlice[T any](values []T) Stream[T] {
	return StreamFunc[T](func(handler Handler[T]) Subscription {
		for _, v := range values {
			handler(v)
		}
		return NewSubscription(nil)
	})
}

// FromChan returns a stream reading values from ch on a goroutine started by
// each Subscribe. Unsubscribe stops the reader and waits for it to exit, so
// it must not be called from inside the handler. Values left in ch after
// Unsubscribe are not consumed.
func FromChan[T any](ch <-chan T) Stream[T] {
	return StreamFunc[T](func(handler Handler[T]) Subscription {
		stop := make(chan struct{})
		done := make(chan struct{})

		go func() {
			defer close(done)
			for {
				select {
				case <-stop:
					return
				case v, ok := <-ch:
					if !ok {
						return
					}
					// Unsubscribe may have raced with the receive
					select {
					case <-stop:
						return
					default:
					}
					handler(v)
				}
			}
		}()

		var once sync.Once
		return NewSubscription(func() {
			once.Do(func() { close(stop) })
			<-done
		})
	})
}
