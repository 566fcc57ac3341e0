package mvi

import (
	"fmt"
	"sync"
	"testing"
)

// Benchmark events
type BenchmarkEvent struct {
	ID    int
	Value string
}

// Benchmark basic emit/subscribe on a Subject
func BenchmarkSubjectEmit(b *testing.B) {
	s := NewSubject[BenchmarkEvent]()
	received := 0
	s.Subscribe(func(evt BenchmarkEvent) {
		received += evt.ID
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Emit(BenchmarkEvent{ID: i, Value: "test"})
	}
	_ = received
}

// Benchmark concurrent emitters
func BenchmarkConcurrentEmit(b *testing.B) {
	benchmarks := []int{1, 10, 100}

	for _, numEmitters := range benchmarks {
		b.Run(fmt.Sprintf("emitters-%d", numEmitters), func(b *testing.B) {
			s := NewSubject[BenchmarkEvent]()
			s.Subscribe(func(evt BenchmarkEvent) {})

			b.ResetTimer()
			var wg sync.WaitGroup
			perEmitter := b.N / numEmitters
			if perEmitter == 0 {
				perEmitter = 1
			}

			for p := 0; p < numEmitters; p++ {
				wg.Add(1)
				go func(id int) {
					defer wg.Done()
					for i := 0; i < perEmitter; i++ {
						s.Emit(BenchmarkEvent{ID: i, Value: "emitter"})
					}
				}(p)
			}
			wg.Wait()
		})
	}
}

// Benchmark fan out to many subscribers
func BenchmarkMultipleSubscribers(b *testing.B) {
	benchmarks := []int{1, 10, 100, 1000}

	for _, numSubscribers := range benchmarks {
		b.Run(fmt.Sprintf("subscribers-%d", numSubscribers), func(b *testing.B) {
			s := NewSubject[BenchmarkEvent]()
			for i := 0; i < numSubscribers; i++ {
				s.Subscribe(func(evt BenchmarkEvent) {})
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.Emit(BenchmarkEvent{ID: i, Value: "test"})
			}
		})
	}
}

// Benchmark handler registration/deregistration
func BenchmarkSubscribeUnsubscribe(b *testing.B) {
	s := NewSubject[BenchmarkEvent]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sub := s.Subscribe(func(evt BenchmarkEvent) {})
		sub.Unsubscribe()
	}
}

// Benchmark the store's replay on subscribe
func BenchmarkStoreSubscribe(b *testing.B) {
	st := NewStore(BenchmarkEvent{ID: 1, Value: "latest"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sub := st.Subscribe(func(evt BenchmarkEvent) {})
		sub.Unsubscribe()
	}
}

// Benchmark the fold path: intent -> event -> reduce -> publish
func BenchmarkModelFold(b *testing.B) {
	m := New[counterVM, counterIntent, counterAction](counterFeature{},
		WithDispatcher(DispatcherFunc(func(fn func()) { fn() })),
	)
	defer m.Close()

	intents := NewSubject[counterIntent]()
	if err := m.Attach(intents); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		intents.Emit(tapIntent)
	}
}

// Benchmark the fold path with a ViewModel observer on the loop
func BenchmarkModelFoldObserved(b *testing.B) {
	loop := NewLoop()
	defer loop.Close()

	m := New[counterVM, counterIntent, counterAction](counterFeature{}, WithDispatcher(loop))
	defer m.Close()
	m.ViewModel().Subscribe(func(counterVM) {})

	intents := NewSubject[counterIntent]()
	if err := m.Attach(intents); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		intents.Emit(tapIntent)
	}
	loop.Wait()
}

// Benchmark the loop's dispatch throughput
func BenchmarkLoopDispatch(b *testing.B) {
	loop := NewLoop()
	defer loop.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		loop.Dispatch(func() {})
	}
	loop.Wait()
}
