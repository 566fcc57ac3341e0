package mvi

import (
	"sync"
	"sync/atomic"
	"testing"
)

// Test value types
type UserEvent struct {
	UserID string
	Action string
}

type OrderEvent struct {
	OrderID string
	Amount  float64
}

func TestNewSubject(t *testing.T) {
	s := NewSubject[UserEvent]()
	if s == nil {
		t.Fatal("NewSubject() returned nil")
	}
	if s.HasSubscribers() {
		t.Error("new subject has subscribers")
	}
}

func TestEventType(t *testing.T) {
	tests := []struct {
		name     string
		event    any
		expected string
	}{
		{
			name:     "user event struct",
			event:    UserEvent{UserID: "123"},
			expected: "mvi.UserEvent",
		},
		{
			name:     "pointer to user event",
			event:    &UserEvent{UserID: "456"},
			expected: "*mvi.UserEvent",
		},
		{
			name:     "int",
			event:    42,
			expected: "int",
		},
		{
			name:     "slice",
			event:    []string{"a", "b"},
			expected: "[]string",
		},
		{
			name:     "nil",
			event:    nil,
			expected: "<nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EventType(tt.event)
			if result != tt.expected {
				t.Errorf("EventType() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSubscribeAndEmit(t *testing.T) {
	s := NewSubject[UserEvent]()
	received := false

	s.Subscribe(func(event UserEvent) {
		if event.UserID != "123" || event.Action != "login" {
			t.Errorf("Unexpected event: %+v", event)
		}
		received = true
	})

	s.Emit(UserEvent{UserID: "123", Action: "login"})

	if !received {
		t.Error("Handler was not called")
	}
}

func TestEmitWithoutSubscribers(t *testing.T) {
	s := NewSubject[OrderEvent]()
	s.Emit(OrderEvent{OrderID: "1"})
}

func TestSubscribeOrder(t *testing.T) {
	s := NewSubject[int]()
	var order []string

	s.Subscribe(func(int) { order = append(order, "first") })
	s.Subscribe(func(int) { order = append(order, "second") })
	s.Subscribe(func(int) { order = append(order, "third") })

	s.Emit(1)

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("handlers ran in order %v", order)
	}
}

func TestSubscribeOnce(t *testing.T) {
	s := NewSubject[UserEvent]()
	var callCount int32

	s.SubscribeOnce(func(event UserEvent) {
		atomic.AddInt32(&callCount, 1)
	})

	s.Emit(UserEvent{UserID: "123", Action: "login"})
	s.Emit(UserEvent{UserID: "456", Action: "logout"})

	if count := atomic.LoadInt32(&callCount); count != 1 {
		t.Errorf("Handler called %d times, expected 1", count)
	}
	if s.HasSubscribers() {
		t.Error("once handler not removed after execution")
	}
}

func TestSubscribeOnceConcurrent(t *testing.T) {
	s := NewSubject[int]()
	var callCount int32

	s.SubscribeOnce(func(int) {
		atomic.AddInt32(&callCount, 1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Emit(i)
		}(i)
	}
	wg.Wait()

	if count := atomic.LoadInt32(&callCount); count != 1 {
		t.Errorf("Handler called %d times, expected 1", count)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewSubject[UserEvent]()
	var callCount int32

	sub := s.Subscribe(func(event UserEvent) {
		atomic.AddInt32(&callCount, 1)
	})

	s.Emit(UserEvent{UserID: "1"})
	sub.Unsubscribe()
	sub.Unsubscribe()
	s.Emit(UserEvent{UserID: "2"})

	if count := atomic.LoadInt32(&callCount); count != 1 {
		t.Errorf("Handler called %d times, expected 1", count)
	}
	if s.HasSubscribers() {
		t.Error("handler still registered after Unsubscribe")
	}
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	s := NewSubject[int]()
	var secondCalls int32
	var second Subscription

	s.Subscribe(func(int) {
		second.Unsubscribe()
	})
	second = s.Subscribe(func(int) {
		atomic.AddInt32(&secondCalls, 1)
	})

	s.Emit(1)

	if count := atomic.LoadInt32(&secondCalls); count != 0 {
		t.Errorf("unsubscribed handler called %d times during the same emit", count)
	}
}

func TestHasSubscribers(t *testing.T) {
	s := NewSubject[UserEvent]()

	if s.HasSubscribers() {
		t.Error("Expected no handlers initially")
	}

	s.Subscribe(func(event UserEvent) {})

	if !s.HasSubscribers() {
		t.Error("Expected handlers after subscription")
	}
}

func TestClear(t *testing.T) {
	s := NewSubject[UserEvent]()
	var callCount int32

	s.Subscribe(func(event UserEvent) { atomic.AddInt32(&callCount, 1) })
	s.Subscribe(func(event UserEvent) { atomic.AddInt32(&callCount, 1) })

	s.Clear()
	s.Emit(UserEvent{UserID: "1"})

	if s.HasSubscribers() {
		t.Error("Expected no handlers after Clear")
	}
	if count := atomic.LoadInt32(&callCount); count != 0 {
		t.Errorf("Handlers called %d times after Clear", count)
	}
}

func TestPanicRecovery(t *testing.T) {
	s := NewSubject[UserEvent]()
	var panicValue any
	var panicEvent any
	afterCalled := false

	s.SetPanicHandler(func(event any, recovered any) {
		panicEvent = event
		panicValue = recovered
	})

	s.Subscribe(func(event UserEvent) {
		panic("test panic")
	})
	s.Subscribe(func(event UserEvent) {
		afterCalled = true
	})

	s.Emit(UserEvent{UserID: "123"})

	if panicValue != "test panic" {
		t.Errorf("Expected panic value 'test panic', got %v", panicValue)
	}
	if ev, ok := panicEvent.(UserEvent); !ok || ev.UserID != "123" {
		t.Errorf("Expected panic event UserEvent{123}, got %v", panicEvent)
	}
	if !afterCalled {
		t.Error("Handler after the panicking one was not called")
	}
}

func TestPanicWithoutHandler(t *testing.T) {
	s := NewSubject[int]()
	s.Subscribe(func(int) { panic("unreported") })

	// Must not propagate
	s.Emit(1)
}

func TestConcurrentSubscribeAndEmit(t *testing.T) {
	s := NewSubject[int]()
	var total int64

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := s.Subscribe(func(v int) { atomic.AddInt64(&total, int64(v)) })
			sub.Unsubscribe()
		}()
		go func() {
			defer wg.Done()
			s.Emit(1)
		}()
	}
	wg.Wait()
}
