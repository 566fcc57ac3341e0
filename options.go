package mvi

import (
	"context"
	"time"
)

// Logger is an interface for logging model lifecycle and failures.
// *slog.Logger satisfies it, as does the zlog adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Observability receives telemetry callbacks from a Model
type Observability interface {
	// OnEvent is called when an event reaches the fold point
	OnEvent(ctx context.Context, model, eventType string) context.Context

	// OnFoldComplete is called after reduce ran for the event passed to OnEvent.
	// err is non-nil when reduce panicked and the transition was dropped.
	OnFoldComplete(ctx context.Context, duration time.Duration, err error)

	// OnAction is called when an action is published to observers
	OnAction(ctx context.Context, model, actionType string)

	// OnLifecycle is called on attach, detach and close
	OnLifecycle(ctx context.Context, model string, op Lifecycle)
}

// Lifecycle names a Model lifecycle transition
type Lifecycle string

const (
	LifecycleAttach Lifecycle = "attach"
	LifecycleDetach Lifecycle = "detach"
	LifecycleClose  Lifecycle = "close"
)

type nopObservability struct{}

func (nopObservability) OnEvent(ctx context.Context, _, _ string) context.Context { return ctx }
func (nopObservability) OnFoldComplete(context.Context, time.Duration, error)    {}
func (nopObservability) OnAction(context.Context, string, string)                {}
func (nopObservability) OnLifecycle(context.Context, string, Lifecycle)          {}

// Option configures a Model
type Option func(*config)

type config struct {
	name          string
	dispatcher    Dispatcher
	logger        Logger
	observability Observability
	panicHandler  PanicHandler
	distinct      bool
}

func defaultConfig() *config {
	return &config{
		name:          "model",
		logger:        nopLogger{},
		observability: nopObservability{},
	}
}

// WithName sets the label used for the model in logs and telemetry
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithDispatcher sets the delivery context for ViewModel and Action observers.
// By default each Model owns a Loop that is closed by Model.Close.
func WithDispatcher(d Dispatcher) Option {
	return func(c *config) {
		c.dispatcher = d
	}
}

// WithLogger sets the logger for the model
func WithLogger(logger Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObservability enables telemetry callbacks
func WithObservability(obs Observability) Option {
	return func(c *config) {
		if obs != nil {
			c.observability = obs
		}
	}
}

// WithPanicHandler sets a function called when a reducer, mapping stage or
// observer panics. Panics are always recovered and logged.
func WithPanicHandler(handler PanicHandler) Option {
	return func(c *config) {
		c.panicHandler = handler
	}
}

// WithDistinct skips publishing a ViewModel equal to the previous one
func WithDistinct() Option {
	return func(c *config) {
		c.distinct = true
	}
}
