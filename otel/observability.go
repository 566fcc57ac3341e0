// Package otel implements mvi.Observability using OpenTelemetry.
//
//	obs, err := otel.New(
//	    otel.WithTracerProvider(tp),
//	    otel.WithMeterProvider(mp),
//	)
//	model := mvi.New(feature, mvi.WithName("counter"), mvi.WithObservability(obs))
package otel

import (
	"context"
	"time"

	"github.com/jilio/mvi"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/jilio/mvi"
)

// Observability implements mvi.Observability using OpenTelemetry
type Observability struct {
	tracer trace.Tracer
	meter  metric.Meter

	// Metrics
	eventCounter     metric.Int64Counter
	foldDuration     metric.Float64Histogram
	foldErrors       metric.Int64Counter
	actionCounter    metric.Int64Counter
	lifecycleCounter metric.Int64Counter
	attached         metric.Int64UpDownCounter
}

// Option configures the Observability
type Option func(*Observability)

// WithTracerProvider sets a custom tracer provider
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *Observability) {
		o.tracer = provider.Tracer(instrumentationName)
	}
}

// WithMeterProvider sets a custom meter provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *Observability) {
		o.meter = provider.Meter(instrumentationName)
	}
}

// New creates a new OpenTelemetry observability implementation
func New(opts ...Option) (*Observability, error) {
	obs := &Observability{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	for _, opt := range opts {
		opt(obs)
	}

	var err error

	obs.eventCounter, err = obs.meter.Int64Counter(
		"mvi.event.count",
		metric.WithDescription("Number of events folded"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	obs.foldDuration, err = obs.meter.Float64Histogram(
		"mvi.fold.duration",
		metric.WithDescription("Reduce duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	obs.foldErrors, err = obs.meter.Int64Counter(
		"mvi.fold.errors",
		metric.WithDescription("Number of reduce calls that panicked"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	obs.actionCounter, err = obs.meter.Int64Counter(
		"mvi.action.count",
		metric.WithDescription("Number of actions published"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	obs.lifecycleCounter, err = obs.meter.Int64Counter(
		"mvi.lifecycle.count",
		metric.WithDescription("Number of attach, detach and close calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	obs.attached, err = obs.meter.Int64UpDownCounter(
		"mvi.attached",
		metric.WithDescription("Number of attached models"),
		metric.WithUnit("{model}"),
	)
	if err != nil {
		return nil, err
	}

	return obs, nil
}

// OnEvent starts a fold span for the event
func (o *Observability) OnEvent(ctx context.Context, model, eventType string) context.Context {
	attrs := []attribute.KeyValue{
		attribute.String("mvi.model", model),
		attribute.String("event.type", eventType),
	}

	ctx, _ = o.tracer.Start(ctx, "mvi.fold: "+eventType, trace.WithAttributes(attrs...))
	o.eventCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	return ctx
}

// OnFoldComplete ends the fold span started by OnEvent
func (o *Observability) OnFoldComplete(ctx context.Context, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	durationMs := float64(duration.Microseconds()) / 1000
	o.foldDuration.Record(ctx, durationMs)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		o.foldErrors.Add(ctx, 1)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

// OnAction counts a published action
func (o *Observability) OnAction(ctx context.Context, model, actionType string) {
	o.actionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("mvi.model", model),
			attribute.String("action.type", actionType),
		),
	)
}

// OnLifecycle records attach, detach and close as span events and counters
func (o *Observability) OnLifecycle(ctx context.Context, model string, op mvi.Lifecycle) {
	attrs := []attribute.KeyValue{
		attribute.String("mvi.model", model),
		attribute.String("mvi.lifecycle", string(op)),
	}

	_, span := o.tracer.Start(ctx, "mvi."+string(op), trace.WithAttributes(attrs...))
	span.End()

	o.lifecycleCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	switch op {
	case mvi.LifecycleAttach:
		o.attached.Add(ctx, 1, metric.WithAttributes(attrs[0]))
	case mvi.LifecycleDetach:
		o.attached.Add(ctx, -1, metric.WithAttributes(attrs[0]))
	}
}

// Ensure Observability implements mvi.Observability
var _ mvi.Observability = (*Observability)(nil)
