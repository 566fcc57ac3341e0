// Package prom implements mvi.Observability with Prometheus collectors.
//
//	obs := prom.New(prometheus.DefaultRegisterer)
//	model := mvi.New(feature, mvi.WithName("counter"), mvi.WithObservability(obs))
package prom

import (
	"context"
	"time"

	"github.com/jilio/mvi"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mvi"

// Observability records model telemetry as Prometheus metrics
type Observability struct {
	events       *prometheus.CounterVec
	foldDuration *prometheus.HistogramVec
	foldErrors   *prometheus.CounterVec
	actions      *prometheus.CounterVec
	lifecycle    *prometheus.CounterVec
	attached     *prometheus.GaugeVec
}

type foldKey struct{}

type foldLabels struct {
	model     string
	eventType string
}

// New creates the collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) *Observability {
	o := &Observability{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fold",
				Name:      "events_total",
				Help:      "Total events folded into view models.",
			},
			[]string{"model", "event"},
		),
		foldDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "fold",
				Name:      "duration_seconds",
				Help:      "Reduce duration in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
			},
			[]string{"model", "event"},
		),
		foldErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fold",
				Name:      "errors_total",
				Help:      "Reduce calls that panicked and kept the previous view model.",
			},
			[]string{"model", "event"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "action",
				Name:      "published_total",
				Help:      "Total actions published to views.",
			},
			[]string{"model", "action"},
		),
		lifecycle: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "lifecycle_total",
				Help:      "Attach, detach and close calls.",
			},
			[]string{"model", "op"},
		),
		attached: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "model",
				Name:      "attached",
				Help:      "Whether the model has an active attachment.",
			},
			[]string{"model"},
		),
	}

	if reg != nil {
		reg.MustRegister(o.Collectors()...)
	}
	return o
}

// Collectors returns every collector owned by o
func (o *Observability) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		o.events, o.foldDuration, o.foldErrors, o.actions, o.lifecycle, o.attached,
	}
}

// OnEvent counts the event and remembers its labels for OnFoldComplete
func (o *Observability) OnEvent(ctx context.Context, model, eventType string) context.Context {
	o.events.WithLabelValues(model, eventType).Inc()
	return context.WithValue(ctx, foldKey{}, foldLabels{model: model, eventType: eventType})
}

// OnFoldComplete records the reduce duration
func (o *Observability) OnFoldComplete(ctx context.Context, duration time.Duration, err error) {
	labels, _ := ctx.Value(foldKey{}).(foldLabels)

	o.foldDuration.WithLabelValues(labels.model, labels.eventType).Observe(duration.Seconds())
	if err != nil {
		o.foldErrors.WithLabelValues(labels.model, labels.eventType).Inc()
	}
}

// OnAction counts a published action
func (o *Observability) OnAction(_ context.Context, model, actionType string) {
	o.actions.WithLabelValues(model, actionType).Inc()
}

// OnLifecycle counts lifecycle calls and tracks the attached gauge
func (o *Observability) OnLifecycle(_ context.Context, model string, op mvi.Lifecycle) {
	o.lifecycle.WithLabelValues(model, string(op)).Inc()

	switch op {
	case mvi.LifecycleAttach:
		o.attached.WithLabelValues(model).Set(1)
	case mvi.LifecycleDetach, mvi.LifecycleClose:
		o.attached.WithLabelValues(model).Set(0)
	}
}

var _ mvi.Observability = (*Observability)(nil)
