package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
)

// Ensure Metrics can subscribe to the event bus.
var _ out.EventHandler = (*Metrics)(nil)

const namespace = "acms"

// Metrics holds the Prometheus instruments of the server. Each instance owns
// its registry so tests can build as many as they like.
type Metrics struct {
	// Events
	EventsTotal   *prometheus.CounterVec
	EventsDropped *prometheus.CounterVec

	// Tool surface
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	BatchTargets *prometheus.CounterVec

	// Builder
	BuilderState *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all instruments on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of domain events observed",
		}, []string{"type"}),
		EventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped because the bus was full",
		}, []string{"type"}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool invocations by result kind",
		}, []string{"tool", "result"}),
		ToolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Tool invocation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		BatchTargets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_targets_total",
			Help:      "Per-target outcomes of batch operations",
		}, []string{"tool", "outcome"}),
		BuilderState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "builder_state",
			Help:      "1 for the builder's current state, 0 otherwise",
		}, []string{"state"}),
		registry: registry,
	}
}

// Registry exposes the registry for HTTP middleware registration.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordToolCall records one tool invocation. result is an error kind or "ok".
func (m *Metrics) RecordToolCall(tool, result string, elapsed time.Duration) {
	m.ToolCalls.WithLabelValues(tool, result).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// RecordBatch records the per-target outcomes of one batch call.
func (m *Metrics) RecordBatch(tool string, result domain.BatchResult) {
	for _, e := range result.Entries {
		m.BatchTargets.WithLabelValues(tool, string(e.Outcome)).Inc()
	}
}

// RecordDropped records an event the bus could not enqueue.
func (m *Metrics) RecordDropped(eventType domain.EventType) {
	m.EventsDropped.WithLabelValues(string(eventType)).Inc()
}

// Handle counts every event and tracks builder state transitions.
func (m *Metrics) Handle(_ context.Context, event domain.Event) error {
	m.EventsTotal.WithLabelValues(string(event.Type)).Inc()

	if p, ok := event.Data.(domain.BuilderEventPayload); ok {
		for _, s := range []domain.BuilderState{
			domain.BuilderStateStopped,
			domain.BuilderStateStarting,
			domain.BuilderStateRunning,
			domain.BuilderStateStopping,
		} {
			v := 0.0
			if s == p.State {
				v = 1
			}
			m.BuilderState.WithLabelValues(string(s)).Set(v)
		}
	}
	return nil
}

// CanHandle accepts every event type.
func (m *Metrics) CanHandle(domain.EventType) bool {
	return true
}
