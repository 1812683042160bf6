// Package metrics exposes pipeline counters and gauges in Prometheus format.
//
// Metrics are registered on a dedicated registry owned by each Metrics value, so
// tests can build as many instances as they like without clashing on the global
// default registry. Every Record method is safe on a nil *Metrics and does
// nothing, which lets components run without instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pizzeria"

// Channel names used as the "channel" label.
const (
	ChannelQueue     = "queue"
	ChannelWarehouse = "warehouse"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds every collector the pipeline reports to.
type Metrics struct {
	registry *prometheus.Registry

	channelPutAttempts  *prometheus.CounterVec
	channelPuts         *prometheus.CounterVec
	channelTakeAttempts *prometheus.CounterVec
	channelTakenItems   *prometheus.CounterVec
	channelSize         *prometheus.GaugeVec

	repositoryOperations *prometheus.CounterVec
	logWrites            *prometheus.CounterVec
	statusMismatches     prometheus.Counter
	statusTransitions    *prometheus.CounterVec

	ordersAccepted prometheus.Counter
	ordersRejected *prometheus.CounterVec
	activeWorkers  prometheus.Gauge
}

// New creates a Metrics value with all collectors registered on a fresh registry,
// alongside the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		channelPutAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "channel",
				Name:      "put_attempts_total",
				Help:      "Count of Put calls, including ones that ended up cancelled.",
			},
			[]string{"channel"},
		),
		channelPuts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "channel",
				Name:      "puts_total",
				Help:      "Count of items successfully inserted.",
			},
			[]string{"channel"},
		),
		channelTakeAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "channel",
				Name:      "take_attempts_total",
				Help:      "Count of Take and TakeUpTo calls, including ones that ended up cancelled.",
			},
			[]string{"channel"},
		),
		channelTakenItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "channel",
				Name:      "taken_items_total",
				Help:      "Count of items removed, by single take, batch take or drain.",
			},
			[]string{"channel"},
		),
		channelSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "channel",
				Name:      "size",
				Help:      "Number of items currently buffered.",
			},
			[]string{"channel"},
		),

		repositoryOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "repository",
				Name:      "operations_total",
				Help:      "Count of repository operations by name and result.",
			},
			[]string{"operation", "result"},
		),
		logWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "repository",
				Name:      "log_writes_total",
				Help:      "Count of event log appends by result.",
			},
			[]string{"result"},
		),
		statusMismatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "repository",
				Name:      "status_mismatches_total",
				Help:      "Count of status updates whose logged status disagreed with the in-memory order.",
			},
		),
		statusTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "status_transitions_total",
				Help:      "Count of persisted status updates by new status.",
			},
			[]string{"status"},
		),

		ordersAccepted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "accepted_total",
				Help:      "Count of orders accepted into the queue.",
			},
		),
		ordersRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "orders",
				Name:      "rejected_total",
				Help:      "Count of order submissions refused, by reason.",
			},
			[]string{"reason"},
		),
		activeWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "workers",
				Name:      "active",
				Help:      "Number of worker goroutines currently running.",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.channelPutAttempts,
		m.channelPuts,
		m.channelTakeAttempts,
		m.channelTakenItems,
		m.channelSize,
		m.repositoryOperations,
		m.logWrites,
		m.statusMismatches,
		m.statusTransitions,
		m.ordersAccepted,
		m.ordersRejected,
		m.activeWorkers,
	)

	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRepositoryOperation counts one repository call. A nil err is a success.
func (m *Metrics) RecordRepositoryOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.repositoryOperations.WithLabelValues(operation, result(err)).Inc()
}

// RecordLogWrite counts one event log append.
func (m *Metrics) RecordLogWrite(err error) {
	if m == nil {
		return
	}
	m.logWrites.WithLabelValues(result(err)).Inc()
}

// RecordStatusMismatch counts a status update that disagreed with memory.
func (m *Metrics) RecordStatusMismatch() {
	if m == nil {
		return
	}
	m.statusMismatches.Inc()
}

// RecordStatusTransition counts a persisted status update.
func (m *Metrics) RecordStatusTransition(status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(status).Inc()
}

// RecordOrderAccepted counts an order that made it into the queue.
func (m *Metrics) RecordOrderAccepted() {
	if m == nil {
		return
	}
	m.ordersAccepted.Inc()
}

// RecordOrderRejected counts a refused submission.
func (m *Metrics) RecordOrderRejected(reason string) {
	if m == nil {
		return
	}
	m.ordersRejected.WithLabelValues(reason).Inc()
}

// SetActiveWorkers reports the number of running workers.
func (m *Metrics) SetActiveWorkers(n int) {
	if m == nil {
		return
	}
	m.activeWorkers.Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
