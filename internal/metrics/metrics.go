// Package metrics exposes prometheus counters for the sync pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmunix/anistrm/internal/catalog"
	"github.com/vmunix/anistrm/internal/events"
	"github.com/vmunix/anistrm/internal/generator"
	"github.com/vmunix/anistrm/internal/handlers"
	"github.com/vmunix/anistrm/internal/tasks"
	"github.com/vmunix/anistrm/internal/watcher"
)

const namespace = "anistrm"

// Metrics holds every collector. Its methods satisfy the observer
// interfaces of the instrumented packages.
type Metrics struct {
	registry *prometheus.Registry

	catalogRequests *prometheus.CounterVec
	catalogLatency  *prometheus.HistogramVec
	artifacts       *prometheus.CounterVec
	reconnects      prometheus.Counter
	reconnectDelay  prometheus.Gauge
	pushMessages    *prometheus.CounterVec
	droppedEvents   *prometheus.CounterVec
	regenerations   *prometheus.CounterVec
	taskRuns        *prometheus.CounterVec
	taskDuration    *prometheus.HistogramVec
	favorites       prometheus.Gauge
}

var (
	_ catalog.RequestObserver       = (*Metrics)(nil)
	_ generator.Observer            = (*Metrics)(nil)
	_ watcher.Observer              = (*Metrics)(nil)
	_ handlers.RegenerationObserver = (*Metrics)(nil)
	_ tasks.Observer                = (*Metrics)(nil)
)

// New creates and registers all collectors on a fresh registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		catalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Catalog API requests by endpoint and HTTP status (0 for transport errors).",
		}, []string{"endpoint", "status"}),
		catalogLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Catalog API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "artifacts_total",
			Help:      "Generated artifacts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "reconnects_total",
			Help:      "Push channel reconnect attempts.",
		}),
		reconnectDelay: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "reconnect_delay_seconds",
			Help:      "Backoff delay before the latest reconnect attempt.",
		}),
		pushMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "messages_total",
			Help:      "Push channel messages by kind.",
		}, []string{"kind"}),
		droppedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "dropped_events_total",
			Help:      "Events dropped because a subscriber queue was full.",
		}, []string{"type"}),
		regenerations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "regenerator",
			Name:      "titles_total",
			Help:      "Handled title change notifications by outcome.",
		}, []string{"outcome"}),
		taskRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "runs_total",
			Help:      "Sync task runs by task and status.",
		}, []string{"task", "status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "task",
			Name:      "duration_seconds",
			Help:      "Sync task wall time.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"task"}),
		favorites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "favorites",
			Name:      "titles",
			Help:      "Titles in the favorites index.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.catalogRequests,
		m.catalogLatency,
		m.artifacts,
		m.reconnects,
		m.reconnectDelay,
		m.pushMessages,
		m.droppedEvents,
		m.regenerations,
		m.taskRuns,
		m.taskDuration,
		m.favorites,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveCatalogRequest(endpoint string, status int, elapsed time.Duration) {
	m.catalogRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.catalogLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveArtifact(kind generator.Artifact, outcome generator.Outcome) {
	m.artifacts.WithLabelValues(string(kind), string(outcome)).Inc()
}

func (m *Metrics) ObserveReconnect(_ int, delay time.Duration) {
	m.reconnects.Inc()
	m.reconnectDelay.Set(delay.Seconds())
}

func (m *Metrics) ObservePushMessage(kind string) {
	m.pushMessages.WithLabelValues(kind).Inc()
}

// ObserveDrop counts a dropped bus delivery. Register it with Bus.OnDrop.
func (m *Metrics) ObserveDrop(e events.Event) {
	m.droppedEvents.WithLabelValues(e.EventType()).Inc()
}

func (m *Metrics) ObserveRegeneration(outcome string) {
	m.regenerations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTaskRun(task, status string, elapsed time.Duration) {
	m.taskRuns.WithLabelValues(task, status).Inc()
	m.taskDuration.WithLabelValues(task).Observe(elapsed.Seconds())
}

// SetFavorites records the size of the favorites index.
func (m *Metrics) SetFavorites(n int) {
	m.favorites.Set(float64(n))
}
