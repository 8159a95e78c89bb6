// Package metrics exposes the Prometheus instrumentation for the API
// server and the sync worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors so they can be registered once and shared
// between the transport and service layers.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ExpensesWritten  *prometheus.CounterVec
	TripsWritten     *prometheus.CounterVec
	WatchSubscribers prometheus.Gauge
	EventsPublished  prometheus.Counter
	EventsConsumed   *prometheus.CounterVec
	ExportedRows     prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tripmate_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tripmate_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ExpensesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tripmate_expenses_written_total",
			Help: "Expense writes by action.",
		}, []string{"action"}),
		TripsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tripmate_trips_written_total",
			Help: "Trip writes by action.",
		}, []string{"action"}),
		WatchSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tripmate_watch_subscribers",
			Help: "Currently open live subscriptions.",
		}),
		EventsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripmate_change_events_published_total",
			Help: "Change events published to the broker.",
		}),
		EventsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tripmate_change_events_consumed_total",
			Help: "Change events consumed by the worker, by outcome.",
		}, []string{"outcome"}),
		ExportedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "tripmate_exported_rows_total",
			Help: "Ledger rows written to the export backend.",
		}),
	}
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
