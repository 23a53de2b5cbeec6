package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// Metrics exposes application-level instruments on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	BillingRuns    *prometheus.CounterVec
	BillsGenerated prometheus.Counter
	ReadingsSaved  *prometheus.CounterVec

	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// New creates the registry and registers all instruments.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: registry,
		BillingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "propease_billing_runs_total",
			Help: "Bill generation runs by outcome.",
		}, []string{"outcome"}),
		BillsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "propease_bills_generated_total",
			Help: "Bills written by generation runs.",
		}),
		ReadingsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "propease_readings_saved_total",
			Help: "Meter readings saved by kind.",
		}, []string{"kind"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "propease_http_request_duration_seconds",
			Help:    "HTTP request duration by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "propease_http_requests_in_flight",
			Help: "In-flight HTTP requests.",
		}),
	}

	registry.MustRegister(
		m.BillingRuns,
		m.BillsGenerated,
		m.ReadingsSaved,
		m.httpDuration,
		m.httpInFlight,
	)

	return m
}

// Module wires the metrics registry for fx.
var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
