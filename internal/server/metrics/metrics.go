// Package metrics exposes the server's Prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Account lifecycle events counted by AccountEvent.
const (
	EventCreated       = "created"
	EventAuthenticated = "authenticated"
	EventRotated       = "rotated"
	EventRejected      = "rejected"
	EventCodeVerified  = "code_verified"
)

type Metrics struct {
	registry *prometheus.Registry

	RPCRequestsTotal   *prometheus.CounterVec
	RPCRequestDuration *prometheus.HistogramVec
	AccountEventsTotal *prometheus.CounterVec
}

// New registers every instrument, plus Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RPCRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "totpkeeper_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "code"},
		),
		RPCRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "totpkeeper_grpc_request_duration_seconds",
				Help:    "gRPC request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		AccountEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "totpkeeper_account_events_total",
				Help: "Account lifecycle events",
			},
			[]string{"event"},
		),
	}

	m.registry.MustRegister(
		m.RPCRequestsTotal,
		m.RPCRequestDuration,
		m.AccountEventsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.RPCRequestsTotal.WithLabelValues(method, code).Inc()
	m.RPCRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) AccountEvent(event string) {
	m.AccountEventsTotal.WithLabelValues(event).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
