// Package metrics exposes Prometheus collectors for the update workflow and
// the HTTP layer on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"placement/api/internal/approval"
	"placement/api/internal/store"
)

type Metrics struct {
	registry  *prometheus.Registry
	updates   *prometheus.CounterVec
	resolved  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "placement",
			Name:      "company_updates_total",
			Help:      "Company updates by write path.",
		}, []string{"mode"}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "placement",
			Name:      "proposals_resolved_total",
			Help:      "Proposals resolved by final status.",
		}, []string{"status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "placement",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	m.registry.MustRegister(
		m.updates,
		m.resolved,
		m.durations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) UpdateRouted(mode approval.Mode) {
	m.updates.WithLabelValues(string(mode)).Inc()
}

func (m *Metrics) ProposalResolved(status store.ProposalStatus) {
	m.resolved.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.durations.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ approval.Observer = (*Metrics)(nil)
