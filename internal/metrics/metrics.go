// Package metrics exposes prometheus collectors for the response cache and
// link validation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joshdurbin/js4hs-edge/internal/cache"
)

const namespace = "js4hs"

// Metrics holds every collector registered by the server
type Metrics struct {
	registry *prometheus.Registry

	cacheRequests    *prometheus.CounterVec
	cacheStoreErrors prometheus.Counter
	cacheSweeps      prometheus.Counter
	cacheSwept       prometheus.Counter
	linkValidations  *prometheus.CounterVec
}

// New creates a Metrics with its own registry, including Go runtime and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "response_cache",
			Name:      "requests_total",
			Help:      "Requests seen by the response cache, by outcome.",
		}, []string{"outcome"}),
		cacheStoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "response_cache",
			Name:      "store_errors_total",
			Help:      "Failed writes to the response store.",
		}),
		cacheSweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "response_cache",
			Name:      "sweeps_total",
			Help:      "Completed full-store sweeps.",
		}),
		cacheSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "response_cache",
			Name:      "swept_entries_total",
			Help:      "Entries removed by sweeps.",
		}),
		linkValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "validations_total",
			Help:      "Ephemeral link validations, by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cacheRequests,
		m.cacheStoreErrors,
		m.cacheSweeps,
		m.cacheSwept,
		m.linkValidations,
	)
	return m
}

// RegisterStoreSize exposes the number of entries currently held by store
func (m *Metrics) RegisterStoreSize(size func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "response_cache",
		Name:      "entries",
		Help:      "Entries currently held by the response store.",
	}, func() float64 { return float64(size()) }))
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hit counts a response served from the cache
func (m *Metrics) Hit() { m.cacheRequests.WithLabelValues("hit").Inc() }

// Miss counts a cacheable request that reached the handler
func (m *Metrics) Miss() { m.cacheRequests.WithLabelValues("miss").Inc() }

// Bypass counts a request that skipped the cache, labelled bypass_<reason>
func (m *Metrics) Bypass(reason string) {
	m.cacheRequests.WithLabelValues("bypass_" + reason).Inc()
}

// StoreError counts a failed cache write
func (m *Metrics) StoreError() { m.cacheStoreErrors.Inc() }

// Swept counts a sweep and the entries it removed
func (m *Metrics) Swept(removed int) {
	m.cacheSweeps.Inc()
	m.cacheSwept.Add(float64(removed))
}

// LinkValidated records a validation outcome: valid, rejected or direct
func (m *Metrics) LinkValidated(result string) {
	m.linkValidations.WithLabelValues(result).Inc()
}

var _ cache.Recorder = (*Metrics)(nil)
