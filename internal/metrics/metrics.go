// Package metrics exposes Prometheus instrumentation for the catalogue
// registry and the HTTP layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder aggregates registry and HTTP counters on a private Prometheus
// registry so tests can construct isolated instances.
type Recorder struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec
	loadSeconds  *prometheus.HistogramVec
	lookups      *prometheus.CounterVec
	relations    prometheus.Counter
	httpRequests *prometheus.CounterVec
}

// New constructs a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crt_catalogue_loads_total",
			Help: "Catalogue load attempts by catalogue and result.",
		}, []string{"catalogue", "result"}),
		loadSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crt_catalogue_load_seconds",
			Help:    "Catalogue load duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"catalogue"}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crt_entity_lookups_total",
			Help: "Entity lookups by catalogue and result.",
		}, []string{"catalogue", "result"}),
		relations: factory.NewCounter(prometheus.CounterOpts{
			Name: "crt_relationship_resolutions_total",
			Help: "Relationship field resolutions.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crt_http_requests_total",
			Help: "HTTP requests by method and status class.",
		}, []string{"method", "status"}),
	}
}

// ObserveLoad records one catalogue load attempt.
func (r *Recorder) ObserveLoad(catalogue, result string, seconds float64) {
	r.loads.WithLabelValues(catalogue, result).Inc()
	if result == "ok" {
		r.loadSeconds.WithLabelValues(catalogue).Observe(seconds)
	}
}

// ObserveLookup records one entity lookup.
func (r *Recorder) ObserveLookup(catalogue, result string) {
	r.lookups.WithLabelValues(catalogue, result).Inc()
}

// ObserveRelationResolution records one relationship field resolution.
func (r *Recorder) ObserveRelationResolution() {
	r.relations.Inc()
}

// ObserveHTTPRequest records one served HTTP request.
func (r *Recorder) ObserveHTTPRequest(method, statusClass string) {
	r.httpRequests.WithLabelValues(method, statusClass).Inc()
}

// Handler returns the scrape endpoint for this recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
