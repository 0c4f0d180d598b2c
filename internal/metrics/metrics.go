// Package metrics exposes Prometheus instrumentation for the guide services.
//
// All recording methods are safe on a nil *Metrics, so components can be
// constructed without instrumentation in tests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "guide"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	datasetFetches   *prometheus.CounterVec
	datasetLatency   *prometheus.HistogramVec
	searchQueries    *prometheus.CounterVec
	indexBuilds      *prometheus.HistogramVec
	favoriteChanges  *prometheus.CounterVec
	persistFailures  *prometheus.CounterVec
	sseClients       prometheus.Gauge
	homepageRequests *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		datasetFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_fetches_total",
			Help:      "Dataset fetches by dataset and result.",
		}, []string{"dataset", "result"}),
		datasetLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_fetch_seconds",
			Help:      "Dataset fetch and decode latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dataset"}),
		searchQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Search queries by kind (substring, fulltext) and whether anything matched.",
		}, []string{"kind", "matched"}),
		indexBuilds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_index_build_seconds",
			Help:      "Duration of search index loads by result.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"result"}),
		favoriteChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_mutations_total",
			Help:      "Favorites mutations that changed a set, by operation.",
		}, []string{"op"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_persist_failures_total",
			Help:      "Device state writes or reads that failed and degraded to memory.",
		}, []string{"key"}),
		sseClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_clients",
			Help:      "Connected event stream clients.",
		}),
		homepageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "homepage_requests_total",
			Help:      "Homepage snapshot requests by cache outcome.",
		}, []string{"cache"}),
	}

	m.Registry.MustRegister(
		m.datasetFetches,
		m.datasetLatency,
		m.searchQueries,
		m.indexBuilds,
		m.favoriteChanges,
		m.persistFailures,
		m.sseClients,
		m.homepageRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one dataset load.
func (m *Metrics) ObserveFetch(dataset string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.datasetFetches.WithLabelValues(dataset, result(err)).Inc()
	m.datasetLatency.WithLabelValues(dataset).Observe(took.Seconds())
}

// CountSearch records a query of the given kind.
func (m *Metrics) CountSearch(kind string, results int) {
	if m == nil {
		return
	}
	matched := "true"
	if results == 0 {
		matched = "false"
	}
	m.searchQueries.WithLabelValues(kind, matched).Inc()
}

// ObserveIndexBuild records one search aggregator load.
func (m *Metrics) ObserveIndexBuild(err error, took time.Duration) {
	if m == nil {
		return
	}
	m.indexBuilds.WithLabelValues(result(err)).Observe(took.Seconds())
}

// CountFavoriteChange records an add or remove that changed a set.
func (m *Metrics) CountFavoriteChange(op string) {
	if m == nil {
		return
	}
	m.favoriteChanges.WithLabelValues(op).Inc()
}

// CountPersistFailure records a degraded device state read or write.
func (m *Metrics) CountPersistFailure(key string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(key).Inc()
}

// SetSSEClients sets the connected client gauge.
func (m *Metrics) SetSSEClients(n int) {
	if m == nil {
		return
	}
	m.sseClients.Set(float64(n))
}

// CountHomepage records whether a homepage request was served from cache.
func (m *Metrics) CountHomepage(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.homepageRequests.WithLabelValues(outcome).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
