// Package metrics provides Prometheus instrumentation for the gallery loader.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes recorded by ObserveFetch.
const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
)

// Metrics holds the gallery collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	fetchTotal       *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec
	itemsLoadedTotal *prometheus.CounterVec
	loadMoreIgnored  *prometheus.CounterVec
	staleResponses   prometheus.Counter
	viewsActive      prometheus.Gauge
}

// New registers the gallery collectors on reg.
// A nil registry gets a fresh one, which keeps tests independent of the global registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_provider_fetch_total",
				Help: "Total number of provider page fetches by outcome",
			},
			[]string{"category", "outcome"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gallery_provider_fetch_duration_seconds",
				Help:    "Duration of provider page fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"category"},
		),
		itemsLoadedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_items_loaded_total",
				Help: "Total number of media items appended to views",
			},
			[]string{"category"},
		),
		loadMoreIgnored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_load_more_ignored_total",
				Help: "Load-more requests rejected by the controller, by state",
			},
			[]string{"state"},
		),
		staleResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gallery_stale_responses_total",
				Help: "Fetch results discarded because the category changed meanwhile",
			},
		),
		viewsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gallery_views_active",
				Help: "Number of open gallery views",
			},
		),
	}
}

// Handler returns an HTTP handler exposing the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveFetch records one provider fetch.
func (m *Metrics) ObserveFetch(category, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(category, outcome).Inc()
	m.fetchDuration.WithLabelValues(category).Observe(duration.Seconds())
}

// AddItemsLoaded records items appended to a view.
func (m *Metrics) AddItemsLoaded(category string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.itemsLoadedTotal.WithLabelValues(category).Add(float64(n))
}

// IncLoadMoreIgnored records a rejected load-more request.
func (m *Metrics) IncLoadMoreIgnored(state string) {
	if m == nil {
		return
	}
	m.loadMoreIgnored.WithLabelValues(state).Inc()
}

// IncStaleResponse records a discarded fetch result.
func (m *Metrics) IncStaleResponse() {
	if m == nil {
		return
	}
	m.staleResponses.Inc()
}

// SetViewsActive sets the open view gauge.
func (m *Metrics) SetViewsActive(n int) {
	if m == nil {
		return
	}
	m.viewsActive.Set(float64(n))
}
