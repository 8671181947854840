package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather dashboard API.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec // labels: kind={alerts,forecast,city_forecast}, outcome={success,error}
	CacheLookups  *prometheus.CounterVec // labels: kind, result={hit,miss}

	// Upstream call metrics.
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint={alerts,points,forecast}
	UpstreamErrors   *prometheus.CounterVec   // labels: endpoint

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error}
	GeocodeDuration prometheus.Histogram
	GeocodeEnabled  prometheus.Gauge

	// Alert publishing metrics.
	AlertsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RequestsTotal,
		m.CacheLookups,
		m.UpstreamDuration,
		m.UpstreamErrors,
		m.GeocodeRequests,
		m.GeocodeDuration,
		m.GeocodeEnabled,
		m.AlertsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_api",
			Name:      "requests_total",
			Help:      "Dashboard API requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_api",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_api",
			Name:      "upstream_duration_seconds",
			Help:      "NWS API request duration by endpoint.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_api",
			Name:      "upstream_errors_total",
			Help:      "NWS API failures by endpoint.",
		}, []string{"endpoint"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_api",
			Name:      "geocode_requests_total",
			Help:      "City geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_api",
			Name:      "geocode_duration_seconds",
			Help:      "OpenRouter chat-completion request duration.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_api",
			Name:      "geocode_enabled",
			Help:      "1 when city-name geocoding is configured, 0 otherwise.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_api",
			Name:      "alerts_published_total",
			Help:      "Alert batches published to the Kafka topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_api",
			Name:      "publish_errors_total",
			Help:      "Failed alert batch publishes.",
		}),
	}
}
