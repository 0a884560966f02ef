package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "incident_analytics"

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	reportsBuilt       prometheus.Counter
	reportBuildSeconds prometheus.Histogram
	reportCacheHits    *prometheus.CounterVec
	datasetTickets     prometheus.Gauge
	datasetFlagged     prometheus.Gauge
	datasetLoadedAt    prometheus.Gauge
	feedFetches        *prometheus.CounterVec
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP errors by route, method and error code.",
		}, []string{"route", "method", "code"}),
		reportsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_built_total",
			Help:      "Reports computed from the dataset.",
		}),
		reportBuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_build_duration_seconds",
			Help:      "Time spent computing a report.",
			Buckets:   prometheus.DefBuckets,
		}),
		reportCacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_lookups_total",
			Help:      "Report cache lookups by result.",
		}, []string{"result"}),
		datasetTickets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_tickets",
			Help:      "Tickets in the loaded dataset.",
		}),
		datasetFlagged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_flagged_tickets",
			Help:      "Tickets with inconsistent dates in the loaded dataset.",
		}),
		datasetLoadedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_loaded_timestamp_seconds",
			Help:      "Unix time of the last dataset load.",
		}),
		feedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Vulnerability feed fetches by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpRequestDuration,
		m.httpErrors,
		m.reportsBuilt,
		m.reportBuildSeconds,
		m.reportCacheHits,
		m.datasetTickets,
		m.datasetFlagged,
		m.datasetLoadedAt,
		m.feedFetches,
	)
	return m
}

// Registry exposes the collectors for the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest observes one served request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(route, method, code).Inc()
}

// RecordReport observes one report computation.
func (m *Metrics) RecordReport(duration time.Duration) {
	if m == nil {
		return
	}
	m.reportsBuilt.Inc()
	m.reportBuildSeconds.Observe(duration.Seconds())
}

// RecordCacheLookup counts report cache hits and misses.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.reportCacheHits.WithLabelValues(result).Inc()
}

// RecordDataset publishes the shape of the freshly loaded dataset.
func (m *Metrics) RecordDataset(tickets, flagged int, loadedAt time.Time) {
	if m == nil {
		return
	}
	m.datasetTickets.Set(float64(tickets))
	m.datasetFlagged.Set(float64(flagged))
	m.datasetLoadedAt.Set(float64(loadedAt.Unix()))
}

// RecordFeedFetch counts feed requests by outcome (ok, error, cached).
func (m *Metrics) RecordFeedFetch(outcome string) {
	if m == nil {
		return
	}
	m.feedFetches.WithLabelValues(outcome).Inc()
}
