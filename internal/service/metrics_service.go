package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the gateway's Prometheus registry. A private registry
// keeps the scrape surface to exactly the instruments below instead of the
// client library's global defaults.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	requestsActive  prometheus.Gauge

	cacheLatency  prometheus.Histogram
	cacheWrite    prometheus.Histogram
	cacheHitRatio prometheus.Gauge
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter

	portalDuration    *prometheus.HistogramVec
	reconcileDuration prometheus.Histogram

	cacheHitCount  uint64
	cacheMissCount uint64
}

func histogram(name, help string) prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help, Buckets: prometheus.DefBuckets})
}

func histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: prometheus.DefBuckets}, labels)
}

// NewMetricsService builds the registry and registers every collector.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		requestDuration: histogramVec("http_request_duration_seconds",
			"Duration of HTTP requests in seconds", "method", "path", "status"),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served",
		}),
		cacheLatency: histogram("cache_latency_seconds", "Latency for cache lookups"),
		cacheWrite:   histogram("cache_write_seconds", "Latency for cache set operations"),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		portalDuration: histogramVec("portal_fetch_duration_seconds",
			"Duration of upstream portal fetches", "source", "outcome"),
		reconcileDuration: histogram("dashboard_reconcile_duration_seconds",
			"Duration of one dashboard reconciliation pass"),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 { return float64(runtime.NumGoroutine()) })

	m.registry.MustRegister(
		m.requestDuration, m.requestTotal, m.requestsActive,
		m.cacheLatency, m.cacheWrite,
		m.cacheHitRatio, m.cacheHits, m.cacheMisses,
		m.portalDuration, m.reconcileDuration,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the scrape endpoint for this registry.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// TrackInFlight bumps the in-flight gauge and returns the matching
// decrement for the caller to defer.
func (m *MetricsService) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.requestsActive.Inc()
	return m.requestsActive.Dec
}

// ObserveHTTPRequest records one finished request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

// RecordCacheOperation counts a lookup and refreshes the hit ratio gauge.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration of a cache set.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObservePortalFetch records one upstream fetch with its outcome.
func (m *MetricsService) ObservePortalFetch(source string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.portalDuration.WithLabelValues(source, outcome).Observe(duration.Seconds())
}

// ObserveReconcile records the duration of one reconciliation pass.
func (m *MetricsService) ObserveReconcile(duration time.Duration) {
	if m == nil {
		return
	}
	m.reconcileDuration.Observe(duration.Seconds())
}
