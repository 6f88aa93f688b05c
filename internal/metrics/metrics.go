package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the image cache.
type Metrics struct {
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheErrors     *prometheus.CounterVec
	downloadLatency prometheus.Histogram
	downloadBytes   prometheus.Counter
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Default returns the process-wide metrics instance. Counters register on
// the default Prometheus registry, so there must be only one.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = &Metrics{
			cacheHits: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "image_cache_hits_total",
					Help: "Total number of image cache hits",
				},
			),
			cacheMisses: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "image_cache_misses_total",
					Help: "Total number of image cache misses",
				},
			),
			cacheErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "image_cache_errors_total",
					Help: "Total number of image cache failures by kind",
				},
				[]string{"kind"},
			),
			downloadLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "image_download_latency_ms",
					Help:    "Latency of upstream image downloads in milliseconds",
					Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
				},
			),
			downloadBytes: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "image_download_bytes_total",
					Help: "Total bytes downloaded from upstream image services",
				},
			),
		}
	})
	return defaultMetrics
}

// IncrementCacheHits increments the cache hits counter.
func (m *Metrics) IncrementCacheHits() {
	m.cacheHits.Inc()
}

// IncrementCacheMisses increments the cache misses counter.
func (m *Metrics) IncrementCacheMisses() {
	m.cacheMisses.Inc()
}

// IncrementCacheErrors increments the error counter for the given kind.
func (m *Metrics) IncrementCacheErrors(kind string) {
	m.cacheErrors.WithLabelValues(kind).Inc()
}

// RecordDownloadLatency records the latency of an upstream download.
func (m *Metrics) RecordDownloadLatency(milliseconds int64) {
	m.downloadLatency.Observe(float64(milliseconds))
}

// AddDownloadBytes adds to the downloaded bytes counter.
func (m *Metrics) AddDownloadBytes(n int64) {
	m.downloadBytes.Add(float64(n))
}
