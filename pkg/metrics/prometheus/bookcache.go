// Package prometheus provides Prometheus-backed implementations of the
// metrics interfaces defined by the domain packages.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pagekeep/pagekeep/pkg/bookcache"
)

// cacheMetrics is the Prometheus implementation of bookcache.Metrics.
type cacheMetrics struct {
	saveOperations prometheus.Counter
	saveDuration   prometheus.Histogram
	saveBytes      prometheus.Histogram
	saveFailures   *prometheus.CounterVec
	removeOps      prometheus.Counter
	removeDuration prometheus.Histogram
	blobReads      *prometheus.CounterVec
	bookCount      prometheus.Gauge
	totalSize      prometheus.Gauge
}

// NewCacheMetrics creates a Prometheus-backed bookcache.Metrics instance
// registered against reg.
//
// Returns nil when reg is nil, which disables collection entirely; the
// cache manager treats a nil Metrics as a no-op.
func NewCacheMetrics(reg prometheus.Registerer) bookcache.Metrics {
	if reg == nil {
		return nil
	}

	return &cacheMetrics{
		saveOperations: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "pagekeep_cache_save_operations_total",
				Help: "Total number of completed book save operations",
			},
		),
		saveDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "pagekeep_cache_save_duration_milliseconds",
				Help: "Duration of book save operations in milliseconds, download included",
				Buckets: []float64{
					50,    // 50ms - tiny files on fast links
					100,   // 100ms
					250,   // 250ms
					500,   // 500ms
					1000,  // 1s
					2500,  // 2.5s
					5000,  // 5s
					10000, // 10s
					30000, // 30s - large files on slow links
					60000, // 1m
				},
			},
		),
		saveBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "pagekeep_cache_save_bytes",
				Help: "Distribution of saved book file sizes in bytes",
				Buckets: []float64{
					262144,    // 256KB - plain text
					1048576,   // 1MB - typical EPUB
					4194304,   // 4MB
					16777216,  // 16MB - image-heavy EPUB
					67108864,  // 64MB - typical PDF scan
					268435456, // 256MB
					536870912, // 512MB - large comic archives
				},
			},
		),
		saveFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagekeep_cache_save_failures_total",
				Help: "Total number of failed book save operations by error kind",
			},
			[]string{"kind"}, // "invalid_input", "offline", "network", "transaction"
		),
		removeOps: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "pagekeep_cache_remove_operations_total",
				Help: "Total number of book removal operations",
			},
		),
		removeDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "pagekeep_cache_remove_duration_milliseconds",
				Help: "Duration of book removal operations in milliseconds",
				Buckets: []float64{
					0.1,  // 100us
					0.5,  // 500us
					1,    // 1ms
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms
					1000, // 1s
				},
			},
		),
		blobReads: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagekeep_cache_blob_reads_total",
				Help: "Total number of offline file reads by status",
			},
			[]string{"status"}, // "hit", "miss"
		),
		bookCount: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "pagekeep_cache_books",
				Help: "Current number of books in the offline cache",
			},
		),
		totalSize: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "pagekeep_cache_total_size_bytes",
				Help: "Total size of all cached book files in bytes",
			},
		),
	}
}

func (m *cacheMetrics) ObserveSave(bytes int64, duration time.Duration) {
	if m == nil {
		return
	}

	m.saveOperations.Inc()
	m.saveDuration.Observe(duration.Seconds() * 1000)

	if bytes > 0 {
		m.saveBytes.Observe(float64(bytes))
	}
}

func (m *cacheMetrics) RecordSaveFailure(kind bookcache.ErrorKind) {
	if m == nil {
		return
	}
	m.saveFailures.WithLabelValues(kind.String()).Inc()
}

func (m *cacheMetrics) ObserveRemove(duration time.Duration) {
	if m == nil {
		return
	}
	m.removeOps.Inc()
	m.removeDuration.Observe(duration.Seconds() * 1000)
}

func (m *cacheMetrics) RecordBlobHit() {
	if m == nil {
		return
	}
	m.blobReads.WithLabelValues("hit").Inc()
}

func (m *cacheMetrics) RecordBlobMiss() {
	if m == nil {
		return
	}
	m.blobReads.WithLabelValues("miss").Inc()
}

func (m *cacheMetrics) RecordBookCount(count int) {
	if m == nil {
		return
	}
	m.bookCount.Set(float64(count))
}

func (m *cacheMetrics) RecordTotalSize(bytes int64) {
	if m == nil {
		return
	}
	m.totalSize.Set(float64(bytes))
}
