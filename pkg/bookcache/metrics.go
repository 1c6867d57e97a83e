package bookcache

import "time"

// Metrics provides observability for cache operations.
//
// Implementations can collect counters and latency for saves, removals
// and blob reads. This is optional. A nil Metrics disables collection
// with zero overhead.
//
// Example implementations:
//   - Prometheus metrics (pkg/metrics/prometheus)
//   - In-memory counters for testing
type Metrics interface {
	// ObserveSave records a completed save with the book file size
	ObserveSave(bytes int64, duration time.Duration)

	// RecordSaveFailure records a failed save by error kind
	RecordSaveFailure(kind ErrorKind)

	// ObserveRemove records a completed removal
	ObserveRemove(duration time.Duration)

	// RecordBlobHit records a GetOfflineFile that found a cached copy
	RecordBlobHit()

	// RecordBlobMiss records a GetOfflineFile for a book not cached
	RecordBlobMiss()

	// RecordBookCount records the current number of cached books
	RecordBookCount(count int)

	// RecordTotalSize records the summed size of all cached book files
	RecordTotalSize(bytes int64)
}
