package vecgt

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordLoad is called after a vector file has been loaded.
	// bytes is the decoded payload size, err is nil if successful.
	RecordLoad(bytes int64, duration time.Duration, err error)

	// RecordBlock is called after one query block has been scanned against one
	// base block.
	RecordBlock(queries, bases int, duration time.Duration)

	// RecordRun is called after each ground-truth run.
	RecordRun(queries, k int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int64, time.Duration, error)    {}
func (NoopMetricsCollector) RecordBlock(int, int, time.Duration)       {}
func (NoopMetricsCollector) RecordRun(int, int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadBytes      atomic.Int64
	LoadTotalNanos atomic.Int64
	BlockCount     atomic.Int64
	BlockPairs     atomic.Int64
	BlockNanos     atomic.Int64
	RunCount       atomic.Int64
	RunErrors      atomic.Int64
	RunQueries     atomic.Int64
	RunTotalNanos  atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int64, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(bytes)
}

// RecordBlock implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBlock(queries, bases int, duration time.Duration) {
	b.BlockCount.Add(1)
	b.BlockPairs.Add(int64(queries) * int64(bases))
	b.BlockNanos.Add(duration.Nanoseconds())
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(queries, k int, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	b.RunQueries.Add(int64(queries))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:     b.LoadCount.Load(),
		LoadErrors:    b.LoadErrors.Load(),
		LoadBytes:     b.LoadBytes.Load(),
		BlockCount:    b.BlockCount.Load(),
		DistancePairs: b.BlockPairs.Load(),
		PairsPerSec:   b.pairsPerSec(),
		RunCount:      b.RunCount.Load(),
		RunErrors:     b.RunErrors.Load(),
		RunQueries:    b.RunQueries.Load(),
		RunAvgNanos:   b.getAvgRunNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgRunNanos() int64 {
	count := b.RunCount.Load()
	if count == 0 {
		return 0
	}
	return b.RunTotalNanos.Load() / count
}

// pairsPerSec divides by time summed across workers, so it is a per-worker rate.
func (b *BasicMetricsCollector) pairsPerSec() float64 {
	nanos := b.BlockNanos.Load()
	if nanos == 0 {
		return 0
	}
	return float64(b.BlockPairs.Load()) / time.Duration(nanos).Seconds()
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount     int64
	LoadErrors    int64
	LoadBytes     int64
	BlockCount    int64
	DistancePairs int64
	PairsPerSec   float64
	RunCount      int64
	RunErrors     int64
	RunQueries    int64
	RunAvgNanos   int64
}
