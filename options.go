package vecgt

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecgt/distance"
)

// DefaultBaseBlock is the number of base vectors scanned per tile.
const DefaultBaseBlock = 5000

// DefaultProgressInterval is the minimum spacing of progress log records.
const DefaultProgressInterval = 10 * time.Second

type options struct {
	queryBlock       int
	baseBlock        int
	workers          int
	metric           distance.Metric
	filter           *roaring.Bitmap
	metricsCollector MetricsCollector
	logger           *Logger
	progressInterval time.Duration
}

// Option configures an Engine.
type Option func(*options)

// WithQueryBlock sets the number of queries processed by one task.
// Zero processes all queries as a single block.
func WithQueryBlock(n int) Option {
	return func(o *options) {
		o.queryBlock = n
	}
}

// WithBaseBlock sets the number of base vectors scanned per step.
// Zero scans the whole base set in one step.
func WithBaseBlock(n int) Option {
	return func(o *options) {
		o.baseBlock = n
	}
}

// WithWorkers limits how many query blocks are scanned concurrently.
// Zero uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMetric selects the distance. The default is squared Euclidean.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithFilter restricts candidate neighbors to the base indices in bm.
// Indices beyond the base set are ignored. A nil bitmap disables filtering.
//
// The bitmap must not be modified while a run is in progress.
func WithFilter(bm *roaring.Bitmap) Option {
	return func(o *options) {
		o.filter = bm
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vecgt.BasicMetricsCollector{}
//	eng := vecgt.New(vecgt.WithMetricsCollector(metrics))
//	// ... run ...
//	stats := metrics.GetStats()
//	fmt.Printf("pairs: %d, %.0f pairs/s\n", stats.DistancePairs, stats.PairsPerSec)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vecgt.NewJSONLogger(slog.LevelInfo)
//	eng := vecgt.New(vecgt.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithProgressInterval sets the minimum spacing of progress log records.
// Zero disables progress logging.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		baseBlock:        DefaultBaseBlock,
		workers:          runtime.GOMAXPROCS(0),
		metric:           distance.MetricL2,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		progressInterval: DefaultProgressInterval,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.workers == 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}
