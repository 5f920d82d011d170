package vecgt

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with vecgt-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithRunID adds a run identifier to the logger.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// LogLoad logs the outcome of loading a vector file.
func (l *Logger) LogLoad(ctx context.Context, name string, count, dim int, size int64, mapped bool, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "vectors loaded",
		"name", name,
		"count", count,
		"dimension", dim,
		"size", humanize.IBytes(uint64(max(size, 0))),
		"mapped", mapped,
		"elapsed", elapsed,
	)
}

// LogRunStart logs the shape of a ground-truth run.
func (l *Logger) LogRunStart(ctx context.Context, numBase, numQueries, k, qBlock, bBlock, workers int) {
	l.InfoContext(ctx, "ground truth started",
		"base", numBase,
		"queries", numQueries,
		"k", k,
		"q_block", qBlock,
		"b_block", bBlock,
		"workers", workers,
	)
}

// LogClamp logs that k exceeded the candidate universe.
func (l *Logger) LogClamp(ctx context.Context, requested, universe int) {
	l.WarnContext(ctx, "k exceeds candidate count, clamping",
		"requested", requested,
		"universe", universe,
	)
}

// LogProgress logs scan progress in tiles (query block x base block).
func (l *Logger) LogProgress(ctx context.Context, done, total int64, elapsed time.Duration) {
	pct := 0.0
	if total > 0 {
		pct = float64(done) * 100 / float64(total)
	}
	l.InfoContext(ctx, "ground truth progress",
		"tiles_done", done,
		"tiles_total", total,
		"percent", humanize.FtoaWithDigits(pct, 1),
		"elapsed", elapsed.Round(time.Millisecond),
	)
}

// LogRun logs the outcome of a ground-truth run.
func (l *Logger) LogRun(ctx context.Context, numQueries, k int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "ground truth failed",
			"queries", numQueries,
			"k", k,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "ground truth completed",
		"queries", numQueries,
		"k", k,
		"elapsed", elapsed.Round(time.Millisecond),
	)
}

// LogWrite logs the outcome of writing a result file.
func (l *Logger) LogWrite(ctx context.Context, name string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "result written",
		"name", name,
		"size", humanize.IBytes(uint64(max(size, 0))),
	)
}
