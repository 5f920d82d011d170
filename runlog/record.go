package runlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record describes one run.
type Record struct {
	RunID      string
	Dataset    string
	DataSize   int // number of base vectors
	NumQueries int
	Dimension  int
	K          int
	NProc      int
	QBlock     int
	BBlock     int
	Metric     string
	Start      time.Time
	End        time.Time
}

// NewRecord starts a record with a fresh run id and the current time.
func NewRecord(dataset string) Record {
	return Record{
		RunID:   uuid.NewString(),
		Dataset: dataset,
		Start:   time.Now(),
	}
}

// Duration returns End - Start.
func (r Record) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// columns is the table header; fields are written in this order.
var columns = []string{
	"run_id", "dataset", "data_size", "num_queries", "dim", "k",
	"nproc", "q_block", "b_block", "metric", "start", "end",
}

// unixSeconds formats t as fractional unix seconds with microsecond precision.
func unixSeconds(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

// token makes s safe for a space-separated column.
func token(s string) string {
	s = strings.Join(strings.Fields(s), "_")
	if s == "" {
		return "-"
	}
	return s
}

func (r Record) fields() []string {
	return []string{
		token(r.RunID),
		token(r.Dataset),
		strconv.Itoa(r.DataSize),
		strconv.Itoa(r.NumQueries),
		strconv.Itoa(r.Dimension),
		strconv.Itoa(r.K),
		strconv.Itoa(r.NProc),
		strconv.Itoa(r.QBlock),
		strconv.Itoa(r.BBlock),
		token(r.Metric),
		unixSeconds(r.Start),
		unixSeconds(r.End),
	}
}

// Attrs returns the record as slog attributes.
func (r Record) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("run_id", r.RunID),
		slog.String("dataset", r.Dataset),
		slog.Int("data_size", r.DataSize),
		slog.Int("num_queries", r.NumQueries),
		slog.Int("dim", r.Dimension),
		slog.Int("k", r.K),
		slog.Int("nproc", r.NProc),
		slog.Int("q_block", r.QBlock),
		slog.Int("b_block", r.BBlock),
		slog.String("metric", r.Metric),
		slog.Float64("start", float64(r.Start.UnixNano())/1e9),
		slog.Float64("end", float64(r.End.UnixNano())/1e9),
		slog.Duration("elapsed", r.Duration()),
	}
}

// Sink stores run records.
type Sink interface {
	Append(ctx context.Context, r Record) error
}

// LogSink emits each record as one structured log entry.
type LogSink struct {
	Logger *slog.Logger
}

// Append implements Sink.
func (s LogSink) Append(ctx context.Context, r Record) error {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.LogAttrs(ctx, slog.LevelInfo, "run timing", r.Attrs()...)
	return nil
}

// Multi fans a record out to several sinks and joins their errors.
type Multi []Sink

// Append implements Sink.
func (m Multi) Append(ctx context.Context, r Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
