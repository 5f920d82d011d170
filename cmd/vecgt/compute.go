package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/vecgt"
	"github.com/hupe1980/vecgt/distance"
	"github.com/hupe1980/vecgt/gtfile"
	"github.com/hupe1980/vecgt/internal/config"
	"github.com/hupe1980/vecgt/runlog"
	"github.com/hupe1980/vecgt/vectorset"
)

func newComputeCmd(a *app) *cobra.Command {
	cfg := config.Default()
	var configPath string

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute ground truth for a query set",
		Long: `Compute the exact k nearest base vectors of every query.

Settings come from an optional YAML run file (--config); flags given on the
command line override it.

Examples:
  vecgt compute --base base.fbin --queries query.fbin --k 100 --output gt.bin
  vecgt compute --config deep10m.yaml --workers 32
  vecgt compute --base s3://datasets/deep/base.fbin.zst --queries query.fbin \
      --q-block 100 --b-block 5000 --layout bin --output s3://datasets/deep/gt.ibin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run := cfg
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				overlay(cmd, &loaded, &cfg)
				run = loaded
				if !cmd.Flags().Changed("log-format") && !cmd.Flags().Changed("log-level") {
					if err := a.setupLogger(cmd.ErrOrStderr(), run.Log.Format, run.Log.Level); err != nil {
						return err
					}
				}
			}
			if err := run.Validate(); err != nil {
				return err
			}
			return a.compute(cmd.Context(), cmd, run)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML run file")
	f.StringVar(&cfg.Base, "base", cfg.Base, "base vector file")
	f.StringVar(&cfg.Queries, "queries", cfg.Queries, "query vector file")
	f.StringVar(&cfg.Output, "output", cfg.Output, "result file")
	f.IntVar(&cfg.K, "k", cfg.K, "neighbors per query")
	f.StringVar(&cfg.Metric, "metric", cfg.Metric, "distance: l2 or mips")
	f.IntVar(&cfg.QBlock, "q-block", cfg.QBlock, "queries per task (0 = all)")
	f.IntVar(&cfg.BBlock, "b-block", cfg.BBlock, "base vectors per scan step (0 = all)")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent tasks (0 = GOMAXPROCS)")
	f.StringVar(&cfg.ElementType, "element-type", cfg.ElementType, "element type: auto, float32, uint8 or int8")
	f.BoolVar(&cfg.Copy, "copy", cfg.Copy, "read inputs into memory instead of mapping them")
	f.StringVar(&cfg.Layout, "layout", cfg.Layout, "result layout: raw or bin")
	f.IntVar(&cfg.DistanceBits, "distance-bits", cfg.DistanceBits, "distance precision in the result: 32 or 64")
	f.StringVar(&cfg.Filter, "filter", cfg.Filter, "file of base indices allowed as neighbors")
	f.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "dataset label for timing records")
	f.StringVar(&cfg.Timings, "timings", cfg.Timings, "append a timing record to this space-separated table")
	f.StringVar(&cfg.Ledger, "ledger", cfg.Ledger, "append a timing record to this SQLite database")
	f.DurationVar(&cfg.ProgressInterval, "progress-interval", cfg.ProgressInterval, "minimum time between progress logs (0 = off)")
	return cmd
}

// overlay copies flags set on the command line from flags into dst.
func overlay(cmd *cobra.Command, dst, flags *config.Run) {
	set := cmd.Flags().Changed
	if set("base") {
		dst.Base = flags.Base
	}
	if set("queries") {
		dst.Queries = flags.Queries
	}
	if set("output") {
		dst.Output = flags.Output
	}
	if set("k") {
		dst.K = flags.K
	}
	if set("metric") {
		dst.Metric = flags.Metric
	}
	if set("q-block") {
		dst.QBlock = flags.QBlock
	}
	if set("b-block") {
		dst.BBlock = flags.BBlock
	}
	if set("workers") {
		dst.Workers = flags.Workers
	}
	if set("element-type") {
		dst.ElementType = flags.ElementType
	}
	if set("copy") {
		dst.Copy = flags.Copy
	}
	if set("layout") {
		dst.Layout = flags.Layout
	}
	if set("distance-bits") {
		dst.DistanceBits = flags.DistanceBits
	}
	if set("filter") {
		dst.Filter = flags.Filter
	}
	if set("dataset") {
		dst.Dataset = flags.Dataset
	}
	if set("timings") {
		dst.Timings = flags.Timings
	}
	if set("ledger") {
		dst.Ledger = flags.Ledger
	}
	if set("progress-interval") {
		dst.ProgressInterval = flags.ProgressInterval
	}
}

func (a *app) compute(ctx context.Context, cmd *cobra.Command, run config.Run) error {
	metric, err := distance.ParseMetric(run.Metric)
	if err != nil {
		return err
	}
	elem, err := vectorset.ParseElementType(run.ElementType)
	if err != nil {
		return err
	}
	layout, err := gtfile.ParseLayout(run.Layout)
	if err != nil {
		return err
	}

	record := runlog.NewRecord(run.Dataset)
	logger := a.logger.WithRunID(record.RunID)

	opts := []vecgt.Option{
		vecgt.WithMetric(metric),
		vecgt.WithQueryBlock(run.QBlock),
		vecgt.WithBaseBlock(run.BBlock),
		vecgt.WithWorkers(run.Workers),
		vecgt.WithLogger(logger),
		vecgt.WithProgressInterval(run.ProgressInterval),
	}
	if run.Filter != "" {
		bm, err := loadFilter(ctx, run.Filter)
		if err != nil {
			return err
		}
		opts = append(opts, vecgt.WithFilter(bm))
	}
	eng := vecgt.New(opts...)

	vsOpts := []vectorset.Option{vectorset.WithElementType(elem)}
	if run.Copy {
		vsOpts = append(vsOpts, vectorset.WithCopy())
	}
	base, err := a.load(ctx, eng, run.Base, vsOpts...)
	if err != nil {
		return err
	}
	defer base.Close()
	queries, err := a.load(ctx, eng, run.Queries, vsOpts...)
	if err != nil {
		return err
	}
	defer queries.Close()

	record.Start = time.Now()
	res, err := eng.Run(ctx, base, queries, run.K)
	if err != nil {
		return err
	}
	record.End = time.Now()

	store, name, err := openLocation(ctx, run.Output)
	if err != nil {
		return err
	}
	gtOpts := []gtfile.Option{gtfile.WithLayout(layout), gtfile.WithDistanceBits(run.DistanceBits)}
	size, _ := gtfile.Size(res.Len(), res.K(), gtOpts...)
	err = gtfile.WriteBlob(ctx, store, name, res, gtOpts...)
	logger.LogWrite(ctx, run.Output, size, err)
	if err != nil {
		return err
	}

	record.DataSize = base.Count()
	record.NumQueries = queries.Count()
	record.Dimension = base.Dimension()
	record.K = res.K()
	record.NProc = run.Workers
	if record.NProc == 0 {
		record.NProc = runtime.GOMAXPROCS(0)
	}
	record.QBlock = run.QBlock
	record.BBlock = run.BBlock
	record.Metric = metric.String()
	if err := a.recordRun(ctx, run, record); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d queries x %d neighbors (%s) in %s\n",
		run.Output, res.Len(), res.K(), humanize.IBytes(uint64(size)), record.Duration().Round(time.Millisecond))
	return nil
}

func (a *app) load(ctx context.Context, eng *vecgt.Engine, raw string, optFns ...vectorset.Option) (*vectorset.VectorSet, error) {
	store, name, err := openLocation(ctx, raw)
	if err != nil {
		return nil, err
	}
	return eng.Load(ctx, store, name, optFns...)
}

func (a *app) recordRun(ctx context.Context, run config.Run, r runlog.Record) error {
	sinks := runlog.Multi{runlog.LogSink{Logger: a.logger.Logger}}
	if run.Timings != "" {
		sinks = append(sinks, runlog.NewTableSink(run.Timings))
	}
	if run.Ledger != "" {
		ledger, err := runlog.OpenSQLite(ctx, run.Ledger)
		if err != nil {
			return err
		}
		defer ledger.Close()
		sinks = append(sinks, ledger)
	}
	return sinks.Append(ctx, r)
}
