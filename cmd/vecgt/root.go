package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vecgt"
	"github.com/hupe1980/vecgt/internal/config"
)

// app carries state shared by all subcommands.
type app struct {
	logFormat string
	logLevel  string
	logger    *vecgt.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "vecgt",
		Short: "Exact k-NN ground truth for vector datasets",
		Long: `vecgt computes exact k-nearest-neighbor ground truth by brute force.

Vector files use the [int32 count][int32 dim][float32...] layout (.fbin);
.u8bin and .i8bin hold byte elements, and .zst, .gz or .lz4 suffixes mark
compressed files. Locations may be local paths, s3://bucket/key or
minio://host/bucket/key.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogger(cmd.ErrOrStderr(), a.logFormat, a.logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text or json")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	cmd.AddCommand(newComputeCmd(a))
	cmd.AddCommand(newRecallCmd(a))
	cmd.AddCommand(newInspectCmd(a))
	return cmd
}

func (a *app) setupLogger(w io.Writer, format, level string) error {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		a.logger = vecgt.NewLogger(slog.NewTextHandler(w, opts))
	case "json":
		a.logger = vecgt.NewLogger(slog.NewJSONHandler(w, opts))
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}
