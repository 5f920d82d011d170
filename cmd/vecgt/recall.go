package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vecgt/gtfile"
	"github.com/hupe1980/vecgt/recall"
)

type recallOptions struct {
	result       string
	truth        string
	k            int
	at           int
	layout       string
	distanceBits int
}

func newRecallCmd(a *app) *cobra.Command {
	o := recallOptions{k: 100, layout: "raw", distanceBits: 32}
	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Measure recall of a result against ground truth",
		Long: `Measure recall@at of a result file against a ground-truth file.

Both files must use the same layout. For the raw layout --k is the number of
neighbors per row in both files; the bin layout reads it from the preamble.

Example:
  vecgt recall --result ann.bin --truth gt.bin --k 100 --at 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := a.recall(cmd.Context(), o)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rep.String())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.result, "result", "", "result file to evaluate")
	f.StringVar(&o.truth, "truth", "", "ground-truth file")
	f.IntVar(&o.k, "k", o.k, "neighbors per row (raw layout)")
	f.IntVar(&o.at, "at", 0, "recall cutoff (0 = k)")
	f.StringVar(&o.layout, "layout", o.layout, "file layout: raw or bin")
	f.IntVar(&o.distanceBits, "distance-bits", o.distanceBits, "distance precision: 32 or 64")
	_ = cmd.MarkFlagRequired("result")
	_ = cmd.MarkFlagRequired("truth")
	return cmd
}

func (a *app) recall(ctx context.Context, o recallOptions) (recall.Report, error) {
	layout, err := gtfile.ParseLayout(o.layout)
	if err != nil {
		return recall.Report{}, err
	}
	opts := []gtfile.Option{gtfile.WithLayout(layout), gtfile.WithDistanceBits(o.distanceBits)}
	k := o.k
	if layout == gtfile.LayoutBin {
		k = 0
	}

	read := func(raw string) (*gtfile.Table, error) {
		store, name, err := openLocation(ctx, raw)
		if err != nil {
			return nil, err
		}
		return gtfile.ReadBlob(ctx, store, name, 0, k, opts...)
	}
	result, err := read(o.result)
	if err != nil {
		return recall.Report{}, err
	}
	truth, err := read(o.truth)
	if err != nil {
		return recall.Report{}, err
	}

	rep, err := recall.Compute(result, truth, o.at)
	if err != nil {
		return rep, err
	}
	a.logger.InfoContext(ctx, "recall measured",
		"queries", rep.Queries,
		"at", rep.At,
		"recall", rep.Recall,
		"p05", rep.P05,
	)
	return rep, nil
}
