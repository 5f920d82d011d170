package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/vecgt/vectorset"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the shape of a vector file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, name, err := openLocation(ctx, args[0])
			if err != nil {
				return err
			}
			h, err := vectorset.ReadHeader(ctx, store, name)
			if err != nil {
				return err
			}
			a.logger.DebugContext(ctx, "header read", "name", name, "size", h.Size)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "file:       %s\n", args[0])
			fmt.Fprintf(w, "count:      %d\n", h.Count)
			fmt.Fprintf(w, "dimension:  %d\n", h.Dimension)
			fmt.Fprintf(w, "element:    %s\n", h.Element)
			fmt.Fprintf(w, "stored:     %s\n", humanize.IBytes(uint64(h.Size)))
			fmt.Fprintf(w, "decoded:    %s\n", humanize.IBytes(uint64(h.PayloadSize())))
			if h.Compression == vectorset.CompressionNone && h.Size != h.PayloadSize() {
				fmt.Fprintf(w, "warning:    stored size differs from header by %d bytes\n", h.Size-h.PayloadSize())
			}
			return nil
		},
	}
}
