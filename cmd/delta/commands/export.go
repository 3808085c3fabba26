package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/delta/internal/app"
)

func (c *CLI) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Export frames into a content-addressed frame store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, shift := sampleOptions(cmd)
			metrics, _ := cmd.Flags().GetBool("metrics")
			return c.app.Export(cmd.Context(), cmd.OutOrStdout(), app.ExportOptions{
				Dir:     args[0],
				From:    durationFlag(cmd, "from"),
				To:      durationFlag(cmd, "to"),
				Shift:   shift,
				Sample:  sample,
				Metrics: metrics,
			})
		},
	}
	cmd.Flags().Duration("from", 0, "First timeline position to export")
	cmd.Flags().Duration("to", 0, "Timeline position to stop at (default: end of timeline)")
	cmd.Flags().Bool("metrics", false, "Print cache metrics after exporting")
	addSampleFlags(cmd)
	return cmd
}
