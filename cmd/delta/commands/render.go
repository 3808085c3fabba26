package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/delta/internal/app"
)

func (c *CLI) newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sample, shift := sampleOptions(cmd)
			metrics, _ := cmd.Flags().GetBool("metrics")
			return c.app.Render(cmd.Context(), cmd.OutOrStdout(), app.RenderOptions{
				At:      durationFlag(cmd, "at"),
				Shift:   shift,
				Sample:  sample,
				Metrics: metrics,
			})
		},
	}
	cmd.Flags().DurationP("at", "t", 0, "Timeline position to render")
	cmd.Flags().Bool("metrics", false, "Print cache metrics after rendering")
	addSampleFlags(cmd)
	return cmd
}
