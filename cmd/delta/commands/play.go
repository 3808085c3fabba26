package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/delta/internal/app"
)

func (c *CLI) newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Preview the timeline in real time, dropping frames that arrive late",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sample, shift := sampleOptions(cmd)
			return c.app.Play(cmd.Context(), cmd.OutOrStdout(), app.PlayOptions{
				From:   durationFlag(cmd, "from"),
				Shift:  shift,
				Sample: sample,
			})
		},
	}
	cmd.Flags().Duration("from", 0, "Timeline position to start playing at")
	addSampleFlags(cmd)
	return cmd
}
