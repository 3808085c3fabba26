package commands

import (
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/delta/internal/app"
	"go.trai.ch/delta/internal/core/domain"
)

// addSampleFlags registers the flags every command on the sample project takes.
func addSampleFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("shift", 0, "Move the first clip, and the clips linked to it, to start at this time")
	cmd.Flags().String("overlay", "", "Frame store to draw over the sample at half opacity")
}

func sampleOptions(cmd *cobra.Command) (app.SampleOptions, domain.Time) {
	overlay, _ := cmd.Flags().GetString("overlay")
	shift, _ := cmd.Flags().GetDuration("shift")
	return app.SampleOptions{Overlay: overlay}, seconds(shift)
}

func durationFlag(cmd *cobra.Command, name string) domain.Time {
	d, _ := cmd.Flags().GetDuration(name)
	return seconds(d)
}

func seconds(d time.Duration) domain.Time {
	return domain.Seconds(d.Seconds())
}
