package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewReapCommand creates the reap command.
func NewReapCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reap",
		Short: "Expire timed-out sessions once",
		Long: `Run a single reaper sweep: expire every open session older than its
event's timeout and promote waiting sessions into the reclaimed slots.

serve runs the same sweep on the configured interval.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			f := newFormatter(opts, cmd)
			report, err := a.engine.Reap(cmd.Context(), a.engine.Now())
			if err != nil {
				return queueFailure(f, "reap failed", err)
			}

			text := fmt.Sprintf("reaped %d events: %d expired, %d promoted, %d failed",
				report.Events, report.Expired, report.Promoted, report.Failed)
			if err := f.Result(reapView{
				Events:   report.Events,
				Expired:  report.Expired,
				Promoted: report.Promoted,
				Failed:   report.Failed,
			}, text); err != nil {
				return err
			}
			if report.Failed > 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("%d sessions could not be reaped", report.Failed))
			}
			return nil
		},
	}
}

type reapView struct {
	Events   int `json:"events"`
	Expired  int `json:"expired"`
	Promoted int `json:"promoted"`
	Failed   int `json:"failed"`
}
