package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status <event>",
		Short:         "Show an event's capacity and session counts",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			f := newFormatter(opts, cmd)
			st, err := a.engine.Stats(cmd.Context(), args[0])
			if err != nil {
				return queueFailure(f, "status failed", err)
			}

			text := fmt.Sprintf("event %s: capacity %d, timeout %s\n  active:    %d\n  waiting:   %d\n  completed: %d\n  expired:   %d",
				st.EventID, st.Capacity, st.Timeout, st.Active, st.Waiting, st.Completed, st.Expired)
			return f.Result(st, text)
		},
	}
}
