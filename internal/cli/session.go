package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/admit/internal/engine"
	"github.com/roach88/admit/internal/queue"
	"github.com/roach88/admit/internal/server"
)

// NewEnterCommand creates the enter command.
func NewEnterCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "enter <event> <token>",
		Short: "Enter an event's queue",
		Long: `Enter an event's queue with a client token.

A token that already holds an open session for the event gets that session
back instead of a new one.

Example:
  admit enter --config admit.cue gala device-7f3a`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			f := newFormatter(opts, cmd)
			ticket, err := a.engine.Enter(cmd.Context(), args[0], args[1])
			if err != nil {
				return queueFailure(f, "enter failed", err)
			}
			return f.Result(server.NewSessionResponse(ticket), describeTicket(ticket))
		},
	}
}

// NewPollCommand creates the poll command.
func NewPollCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "poll <session>",
		Short:         "Show a session's status and queue position",
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
			ticket, err := a.engine.Poll(cmd.Context(), args[0])
			if err != nil {
				return queueFailure(f, "poll failed", err)
			}
			return f.Result(server.NewSessionResponse(ticket), describeTicket(ticket))
		},
	}
}

// NewExitCommand creates the complete or cancel command.
func NewExitCommand(opts *RootOptions, name string) *cobra.Command {
	outcome, short := queue.StatusCompleted, "Complete a checkout session"
	if name == "cancel" {
		outcome, short = queue.StatusExpired, "Cancel a session and leave the queue"
	}

	return &cobra.Command{
		Use:           name + " <session>",
		Short:         short,
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
			res, err := a.engine.Exit(cmd.Context(), args[0], outcome)
			if err != nil {
				return queueFailure(f, name+" failed", err)
			}
			return f.Result(server.NewExitResponse(res), describeExit(res))
		},
	}
}

func describeTicket(t engine.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %s (%s): %s", t.Session.ID, t.Session.EventID, t.Session.Status)
	if t.Session.Status == queue.StatusWaiting && t.Position > 0 {
		fmt.Fprintf(&b, ", position %d", t.Position)
	}
	if t.Reentered {
		b.WriteString(" [re-entered]")
	}
	return b.String()
}

func describeExit(r engine.ExitResult) string {
	if !r.Changed {
		return fmt.Sprintf("session %s already %s", r.Session.ID, r.Session.Status)
	}
	s := fmt.Sprintf("session %s: %s", r.Session.ID, r.Session.Status)
	if r.Promoted != nil {
		s += fmt.Sprintf("; promoted %s", r.Promoted.ID)
	}
	return s
}
