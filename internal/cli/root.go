package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/admit/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Config   string // CUE config file; empty means built-in defaults
	Database string // overrides the config's database path

	// engineOptions are appended when commands build an engine (for testing).
	engineOptions []engine.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the admit CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admit",
		Short: "admit - checkout admission queue",
		Long: `Admission queue for high-demand ticket checkouts.

Each event admits a fixed number of concurrent checkout sessions. Further
participants wait in first-come order and are promoted as sessions complete,
are cancelled, or time out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to CUE config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewReapCommand(opts))
	cmd.AddCommand(NewEnterCommand(opts))
	cmd.AddCommand(NewPollCommand(opts))
	cmd.AddCommand(NewExitCommand(opts, "complete"))
	cmd.AddCommand(NewExitCommand(opts, "cancel"))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
