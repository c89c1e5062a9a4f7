package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/admit/internal/engine"
	"github.com/roach88/admit/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reaper",
		Long: `Run the admission queue service.

Serves the HTTP API, sweeps timed-out sessions on the configured reaper
interval and logs every session transition. Stops gracefully on SIGINT or
SIGTERM.

Example:
  admit serve --config admit.cue
  admit serve --config admit.cue --addr 127.0.0.1:9090 --db /var/lib/admit.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	feed := engine.NewFeed()
	a, err := openApp(opts.RootOptions, cmd, engine.WithFeed(feed))
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.ServerAddr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("admit starting",
		"addr", addr,
		"events", len(a.cfg.Events),
		"reaper_interval", a.cfg.ReaperInterval,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(a.engine, a.logger).Serve(ctx, addr)
	})
	g.Go(func() error {
		return ignoreCanceled(engine.NewReaper(a.engine, a.cfg.ReaperInterval).Run(ctx))
	})
	g.Go(func() error {
		defer feed.Close()
		return logTransitions(ctx, feed, a.logger)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitCommandError, "serve failed", err)
	}

	a.logger.Info("admit stopped")
	fmt.Fprintln(cmd.OutOrStdout(), "admit stopped")
	return nil
}

// logTransitions drains the feed into the log until ctx is done.
func logTransitions(ctx context.Context, feed *engine.Feed, logger *slog.Logger) error {
	for {
		t, err := feed.Next(ctx)
		if err != nil {
			if errors.Is(err, engine.ErrFeedClosed) {
				return nil
			}
			return ignoreCanceled(err)
		}
		logger.Info("transition",
			"event_id", t.EventID,
			"session_id", t.SessionID,
			"from", t.From,
			"to", t.To,
			"at", t.At,
		)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
