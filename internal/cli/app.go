package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/admit/internal/config"
	"github.com/roach88/admit/internal/engine"
	"github.com/roach88/admit/internal/queue"
	"github.com/roach88/admit/internal/store"
)

// app is what every queue command needs: configuration, an open store and
// an engine over both.
type app struct {
	cfg    *config.Config
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// newLogger returns a text handler logger at info, or debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config, or returns the defaults when none is given.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.Config == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFile(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// openApp loads config, opens the database and builds the engine.
// Callers must Close the returned app.
func openApp(opts *RootOptions, cmd *cobra.Command, extra ...engine.Option) (*app, error) {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Database
	if opts.Database != "" {
		dbPath = opts.Database
	}

	logger.Debug("opening database", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	engineOpts := []engine.Option{engine.WithLogger(logger)}
	engineOpts = append(engineOpts, opts.engineOptions...)
	engineOpts = append(engineOpts, extra...)

	return &app{
		cfg:    cfg,
		store:  st,
		engine: engine.New(st, cfg, engineOpts...),
		logger: logger,
	}, nil
}

// Close closes the store.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}

// queueFailure reports a queue error and returns the matching ExitError.
// Refusals (unknown event or session, empty token) exit 1; store failures
// and anything unexpected exit 2.
func queueFailure(f *OutputFormatter, message string, err error) error {
	code := queue.CodeOf(err)

	exit := ExitCommandError
	switch code {
	case queue.ErrCodeEventNotFound, queue.ErrCodeSessionNotFound, queue.ErrCodeInvalidToken:
		exit = ExitFailure
	case "":
		code = "INTERNAL"
	}

	if ferr := f.Error(string(code), err.Error(), nil); ferr != nil {
		return ferr
	}
	return WrapExitError(exit, message, err)
}
