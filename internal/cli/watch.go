package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	OptionFlags
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Recompile a unit whenever it changes",
		Long: `Compile a unit, then recompile it every time the file is written.

Each recompilation runs in a fresh session, so declarations from an
earlier version of the file never leak into the next one. Stop with Ctrl-C.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, args[0], cmd)
		},
	}

	opts.OptionFlags.bind(cmd)

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, file string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	copts, err := opts.OptionFlags.resolve(cmd)
	if err != nil {
		_ = formatter.Error(compiler.ErrInvalidOptions, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid options", err)
	}
	if _, err := os.Stat(file); err != nil {
		_ = formatter.Error(compiler.ErrFileNotFound, fmt.Sprintf("cannot read %s", file), err.Error())
		return WrapExitError(ExitCommandError, "cannot read "+file, err)
	}

	report := func(res *compiler.Result) {
		_ = outputCompileReport(formatter, &CompileReport{
			SessionID: res.SessionID,
			Units:     []UnitReport{newUnitReport(file, res, logger)},
		})
	}

	if err := watchFile(ctx, file, copts, logger, report); err != nil {
		_ = formatter.Error(compiler.ErrCompilationFailed, "watch failed", err.Error())
		return WrapExitError(ExitCommandError, "watch failed", err)
	}
	return nil
}

// compileFresh compiles file in a new session.
func compileFresh(file string, opts compiler.Options, logger zerolog.Logger) *compiler.Result {
	session := compiler.NewSession(compiler.WithLogger(logger))
	defer session.Close()

	src, err := os.ReadFile(file)
	if err != nil {
		// The file can vanish briefly during an atomic save.
		return &compiler.Result{
			SessionID: session.ID(),
			Err:       &compiler.ErrorInfo{Code: compiler.ErrFileNotFound, Message: err.Error()},
			Options:   opts,
		}
	}
	return session.Compile(string(src), opts)
}

// watchFile compiles file once, then again after every write or create
// event on it, until ctx is done. Each result is passed to onResult.
func watchFile(ctx context.Context, file string, opts compiler.Options, logger zerolog.Logger, onResult func(*compiler.Result)) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; atomic saves replace the file's inode.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	onResult(compileFresh(abs, opts, logger))
	logger.Info().Str("file", abs).Msg("watching for changes")

	name := filepath.Base(abs)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("unit changed")
			onResult(compileFresh(abs, opts, logger))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("file watcher error")
		}
	}
}
