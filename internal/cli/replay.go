package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []store.ReplayReport `json:"sessions"`
	TotalUnits       int                  `json:"total_units"`
	AllDeterministic bool                 `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Recompile the stored log and verify determinism",
		Long: `Recompile every stored session, unit by unit in seq order, in a fresh
session and compare outcome, program hash, and membrane hash with what was
stored.

Exit codes:
  0 - Every session is deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  rio replay --db ./rio.db
  rio replay --db ./rio.db --session 0192f0c4-...
  rio replay --db ./rio.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	st, err := openExistingStore(opts.RootOptions, cmd, opts.Database)
	if err != nil {
		_ = formatter.Error(compiler.ErrFileNotFound, "failed to open database", err.Error())
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	sessions := []string{opts.Session}
	if opts.Session == "" {
		if sessions, err = st.ListSessions(ctx); err != nil {
			_ = formatter.Error(compiler.ErrCompilationFailed, "failed to list sessions", err.Error())
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{Sessions: []store.ReplayReport{}, AllDeterministic: true}
	for _, id := range sessions {
		formatter.VerboseLog("Replaying session %s", id)
		report, err := st.Replay(ctx, id)
		if err != nil {
			_ = formatter.Error(compiler.ErrCompilationFailed, "replay failed", err.Error())
			return WrapExitError(ExitCommandError, "replay failed", err)
		}
		result.Sessions = append(result.Sessions, report)
		result.TotalUnits += report.Units
		if !report.Deterministic() {
			result.AllDeterministic = false
		}
	}

	if formatter.Format == "json" {
		if result.AllDeterministic {
			_ = formatter.Success(result)
		} else {
			_ = formatter.Failure(compiler.ErrCompilationFailed, "non-deterministic replay", result)
		}
	} else {
		for _, r := range result.Sessions {
			if r.Deterministic() {
				fmt.Fprintf(formatter.Writer, "✓ %s: %d unit(s) deterministic\n", r.SessionID, r.Units)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s: %d mismatch(es)\n", r.SessionID, len(r.Mismatches))
			for _, m := range r.Mismatches {
				fmt.Fprintf(formatter.Writer, "    #%d %s: stored %q, replayed %q\n", m.Seq, m.Field, m.Stored, m.Replayed)
			}
		}
		fmt.Fprintf(formatter.Writer, "\n%d session(s), %d unit(s)\n", len(result.Sessions), result.TotalUnits)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "non-deterministic replay")
	}
	return nil
}
