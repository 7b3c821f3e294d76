package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/membrane"
	"github.com/Moop-Lang/Moop-wasm/internal/store"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Database string
	Session  string
	Unit     string
}

// LogEntry is one stored unit as reported by the log command.
type LogEntry struct {
	ID           string              `json:"id"`
	SessionID    string              `json:"session_id"`
	Seq          int64               `json:"seq"`
	Success      bool                `json:"success"`
	ProgramHash  string              `json:"program_hash,omitempty"`
	RTerms       int                 `json:"r_term_ops_count"`
	DTerms       int                 `json:"d_term_ops_count"`
	ErrorCode    string              `json:"error_code,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Crossings    []membrane.Crossing `json:"crossings,omitempty"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the stored compilation log",
		Long: `List units stored by "rio compile --db", ordered by seq.

With --unit, show one unit together with its membrane crossings.

Examples:
  rio log --db ./rio.db
  rio log --db ./rio.db --session 0192f0c4-...
  rio log --db ./rio.db --unit 3f1a... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "only units of this session")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "show a single unit with its crossings")

	return cmd
}

// openExistingStore opens a database that must already exist.
func openExistingStore(opts *RootOptions, cmd *cobra.Command, dbPath string) (*store.Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, err
	}
	return store.Open(dbPath, store.WithLogger(opts.logger(cmd.ErrOrStderr())))
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	st, err := openExistingStore(opts.RootOptions, cmd, opts.Database)
	if err != nil {
		_ = formatter.Error(compiler.ErrFileNotFound, "failed to open database", err.Error())
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Unit != "" {
		return showUnit(ctx, formatter, st, opts.Unit)
	}

	units, err := st.ListUnits(ctx, opts.Session)
	if err != nil {
		_ = formatter.Error(compiler.ErrCompilationFailed, "failed to read units", err.Error())
		return WrapExitError(ExitCommandError, "failed to read units", err)
	}

	entries := make([]LogEntry, len(units))
	for i, u := range units {
		entries[i] = newLogEntry(u)
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No units stored")
		return nil
	}
	for _, e := range entries {
		printLogEntry(formatter, e)
	}
	return nil
}

func showUnit(ctx context.Context, formatter *OutputFormatter, st *store.Store, id string) error {
	u, err := st.ReadUnit(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		_ = formatter.Error(compiler.ErrCompilationFailed, fmt.Sprintf("unit %s not found", id), nil)
		return NewExitError(ExitCommandError, "unit not found")
	}
	if err != nil {
		_ = formatter.Error(compiler.ErrCompilationFailed, "failed to read unit", err.Error())
		return WrapExitError(ExitCommandError, "failed to read unit", err)
	}

	crossings, err := st.ReadCrossings(ctx, id)
	if err != nil {
		_ = formatter.Error(compiler.ErrCompilationFailed, "failed to read crossings", err.Error())
		return WrapExitError(ExitCommandError, "failed to read crossings", err)
	}

	entry := newLogEntry(u)
	entry.Crossings = crossings

	if formatter.Format == "json" {
		return formatter.Success(entry)
	}
	printLogEntry(formatter, entry)
	for _, c := range crossings {
		fmt.Fprintf(formatter.Writer, "    crossing %d: %s @%s (cell %d)\n", c.Index, c.Opcode, c.Tag, c.CellID)
	}
	return nil
}

func newLogEntry(u store.Unit) LogEntry {
	return LogEntry{
		ID:           u.ID,
		SessionID:    u.SessionID,
		Seq:          u.Seq,
		Success:      u.Success,
		ProgramHash:  u.ProgramHash,
		RTerms:       u.RTerms,
		DTerms:       u.DTerms,
		ErrorCode:    u.ErrorCode,
		ErrorMessage: u.ErrorMessage,
	}
}

func printLogEntry(formatter *OutputFormatter, e LogEntry) {
	if e.Success {
		fmt.Fprintf(formatter.Writer, "✓ %s #%d %s  R=%d D=%d\n", e.SessionID, e.Seq, shortID(e.ID), e.RTerms, e.DTerms)
		return
	}
	fmt.Fprintf(formatter.Writer, "✗ %s #%d %s  [%s] %s\n", e.SessionID, e.Seq, shortID(e.ID), e.ErrorCode, e.ErrorMessage)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
