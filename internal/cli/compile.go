package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/config"
	"github.com/Moop-Lang/Moop-wasm/internal/metrics"
	"github.com/Moop-Lang/Moop-wasm/internal/store"
)

// OptionFlags are the compile option flags shared by compile and watch.
type OptionFlags struct {
	Strict            bool
	AutoHoist         bool
	Debug             bool
	JSONOutput        bool
	ReversibleDefault bool
	OptionsFile       string
}

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	OptionFlags
	Database    string
	MetricsFile string
}

// UnitReport is the outcome of one compiled file.
type UnitReport struct {
	File                 string              `json:"file"`
	Success              bool                `json:"success"`
	UnitID               string              `json:"unit_id,omitempty"`
	Seq                  int64               `json:"seq"`
	CanonicalCode        string              `json:"canonical_code,omitempty"`
	HRIR                 json.RawMessage     `json:"hrir,omitempty"`
	MembraneLog          json.RawMessage     `json:"membrane_log,omitempty"`
	InheritanceRelations []string            `json:"inheritance_relations"`
	Stats                compiler.Stats      `json:"stats"`
	Warnings             []string            `json:"warnings"`
	Error                *compiler.ErrorInfo `json:"error,omitempty"`
	Document             json.RawMessage     `json:"document,omitempty"`

	listing string
}

// CompileReport is the outcome of one compile invocation.
type CompileReport struct {
	SessionID string       `json:"session_id"`
	Units     []UnitReport `json:"units"`
}

// failed returns the first failed unit, or nil.
func (r *CompileReport) failed() *UnitReport {
	for i := range r.Units {
		if !r.Units[i].Success {
			return &r.Units[i]
		}
	}
	return nil
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file>...",
		Short: "Compile Rio units to HRIR",
		Long: `Compile one or more Rio units in a single session.

Units are compiled in argument order and share one inheritance registry, so
prototypes declared by an earlier file are visible to later ones. Use "-" to
read a unit from stdin.

Options come from defaults, then --options (CUE, YAML, or TOML), then any
flag given explicitly on the command line.

Exit codes:
  0 - Every unit compiled
  1 - At least one unit failed to compile
  2 - Command error (missing file, invalid options, database error)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args, cmd)
		},
	}

	opts.OptionFlags.bind(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "append compiled units to this SQLite database")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics in textfile format")

	return cmd
}

func (opts *OptionFlags) bind(cmd *cobra.Command) {
	defaults := compiler.DefaultOptions()
	cmd.Flags().BoolVar(&opts.Strict, "strict", defaults.StrictMode, "reject unresolved references and unknown opcodes")
	cmd.Flags().BoolVar(&opts.AutoHoist, "auto-hoist", defaults.AutoHoist, "process declarations before operations")
	cmd.Flags().BoolVar(&opts.Debug, "debug", defaults.DebugMode, "include diagnostic fields in output")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json-output", defaults.JSONOutput, "build the aggregated JSON document per unit")
	cmd.Flags().BoolVar(&opts.ReversibleDefault, "reversible-default", defaults.ReversibleDefault, "classify untagged unknown opcodes as R-terms")
	cmd.Flags().StringVar(&opts.OptionsFile, "options", "", "options file (.cue, .yaml, .yml, .toml)")
}

// resolve layers defaults, the options file, and explicit flags.
func (opts *OptionFlags) resolve(cmd *cobra.Command) (compiler.Options, error) {
	o := compiler.DefaultOptions()
	if opts.OptionsFile != "" {
		loaded, err := config.Load(opts.OptionsFile)
		if err != nil {
			return compiler.Options{}, err
		}
		o = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("strict") {
		o.StrictMode = opts.Strict
	}
	if flags.Changed("auto-hoist") {
		o.AutoHoist = opts.AutoHoist
	}
	if flags.Changed("debug") {
		o.DebugMode = opts.Debug
	}
	if flags.Changed("json-output") {
		o.JSONOutput = opts.JSONOutput
	}
	if flags.Changed("reversible-default") {
		o.ReversibleDefault = opts.ReversibleDefault
	}
	return o, nil
}

// readSource reads a unit from a file, or from stdin for "-".
func readSource(name string, stdin io.Reader) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(name)
	return string(data), err
}

func runCompile(opts *CompileOptions, files []string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	copts, err := opts.OptionFlags.resolve(cmd)
	if err != nil {
		_ = formatter.Error(compiler.ErrInvalidOptions, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid options", err)
	}

	sources := make([]string, len(files))
	for i, f := range files {
		src, err := readSource(f, cmd.InOrStdin())
		if err != nil {
			code := compiler.ErrCompilationFailed
			if errors.Is(err, fs.ErrNotExist) {
				code = compiler.ErrFileNotFound
			}
			_ = formatter.Error(code, fmt.Sprintf("cannot read %s", f), err.Error())
			return WrapExitError(ExitCommandError, "cannot read "+f, err)
		}
		sources[i] = src
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database, store.WithLogger(logger))
		if err != nil {
			_ = formatter.Error(compiler.ErrCompilationFailed, "failed to open database", err.Error())
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
	}

	sessionOpts := []compiler.SessionOption{compiler.WithLogger(logger)}
	var reg *prometheus.Registry
	if opts.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		sessionOpts = append(sessionOpts, compiler.WithRecorder(metrics.NewWithRegistry(reg)))
	}
	session := compiler.NewSession(sessionOpts...)
	defer session.Close()

	report := &CompileReport{SessionID: session.ID(), Units: make([]UnitReport, 0, len(files))}
	for i, f := range files {
		formatter.VerboseLog("Compiling %s", f)
		res := session.Compile(sources[i], copts)
		report.Units = append(report.Units, newUnitReport(f, res, logger))

		if st != nil {
			if _, err := st.WriteResult(ctx, res); err != nil {
				_ = formatter.Error(compiler.ErrCompilationFailed, "failed to store unit", err.Error())
				return WrapExitError(ExitCommandError, "failed to store unit", err)
			}
		}
	}

	if reg != nil {
		if err := metrics.WriteTextfile(opts.MetricsFile, reg); err != nil {
			_ = formatter.Error(compiler.ErrCompilationFailed, "failed to write metrics", err.Error())
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
		formatter.VerboseLog("Wrote metrics to %s", opts.MetricsFile)
	}

	return outputCompileReport(formatter, report)
}

func newUnitReport(file string, res *compiler.Result, logger zerolog.Logger) UnitReport {
	u := UnitReport{
		File:                 file,
		Success:              res.Success,
		UnitID:               res.UnitID,
		Seq:                  res.Seq,
		CanonicalCode:        res.CanonicalCode,
		InheritanceRelations: res.InheritanceRelations,
		Stats:                res.Stats,
		Warnings:             res.Warnings,
		Error:                res.Err,
		listing:              res.ReversibleIR,
	}
	if res.HRIR != "" {
		u.HRIR = json.RawMessage(res.HRIR)
	}
	if res.MembraneLog != "" {
		u.MembraneLog = json.RawMessage(res.MembraneLog)
	}
	if res.JSON != "" {
		u.Document = json.RawMessage(res.JSON)
	}
	if u.Error != nil && !res.Options.DebugMode {
		info := *u.Error
		info.Kind = ""
		u.Error = &info
	}
	logger.Debug().Str("file", file).Bool("success", res.Success).Msg("unit compiled")
	return u
}

func outputCompileReport(formatter *OutputFormatter, report *CompileReport) error {
	failed := report.failed()

	if formatter.Format == "json" {
		if failed == nil {
			return formatter.Success(report)
		}
		_ = formatter.Failure(failed.Error.Code, failed.Error.Message, report)
		return NewExitError(ExitFailure, fmt.Sprintf("%s failed to compile", failed.File))
	}

	w := formatter.Writer
	for _, u := range report.Units {
		if !u.Success {
			fmt.Fprintf(w, "✗ %s [%s] %s\n", u.File, u.Error.Code, u.Error.Message)
			continue
		}
		fmt.Fprintf(w, "✓ %s: %d cell(s), %d R-term, %d D-term, %d crossing(s)\n",
			u.File, u.Stats.RTermOps+u.Stats.DTermOps, u.Stats.RTermOps, u.Stats.DTermOps, u.Stats.MembraneCrossings)
		for _, line := range strings.Split(strings.TrimSuffix(u.listing, "\n"), "\n") {
			if line != "" {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
		for _, warn := range u.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
	}
	if len(report.Units) > 0 {
		relations := report.Units[len(report.Units)-1].InheritanceRelations
		if len(relations) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Inheritance:")
			for _, rel := range relations {
				fmt.Fprintf(w, "  %s\n", rel)
			}
		}
	}

	if failed != nil {
		return NewExitError(ExitFailure, fmt.Sprintf("%s failed to compile", failed.File))
	}
	return nil
}
