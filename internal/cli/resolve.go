package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Sources []string
}

// Resolution is the outcome of resolving one path.
type Resolution struct {
	Path       string   `json:"path"`
	Resolved   bool     `json:"resolved"`
	Target     string   `json:"target,omitempty"`
	Definer    string   `json:"definer,omitempty"`
	Depth      int      `json:"depth"`
	Linearized []string `json:"linearized,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <path>...",
		Short: "Resolve members through the inheritance graph",
		Long: `Compile the --source units into a fresh session, then resolve each path
against the resulting registry and print the defining prototype and the
lookup order that found it.

Examples:
  rio resolve --source animals.rio Dog.speak
  rio resolve --source base.rio --source dog.rio Dog.speak Dog.fetch`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Sources, "source", "s", nil, "unit to compile before resolving (repeatable)")

	return cmd
}

func runResolve(opts *ResolveOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	session := compiler.NewSession(compiler.WithLogger(opts.logger(cmd.ErrOrStderr())))
	defer session.Close()

	for _, f := range opts.Sources {
		src, err := readSource(f, cmd.InOrStdin())
		if err != nil {
			code := compiler.ErrCompilationFailed
			if errors.Is(err, fs.ErrNotExist) {
				code = compiler.ErrFileNotFound
			}
			_ = formatter.Error(code, fmt.Sprintf("cannot read %s", f), err.Error())
			return WrapExitError(ExitCommandError, "cannot read "+f, err)
		}
		// Declarations applied before a failure stay in the registry, so a
		// failed unit still contributes what it declared.
		if res := session.Compile(src, compiler.DefaultOptions()); !res.Success {
			formatter.VerboseLog("%s: [%s] %s", f, res.ErrorCode(), res.ErrorMessage())
		}
	}

	out := make([]Resolution, len(paths))
	unresolved := 0
	for i, p := range paths {
		out[i] = resolveOne(session, p)
		if !out[i].Resolved {
			unresolved++
		}
	}

	if formatter.Format == "json" {
		if unresolved == 0 {
			_ = formatter.Success(out)
		} else {
			_ = formatter.Failure(compiler.ErrStrictModeViolation, fmt.Sprintf("%d unresolved path(s)", unresolved), out)
		}
	} else {
		for _, r := range out {
			if r.Resolved {
				fmt.Fprintf(formatter.Writer, "%s -> %s (depth %d, via %v)\n", r.Path, r.Target, r.Depth, r.Linearized)
			} else {
				fmt.Fprintf(formatter.Writer, "%s: %s: %s\n", r.Path, r.Kind, r.Message)
			}
		}
	}

	if unresolved > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d unresolved path(s)", unresolved))
	}
	return nil
}

func resolveOne(session *compiler.Session, text string) Resolution {
	target, err := session.Resolve(text)
	if err != nil {
		return Resolution{
			Path:    text,
			Kind:    compiler.Kind(err),
			Message: err.Error(),
		}
	}
	return Resolution{
		Path:       text,
		Resolved:   true,
		Target:     target.Path.String(),
		Definer:    target.Definer,
		Depth:      target.Depth,
		Linearized: session.Linearize(target.Requested.Proto()),
	}
}
