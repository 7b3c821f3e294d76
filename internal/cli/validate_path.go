package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/path"
)

// PathCheck is the validation outcome of one path.
type PathCheck struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Arity   int    `json:"arity,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewValidatePathCommand creates the validate-path command.
func NewValidatePathCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-path <path>...",
		Short: "Check canonical Proto.actor.func paths",
		Long: `Check that each argument is a well-formed canonical path.

A path has one to three dot-separated segments; each segment starts with a
letter followed by letters, digits, or underscores. No session is needed.

Exit codes:
  0 - Every path is valid
  1 - At least one path is invalid`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidatePath(rootOpts, args, cmd)
		},
	}
}

func checkPath(text string) PathCheck {
	p, err := path.Parse(text)
	if err == nil {
		return PathCheck{Path: text, Valid: true, Arity: p.Arity()}
	}
	check := PathCheck{Path: text, Message: err.Error()}
	var pe *path.Error
	if errors.As(err, &pe) {
		check.Kind = string(pe.Kind)
		check.Message = pe.Message
	}
	return check
}

func runValidatePath(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	checks := make([]PathCheck, len(args))
	invalid := 0
	for i, a := range args {
		checks[i] = checkPath(a)
		if !checks[i].Valid {
			invalid++
		}
	}

	if formatter.Format == "json" {
		if invalid == 0 {
			_ = formatter.Success(checks)
		} else {
			_ = formatter.Failure(compiler.ErrInvalidPath, fmt.Sprintf("%d invalid path(s)", invalid), checks)
		}
	} else {
		for _, c := range checks {
			if c.Valid {
				fmt.Fprintf(formatter.Writer, "✓ %s (arity %d)\n", c.Path, c.Arity)
			} else {
				fmt.Fprintf(formatter.Writer, "✗ %s: %s: %s\n", c.Path, c.Kind, c.Message)
			}
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid path(s)", invalid))
	}
	return nil
}
