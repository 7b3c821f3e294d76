package compiler

// Options configure one compilation.
type Options struct {
	// StrictMode turns unresolved references and untagged unknown opcodes
	// into errors instead of best-effort placeholders.
	StrictMode bool `json:"strict_mode" yaml:"strict_mode" toml:"strict_mode"`

	// AutoHoist processes every declaration (inheritance edges and member
	// definitions) before any operation.
	AutoHoist bool `json:"auto_hoist" yaml:"auto_hoist" toml:"auto_hoist"`

	// DebugMode adds diagnostic fields to serialized output.
	DebugMode bool `json:"debug_mode" yaml:"debug_mode" toml:"debug_mode"`

	// JSONOutput produces the aggregated JSON document.
	JSONOutput bool `json:"json_output" yaml:"json_output" toml:"json_output"`

	// ReversibleDefault is the class given to untagged unknown opcodes.
	ReversibleDefault bool `json:"reversible_default" yaml:"reversible_default" toml:"reversible_default"`
}

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() Options {
	return Options{
		StrictMode:        false,
		AutoHoist:         true,
		DebugMode:         false,
		JSONOutput:        false,
		ReversibleDefault: true,
	}
}
