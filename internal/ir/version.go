package ir

// Version constants for the HRIR schema and compiler.
const (
	// HRIRVersion is the HRIR JSON schema version.
	HRIRVersion = "1"

	// CompilerVersion identifies the compiler build.
	CompilerVersion = "Rio+RioVN v1.0.0"
)
