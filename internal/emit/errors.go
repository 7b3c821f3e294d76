package emit

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes emission failures.
type ErrorKind string

const (
	// KindUnresolvableReference indicates an argument or target path that
	// could not be parsed or resolved.
	KindUnresolvableReference ErrorKind = "UnresolvableReference"

	// KindUnknownOpcode indicates an untagged opcode outside the table
	// under strict mode.
	KindUnknownOpcode ErrorKind = "UnknownOpcode"
)

// Error attributes a failure to the operation that caused it.
type Error struct {
	Kind      ErrorKind
	Opcode    string
	Token     string // offending token, if any
	Line      int
	Statement string // rendered source statement
	Err       error  // underlying path or registry error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Token != "" {
		msg += fmt.Sprintf(" %q", e.Token)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Statement != "" {
		msg += fmt.Sprintf(" in %q", e.Statement)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnknownOpcode reports whether err is an UnknownOpcode emission error.
func IsUnknownOpcode(err error) bool {
	var ee *Error
	return errors.As(err, &ee) && ee.Kind == KindUnknownOpcode
}

// IsUnresolvableReference reports whether err is an UnresolvableReference
// emission error.
func IsUnresolvableReference(err error) bool {
	var ee *Error
	return errors.As(err, &ee) && ee.Kind == KindUnresolvableReference
}
