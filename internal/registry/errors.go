package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes registry failures.
type ErrorKind string

const (
	// KindCycle indicates an edge that would close a cycle in the inheritance graph.
	KindCycle ErrorKind = "Cycle"

	// KindUnresolved indicates no prototype in the lookup closure defines a member.
	KindUnresolved ErrorKind = "Unresolved"
)

// Error represents a registry failure.
//
// For cycles, Path holds the cycle as prototype names starting and ending at
// the child of the rejected edge: ["A", "B", "C", "A"] reads "A <- B <- C <- A".
// For unresolved members, Searched holds the prototypes visited in lookup order.
type Error struct {
	Kind     ErrorKind
	Message  string
	Path     []string
	Searched []string
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindCycle && len(e.Path) > 0:
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(e.Path, " <- "))
	case e.Kind == KindUnresolved && len(e.Searched) > 0:
		return fmt.Sprintf("%s: %s (searched %s)", e.Kind, e.Message, strings.Join(e.Searched, ", "))
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// IsCycle returns true if err is a cycle rejection.
// Uses errors.As to handle wrapped errors.
func IsCycle(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == KindCycle
	}
	return false
}

// IsUnresolved returns true if err is an unresolved member lookup.
// Uses errors.As to handle wrapped errors.
func IsUnresolved(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == KindUnresolved
	}
	return false
}

func newCycleError(child, parent string, path []string) *Error {
	return &Error{
		Kind:    KindCycle,
		Message: fmt.Sprintf("declaring %s <- %s would create an inheritance cycle", child, parent),
		Path:    path,
	}
}

func newUnresolvedError(member string, searched []string) *Error {
	return &Error{
		Kind:     KindUnresolved,
		Message:  fmt.Sprintf("no prototype defines %s", member),
		Searched: searched,
	}
}
