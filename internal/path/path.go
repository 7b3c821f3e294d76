// Package path implements canonical Proto.Actor.Func paths.
//
// A canonical path has one to three dot-separated segments. Each segment
// starts with a letter and continues with letters, digits, or underscores.
// Paths are validated once, at Parse time, and are immutable afterwards.
package path

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxSegments is the largest arity a canonical path may have.
const MaxSegments = 3

// segmentPattern matches a single identifier segment.
var segmentPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ErrorKind categorizes path parse failures.
type ErrorKind string

const (
	// KindMalformedSegment indicates an empty segment or one outside the identifier grammar.
	KindMalformedSegment ErrorKind = "MalformedSegment"

	// KindWrongArity indicates a segment count outside {1,2,3}.
	KindWrongArity ErrorKind = "WrongArity"
)

// Error is returned by Parse.
type Error struct {
	Kind    ErrorKind
	Input   string
	Segment int // zero-based index of the offending segment, -1 for arity errors
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %q: %s", e.Kind, e.Input, e.Message)
}

// CanonicalPath is a validated Proto[.Actor[.Func]] triple.
// The zero value is not a valid path; use Parse or MustParse.
type CanonicalPath struct {
	proto string
	actor string
	fn    string
	arity int
}

// Parse validates text and returns the canonical path it denotes.
func Parse(text string) (CanonicalPath, error) {
	segments := strings.Split(text, ".")
	if len(segments) > MaxSegments {
		return CanonicalPath{}, &Error{
			Kind:    KindWrongArity,
			Input:   text,
			Segment: -1,
			Message: fmt.Sprintf("expected 1 to %d segments, got %d", MaxSegments, len(segments)),
		}
	}

	for i, seg := range segments {
		if seg == "" {
			return CanonicalPath{}, &Error{
				Kind:    KindMalformedSegment,
				Input:   text,
				Segment: i,
				Message: fmt.Sprintf("segment %d is empty", i),
			}
		}
		if !segmentPattern.MatchString(seg) {
			return CanonicalPath{}, &Error{
				Kind:    KindMalformedSegment,
				Input:   text,
				Segment: i,
				Message: fmt.Sprintf("segment %q is not an identifier", seg),
			}
		}
	}

	p := CanonicalPath{proto: segments[0], arity: len(segments)}
	if len(segments) > 1 {
		p.actor = segments[1]
	}
	if len(segments) > 2 {
		p.fn = segments[2]
	}
	return p, nil
}

// ParseArity is like Parse but additionally requires exactly want segments.
func ParseArity(text string, want int) (CanonicalPath, error) {
	p, err := Parse(text)
	if err != nil {
		return CanonicalPath{}, err
	}
	if p.arity != want {
		return CanonicalPath{}, &Error{
			Kind:    KindWrongArity,
			Input:   text,
			Segment: -1,
			Message: fmt.Sprintf("expected %d segment(s), got %d", want, p.arity),
		}
	}
	return p, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or with literal input.
func MustParse(text string) CanonicalPath {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// New builds a path from already separated segments.
// Empty trailing segments lower the arity; validation is the same as Parse.
func New(proto, actor, fn string) (CanonicalPath, error) {
	switch {
	case fn != "":
		return Parse(proto + "." + actor + "." + fn)
	case actor != "":
		return Parse(proto + "." + actor)
	default:
		return Parse(proto)
	}
}

// Valid reports whether text is a well-formed canonical path.
func Valid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// IsIdentifier reports whether s is a single valid segment.
func IsIdentifier(s string) bool {
	return segmentPattern.MatchString(s)
}

// Proto returns the prototype segment.
func (p CanonicalPath) Proto() string { return p.proto }

// Actor returns the actor segment, or "" for a bare prototype.
func (p CanonicalPath) Actor() string { return p.actor }

// Func returns the function segment, or "" when arity < 3.
func (p CanonicalPath) Func() string { return p.fn }

// Arity returns the number of segments (1, 2 or 3), or 0 for the zero value.
func (p CanonicalPath) Arity() int { return p.arity }

// IsZero reports whether p is the zero value.
func (p CanonicalPath) IsZero() bool { return p.arity == 0 }

// Member returns the actor-relative member key: "actor" or "actor.func".
func (p CanonicalPath) Member() string {
	if p.fn != "" {
		return p.actor + "." + p.fn
	}
	return p.actor
}

// WithProto returns the same member rooted at another prototype.
func (p CanonicalPath) WithProto(proto string) CanonicalPath {
	p.proto = proto
	return p
}

// String renders the path. Rendering a parsed path reproduces its input exactly.
func (p CanonicalPath) String() string {
	switch p.arity {
	case 0:
		return ""
	case 1:
		return p.proto
	case 2:
		return p.proto + "." + p.actor
	default:
		return p.proto + "." + p.actor + "." + p.fn
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p CanonicalPath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, validating the input.
func (p *CanonicalPath) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
