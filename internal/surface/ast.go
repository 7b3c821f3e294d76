package surface

import "strings"

// StatementKind identifies the shape of a statement.
type StatementKind int

const (
	// StmtInherit is "Child <- Parent".
	StmtInherit StatementKind = iota + 1

	// StmtDefine is "def Proto[.actor[.func]]".
	StmtDefine

	// StmtOperation is "[@tag] target -> selector arg*".
	StmtOperation
)

func (k StatementKind) String() string {
	switch k {
	case StmtInherit:
		return "inherit"
	case StmtDefine:
		return "define"
	case StmtOperation:
		return "operation"
	default:
		return "unknown"
	}
}

// Statement is one parsed source line.
type Statement struct {
	Kind StatementKind
	Line int

	// StmtInherit
	Child  string
	Parent string

	// StmtDefine
	Path string

	// StmtOperation
	Tag      string
	Target   string
	Selector string
	Args     []string
}

// IsDeclaration reports whether s declares structure rather than behavior.
func (s Statement) IsDeclaration() bool {
	return s.Kind == StmtInherit || s.Kind == StmtDefine
}

// String renders the statement in canonical form: single spaces, no
// comments.
func (s Statement) String() string {
	switch s.Kind {
	case StmtInherit:
		return s.Child + " <- " + s.Parent
	case StmtDefine:
		return "def " + s.Path
	case StmtOperation:
		var sb strings.Builder
		if s.Tag != "" {
			sb.WriteString("@" + s.Tag + " ")
		}
		sb.WriteString(s.Target + " -> " + s.Selector)
		for _, a := range s.Args {
			sb.WriteString(" " + a)
		}
		return sb.String()
	default:
		return ""
	}
}

// File is a parsed compilation unit.
type File struct {
	Statements []Statement
}

// Hoisted returns the statements with every declaration moved ahead of
// every operation. Relative order within each group is preserved.
func (f *File) Hoisted() []Statement {
	out := make([]Statement, 0, len(f.Statements))
	for _, s := range f.Statements {
		if s.IsDeclaration() {
			out = append(out, s)
		}
	}
	for _, s := range f.Statements {
		if !s.IsDeclaration() {
			out = append(out, s)
		}
	}
	return out
}

// Render joins statements in canonical form, one per line.
func Render(stmts []Statement) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}
