// Package surface parses Rio source text into statements.
//
// The language is line oriented:
//
//	// comment
//	MathProto <- ObjectProto
//	def MathProto.math.add
//	@io io -> output "hi"
//	math -> add 5 3
//
// Input is NFC normalized before lexing so that canonical renderings of
// equivalent sources are byte-identical.
package surface

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SyntaxError reports malformed source.
type SyntaxError struct {
	Line    int
	Col     int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Col > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parse parses a complete compilation unit. Parsing stops at the first
// malformed line.
func Parse(src string) (*File, error) {
	src = norm.NFC.String(src)
	src = strings.ReplaceAll(src, "\r\n", "\n")

	f := &File{}
	for i, line := range strings.Split(src, "\n") {
		lineNo := i + 1
		toks, err := lexLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		if len(toks) == 0 {
			continue
		}
		stmt, err := parseStatement(toks, lineNo)
		if err != nil {
			return nil, err
		}
		f.Statements = append(f.Statements, stmt)
	}
	return f, nil
}

// ParseStatement parses a single statement.
func ParseStatement(line string) (Statement, error) {
	toks, err := lexLine(norm.NFC.String(line), 1)
	if err != nil {
		return Statement{}, err
	}
	if len(toks) == 0 {
		return Statement{}, &SyntaxError{Line: 1, Message: "empty statement"}
	}
	return parseStatement(toks, 1)
}

func parseStatement(toks []Token, line int) (Statement, error) {
	// def Path
	if toks[0].Kind == TokWord && toks[0].Text == "def" && (len(toks) < 2 || toks[1].Kind != TokSend) {
		if len(toks) != 2 || toks[1].Kind != TokWord {
			return Statement{}, errAt(line, toks[0], "expected 'def <path>'")
		}
		return Statement{Kind: StmtDefine, Line: line, Path: toks[1].Text}, nil
	}

	// Child <- Parent
	for _, t := range toks {
		if t.Kind == TokInherit {
			return parseInherit(toks, line)
		}
	}

	return parseOperation(toks, line)
}

func parseInherit(toks []Token, line int) (Statement, error) {
	if len(toks) != 3 || toks[0].Kind != TokWord || toks[1].Kind != TokInherit || toks[2].Kind != TokWord {
		return Statement{}, errAt(line, toks[0], "expected '<child> <- <parent>'")
	}
	return Statement{Kind: StmtInherit, Line: line, Child: toks[0].Text, Parent: toks[2].Text}, nil
}

func parseOperation(toks []Token, line int) (Statement, error) {
	stmt := Statement{Kind: StmtOperation, Line: line}

	i := 0
	if toks[i].Kind == TokTag {
		stmt.Tag = toks[i].Text
		i++
	}

	if i >= len(toks) || toks[i].Kind != TokWord {
		return Statement{}, errAt(line, toks[min(i, len(toks)-1)], "expected operation target")
	}
	stmt.Target = toks[i].Text
	i++

	if i >= len(toks) || toks[i].Kind != TokSend {
		return Statement{}, errAt(line, toks[min(i, len(toks)-1)], "expected '->' after target")
	}
	i++

	if i >= len(toks) || toks[i].Kind != TokWord {
		return Statement{}, errAt(line, toks[min(i, len(toks)-1)], "expected selector after '->'")
	}
	stmt.Selector = toks[i].Text
	i++

	for ; i < len(toks); i++ {
		switch toks[i].Kind {
		case TokWord, TokString:
			stmt.Args = append(stmt.Args, toks[i].Text)
		default:
			return Statement{}, errAt(line, toks[i], fmt.Sprintf("unexpected %s in arguments", toks[i].Kind))
		}
	}
	return stmt, nil
}

func errAt(line int, tok Token, msg string) *SyntaxError {
	return &SyntaxError{Line: line, Col: tok.Col, Message: msg}
}
