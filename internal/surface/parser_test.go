package surface

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatements(t *testing.T) {
	src := "ObjectProto <- BaseProto\n" +
		"// a comment\n" +
		"\n" +
		"def MathProto.math.add\n" +
		"math -> add 5 3   // trailing comment\n" +
		"@io io -> output \"hi // not a comment\"\n"

	f, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, f.Statements, 4)

	assert.Equal(t, Statement{Kind: StmtInherit, Line: 1, Child: "ObjectProto", Parent: "BaseProto"}, f.Statements[0])
	assert.Equal(t, Statement{Kind: StmtDefine, Line: 4, Path: "MathProto.math.add"}, f.Statements[1])
	assert.Equal(t, Statement{Kind: StmtOperation, Line: 5, Target: "math", Selector: "add", Args: []string{"5", "3"}}, f.Statements[2])
	assert.Equal(t, Statement{
		Kind:     StmtOperation,
		Line:     6,
		Tag:      "io",
		Target:   "io",
		Selector: "output",
		Args:     []string{`"hi // not a comment"`},
	}, f.Statements[3])
}

func TestParseOperatorsWithoutSpaces(t *testing.T) {
	f, err := Parse("B<-A\nmath->add -1 2.5")
	require.NoError(t, err)
	require.Len(t, f.Statements, 2)
	assert.Equal(t, "B <- A", f.Statements[0].String())
	assert.Equal(t, []string{"-1", "2.5"}, f.Statements[1].Args)
}

func TestParseStringEscapes(t *testing.T) {
	stmt, err := ParseStatement(`io -> print "say \"hi\"" next`)
	require.NoError(t, err)
	assert.Equal(t, []string{`"say \"hi\""`, "next"}, stmt.Args)
}

func TestParseCRLF(t *testing.T) {
	f, err := Parse("B <- A\r\nmath -> add 1 2\r\n")
	require.NoError(t, err)
	require.Len(t, f.Statements, 2)
	assert.Equal(t, "A", f.Statements[0].Parent)
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"unterminated string", `io -> print "oops`, 1, "unterminated"},
		{"bare tag", "@ io -> print", 1, "tag name"},
		{"missing arrow", "math add 1", 1, "'->'"},
		{"missing selector", "math ->", 1, "selector"},
		{"inherit arity", "A <- B C", 1, "<child> <- <parent>"},
		{"def without path", "def", 1, "def <path>"},
		{"bad character", "math -> add $x", 1, "unexpected character"},
		{"tag in args", "math -> add @io", 1, "unexpected tag"},
		{"error on later line", "B <- A\n\nx y", 3, "'->'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.line, se.Line)
			assert.Contains(t, se.Message, tt.msg)
		})
	}
}

func TestDefAsTarget(t *testing.T) {
	stmt, err := ParseStatement("def -> clone")
	require.NoError(t, err)
	assert.Equal(t, StmtOperation, stmt.Kind)
	assert.Equal(t, "def", stmt.Target)
}

func TestCanonicalRendering(t *testing.T) {
	f, err := Parse("  ObjectProto   <-BaseProto\n@io    io->output   \"hi\"\ndef  A.b")
	require.NoError(t, err)

	assert.Equal(t, "ObjectProto <- BaseProto\n@io io -> output \"hi\"\ndef A.b", Render(f.Statements))

	again, err := Parse(Render(f.Statements))
	require.NoError(t, err)
	assert.Equal(t, Render(f.Statements), Render(again.Statements), "rendering is a fixed point")
}

func TestParseNormalizesNFC(t *testing.T) {
	a, err := Parse("io -> print \"caf\u00e9\"")
	require.NoError(t, err)
	b, err := Parse("io -> print \"cafe\u0301\"")
	require.NoError(t, err)
	assert.Equal(t, Render(a.Statements), Render(b.Statements))
}

func TestHoisted(t *testing.T) {
	f, err := Parse("math -> add 1 2\nB <- A\nio -> print x\ndef A.m.f\nC <- B")
	require.NoError(t, err)

	var got []string
	for _, s := range f.Hoisted() {
		got = append(got, s.String())
	}
	assert.Equal(t, []string{
		"B <- A",
		"def A.m.f",
		"C <- B",
		"math -> add 1 2",
		"io -> print x",
	}, got)
}

func TestEmptySource(t *testing.T) {
	f, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, f.Statements)
	assert.Equal(t, "", Render(f.Hoisted()))
}
