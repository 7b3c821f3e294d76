package path

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"MathProto.math.add",
		"ObjectProto.obj",
		"BaseProto",
		"a.b.c",
		"Proto_1.actor_2.func_3",
		"X.y9.Z_",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			p, err := Parse(in)
			require.NoError(t, err)
			assert.Equal(t, in, p.String(), "render must reproduce input")
		})
	}
}

func TestParseSegments(t *testing.T) {
	p := MustParse("MathProto.math.add")
	assert.Equal(t, "MathProto", p.Proto())
	assert.Equal(t, "math", p.Actor())
	assert.Equal(t, "add", p.Func())
	assert.Equal(t, 3, p.Arity())
	assert.Equal(t, "math.add", p.Member())

	actor := MustParse("MathProto.math")
	assert.Equal(t, "", actor.Func())
	assert.Equal(t, 2, actor.Arity())
	assert.Equal(t, "math", actor.Member())

	proto := MustParse("MathProto")
	assert.Equal(t, 1, proto.Arity())
	assert.Equal(t, "", proto.Member())
}

func TestParseMalformedSegment(t *testing.T) {
	cases := []struct {
		input   string
		segment int
	}{
		{"", 0},
		{"A..b", 1},
		{".a.b", 0},
		{"a.b.", 2},
		{"1abc.x", 0},
		{"a.b-c", 1},
		{"_a", 0},
		{"a.b c", 1},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			_, err := Parse(tc.input)
			require.Error(t, err)

			var pe *Error
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, KindMalformedSegment, pe.Kind)
			assert.Equal(t, tc.segment, pe.Segment)
		})
	}
}

func TestParseWrongArity(t *testing.T) {
	_, err := Parse("a.b.c.d")
	require.Error(t, err)

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindWrongArity, pe.Kind)
	assert.Equal(t, -1, pe.Segment)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("A.b.c"))
	assert.True(t, Valid("A"))
	assert.False(t, Valid("A.b.c.d"))
	assert.False(t, Valid("A..c"))
	assert.False(t, Valid("5.3"))
}

func TestNew(t *testing.T) {
	p, err := New("P", "a", "f")
	require.NoError(t, err)
	assert.Equal(t, "P.a.f", p.String())

	p, err = New("P", "a", "")
	require.NoError(t, err)
	assert.Equal(t, "P.a", p.String())

	p, err = New("P", "", "")
	require.NoError(t, err)
	assert.Equal(t, "P", p.String())

	_, err = New("P", "", "f")
	assert.Error(t, err, "function without actor yields an empty segment")
}

func TestWithProto(t *testing.T) {
	p := MustParse("D.math.add").WithProto("B")
	assert.Equal(t, "B.math.add", p.String())
}

func TestZeroValue(t *testing.T) {
	var p CanonicalPath
	assert.True(t, p.IsZero())
	assert.Equal(t, "", p.String())
}

func TestTextMarshaling(t *testing.T) {
	type wrapper struct {
		Path CanonicalPath `json:"path"`
	}

	data, err := json.Marshal(wrapper{Path: MustParse("A.b.c")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"A.b.c"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal(data, &w))
	assert.Equal(t, "A.b.c", w.Path.String())

	err = json.Unmarshal([]byte(`{"path":"A..c"}`), &w)
	assert.Error(t, err)
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("a.b.c.d") })
}

func TestParseArity(t *testing.T) {
	p, err := ParseArity("Proto", 1)
	require.NoError(t, err)
	assert.Equal(t, "Proto", p.String())

	_, err = ParseArity("Proto.actor", 1)
	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindWrongArity, pe.Kind)

	_, err = ParseArity("Pro-to", 1)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, KindMalformedSegment, pe.Kind)
}
