package fluent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdplog/internal/term"
)

func TestParseTagBool(t *testing.T) {
	spec, diag := ParseTag(term.Atom("rain"), term.Atom("bool"))
	require.Nil(t, diag)
	assert.Equal(t, KindBool, spec.Kind)
	assert.Equal(t, NoIndex, spec.Index)
}

func TestParseTagEnum(t *testing.T) {
	spec, diag := ParseTag(term.MustParse("weather(sun)"), term.Atom("enum"))
	require.Nil(t, diag)
	assert.Equal(t, KindEnum, spec.Kind)
	assert.Equal(t, NoIndex, spec.Index)
}

func TestParseTagEnumIndexed(t *testing.T) {
	subject := term.MustParse("at(truck1,paris)")
	spec, diag := ParseTag(subject, term.MustParse("enum(2)"))
	require.Nil(t, diag)
	assert.Equal(t, KindEnum, spec.Kind)
	assert.Equal(t, 1, spec.Index, "enum indexes are 1-based in the surface syntax")
}

func TestParseTagUnknown(t *testing.T) {
	cases := []term.Term{
		term.Atom("boolean"),
		term.Atom("enumeration"),
		term.MustParse("bool(1)"),
		term.MustParse("enum(1,2)"),
	}
	for _, tag := range cases {
		_, diag := ParseTag(term.Atom("rain"), tag)
		require.NotNil(t, diag, "tag %s", tag)
		assert.Equal(t, "V1", diag.Rule)
		assert.Equal(t, SeverityError, diag.Severity)
	}
}

func TestParseTagBadIndex(t *testing.T) {
	subject := term.MustParse("at(truck1,paris)")
	for _, tag := range []string{"enum(0)", "enum(-1)", "enum(x)"} {
		_, diag := ParseTag(subject, term.MustParse(tag))
		require.NotNil(t, diag, "tag %s", tag)
		assert.Equal(t, "V2", diag.Rule)
	}
}

func TestParseTagIndexOutOfRange(t *testing.T) {
	_, diag := ParseTag(term.MustParse("at(truck1,paris)"), term.MustParse("enum(3)"))
	require.NotNil(t, diag)
	assert.Equal(t, "V3", diag.Rule)
	assert.Contains(t, diag.Message, "valid range is 1 to 2")

	// An index can never fit a zero-arity subject.
	_, diag = ParseTag(term.Atom("rain"), term.MustParse("enum(1)"))
	require.NotNil(t, diag)
	assert.Equal(t, "V3", diag.Rule)
}
