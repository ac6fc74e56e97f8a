package mdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdplog/internal/fluent"
	"mdplog/internal/term"
)

func twoFactorSchema(t *testing.T) *fluent.Schema {
	t.Helper()
	s := fluent.NewSchema()
	require.NoError(t, s.AddBool(term.Atom("alarm")))
	require.NoError(t, s.AddGroup([]term.Term{
		term.MustParse("status(crashed)"),
		term.MustParse("status(running)"),
	}))
	return s
}

func TestStateSpaceTemporalizesFluents(t *testing.T) {
	space, err := NewStateSpace(twoFactorSchema(t), 0)
	require.NoError(t, err)

	assert.Equal(t, int64(4), space.Len())
	v := space.At(0)
	assert.Contains(t, v, "alarm(0)")
	assert.Contains(t, v, "status(crashed,0)")
	assert.Contains(t, v, "status(running,0)")
}

func TestStateSpaceIndexRoundTrip(t *testing.T) {
	space, err := NewStateSpace(twoFactorSchema(t), 1)
	require.NoError(t, err)

	for i := int64(0); i < space.Len(); i++ {
		assert.Equal(t, i, space.Index(space.At(i)))
	}
}

func TestStateSpaceValuationsIterator(t *testing.T) {
	space, err := NewStateSpace(twoFactorSchema(t), 0)
	require.NoError(t, err)

	it := space.Valuations()
	count := int64(0)
	for _, ok := it.Next(); ok; _, ok = it.Next() {
		count++
	}
	assert.Equal(t, space.Len(), count)
}

func TestActionSpaceSortsActions(t *testing.T) {
	space, err := NewActionSpace([]term.Term{
		term.Atom("wait"), term.Atom("reboot"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, space.Len())
	assert.Equal(t, "reboot", space.At(0).String())
	assert.Equal(t, "wait", space.At(1).String())
}

func TestActionSpaceOneHotValuation(t *testing.T) {
	space, err := NewActionSpace([]term.Term{
		term.Atom("reboot"), term.Atom("wait"),
	})
	require.NoError(t, err)

	v := space.Valuation(1)
	assert.Equal(t, fluent.Valuation{"reboot": 0, "wait": 1}, v)
}

func TestActionSpaceSingleActionLegal(t *testing.T) {
	space, err := NewActionSpace([]term.Term{term.Atom("wait")})
	require.NoError(t, err)
	assert.Equal(t, 1, space.Len())
	assert.Equal(t, fluent.Valuation{"wait": 1}, space.Valuation(0))
}

func TestActionSpaceRejectsEmpty(t *testing.T) {
	_, err := NewActionSpace(nil)
	require.Error(t, err)
}
