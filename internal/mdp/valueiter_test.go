package mdp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdplog/internal/fluent"
	"mdplog/internal/term"
)

// repairModel is a two-state repair problem over one bool fluent "up":
// reboot brings the machine up with probability fixProb, wait leaves it
// as is. Reward is 1 while the machine is up.
type repairModel struct {
	fixProb float64
}

func (m repairModel) Transition(state fluent.Valuation, action term.Term) ([]FluentProb, error) {
	if state["up"] == 1 {
		return []FluentProb{{Term: term.Atom("up"), Prob: 1}}, nil
	}
	if action.Functor() == "reboot" {
		return []FluentProb{{Term: term.Atom("up"), Prob: m.fixProb}}, nil
	}
	return []FluentProb{{Term: term.Atom("up"), Prob: 0}}, nil
}

func (m repairModel) Reward(state fluent.Valuation, action term.Term) (float64, error) {
	return float64(state["up"]), nil
}

func boolSchema(t *testing.T) *fluent.Schema {
	t.Helper()
	s := fluent.NewSchema()
	require.NoError(t, s.AddBool(term.Atom("up")))
	return s
}

func TestValueIterationDeterministic(t *testing.T) {
	gamma, epsilon := 0.9, 1e-6
	vi := NewValueIteration(boolSchema(t),
		[]term.Term{term.Atom("reboot"), term.Atom("wait")},
		repairModel{fixProb: 1})

	sol, err := vi.Run(context.Background(), gamma, epsilon)
	require.NoError(t, err)

	// V(up) = 1/(1-g); V(down) = g*V(up) under the optimal reboot.
	vUp := 1 / (1 - gamma)
	assert.InDelta(t, vUp, sol.Values[1], 1e-3)
	assert.InDelta(t, gamma*vUp, sol.Values[0], 1e-3)
	assert.Equal(t, "reboot", sol.Policy[0].String())
	assert.Greater(t, sol.Iterations, 1)
}

func TestValueIterationStochastic(t *testing.T) {
	gamma, epsilon := 0.9, 1e-6
	p := 0.5
	vi := NewValueIteration(boolSchema(t),
		[]term.Term{term.Atom("reboot"), term.Atom("wait")},
		repairModel{fixProb: p})

	sol, err := vi.Run(context.Background(), gamma, epsilon)
	require.NoError(t, err)

	// V(down) = g*(p*V(up) + (1-p)*V(down)) solved in closed form.
	vUp := 1 / (1 - gamma)
	vDown := gamma * p * vUp / (1 - gamma*(1-p))
	assert.InDelta(t, vUp, sol.Values[1], 1e-3)
	assert.InDelta(t, vDown, sol.Values[0], 1e-3)
	assert.Equal(t, "reboot", sol.Policy[0].String())
}

func TestValueIterationValidatesGamma(t *testing.T) {
	vi := NewValueIteration(boolSchema(t), []term.Term{term.Atom("wait")}, repairModel{})
	for _, gamma := range []float64{0, 1, -0.5, 1.5} {
		_, err := vi.Run(context.Background(), gamma, 1e-3)
		require.Error(t, err, "gamma %g", gamma)
	}
}

func TestValueIterationRequiresActions(t *testing.T) {
	vi := NewValueIteration(boolSchema(t), nil, repairModel{})
	_, err := vi.Run(context.Background(), 0.9, 1e-3)
	require.Error(t, err)
}

func TestValueIterationMultiFactor(t *testing.T) {
	// Two independent bools; the single action deterministically sets
	// both, so every state converges to the same value as state 3.
	s := fluent.NewSchema()
	require.NoError(t, s.AddBool(term.Atom("a")))
	require.NoError(t, s.AddBool(term.Atom("b")))

	model := setBothModel{}
	vi := NewValueIteration(s, []term.Term{term.Atom("go")}, model)
	sol, err := vi.Run(context.Background(), 0.5, 1e-6)
	require.NoError(t, err)

	// R(s) = a+b; from anywhere the successor is (1,1) worth 2 per step.
	// V(s) = R(s) + g*2/(1-g).
	for i := int64(0); i < 4; i++ {
		reward := float64(i&1 + i>>1&1)
		assert.InDelta(t, reward+0.5*2/(1-0.5), sol.Values[i], 1e-3, "state %d", i)
	}
}

type setBothModel struct{}

func (setBothModel) Transition(state fluent.Valuation, action term.Term) ([]FluentProb, error) {
	return []FluentProb{
		{Term: term.Atom("a"), Prob: 1},
		{Term: term.Atom("b"), Prob: 1},
	}, nil
}

func (setBothModel) Reward(state fluent.Valuation, action term.Term) (float64, error) {
	return float64(state["a"] + state["b"]), nil
}
