package mdp

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mdplog/internal/fluent"
	"mdplog/internal/term"
)

// FluentProb is the probability that one next-state fluent holds.
type FluentProb struct {
	Term term.Term
	Prob float64
}

// TransitionModel supplies transition and reward values for Bellman
// backups. The probability-injection and weighted-model-counting pipeline
// that computes these stays an external collaborator; enumeration only
// needs the per-fluent truth probabilities of the successor state.
type TransitionModel interface {
	// Transition returns, for each schema fluent in flat order, the
	// probability that it holds in the successor state.
	Transition(state fluent.Valuation, action term.Term) ([]FluentProb, error)

	// Reward returns the immediate reward of taking action in state.
	Reward(state fluent.Valuation, action term.Term) (float64, error)
}

// Solution is the converged value function and greedy policy, both keyed
// by state index.
type Solution struct {
	Values     map[int64]float64
	Policy     map[int64]term.Term
	Iterations int
}

// ValueIteration runs enumerative synchronous value iteration: Bellman
// backups over every state per sweep until the maximum residual drops
// under the convergence bound for the requested epsilon.
type ValueIteration struct {
	schema  *fluent.Schema
	actions []term.Term
	model   TransitionModel
	logger  *zap.Logger
	workers int
}

// NewValueIteration returns a solver over the given schema and actions.
func NewValueIteration(schema *fluent.Schema, actions []term.Term, model TransitionModel) *ValueIteration {
	return &ValueIteration{
		schema:  schema,
		actions: append([]term.Term(nil), actions...),
		model:   model,
		logger:  zap.NewNop(),
		workers: runtime.NumCPU(),
	}
}

// SetLogger installs a logger for per-sweep progress events.
func (vi *ValueIteration) SetLogger(l *zap.Logger) {
	if l != nil {
		vi.logger = l
	}
}

// Run iterates to convergence for the given discount factor gamma in
// (0, 1) and maximum error epsilon. States within one sweep are backed up
// in parallel; sweeps are synchronous against the previous sweep's values.
func (vi *ValueIteration) Run(ctx context.Context, gamma, epsilon float64) (*Solution, error) {
	if gamma <= 0 || gamma >= 1 {
		return nil, fmt.Errorf("mdp: discount factor %g outside (0, 1)", gamma)
	}
	if len(vi.actions) == 0 {
		return nil, fmt.Errorf("mdp: no actions to iterate over")
	}
	total := vi.schema.TotalStates()
	if total > 1<<24 {
		return nil, fmt.Errorf("mdp: %d states is beyond enumerative value iteration", total)
	}

	n := int(total)
	values := make([]float64, n)
	next := make([]float64, n)
	policy := make([]term.Term, n)
	bound := 2 * epsilon * (1 - gamma) / gamma

	iteration := 0
	for {
		iteration++

		workers := vi.workers
		if workers < 1 {
			workers = 1
		}
		residuals := make([]float64, workers)
		g, gctx := errgroup.WithContext(ctx)
		chunk := (n + workers - 1) / workers
		for w := 0; w < workers; w++ {
			w := w
			lo, hi := w*chunk, (w+1)*chunk
			if hi > n {
				hi = n
			}
			if lo >= hi {
				continue
			}
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					state := vi.schema.Decode(int64(i))
					best := math.Inf(-1)
					var greedy term.Term
					for _, action := range vi.actions {
						transition, err := vi.model.Transition(state, action)
						if err != nil {
							return fmt.Errorf("mdp: transition for state %d: %w", i, err)
						}
						reward, err := vi.model.Reward(state, action)
						if err != nil {
							return fmt.Errorf("mdp: reward for state %d: %w", i, err)
						}
						q := reward + gamma*vi.expectedValue(transition, values)
						if q >= best {
							best = q
							greedy = action
						}
					}
					residual := math.Abs(values[i] - best)
					if residual > residuals[w] {
						residuals[w] = residual
					}
					next[i] = best
					policy[i] = greedy
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		maxResidual := 0.0
		for _, r := range residuals {
			if r > maxResidual {
				maxResidual = r
			}
		}
		values, next = next, values

		vi.logger.Debug("value iteration sweep",
			zap.Int("iteration", iteration),
			zap.Float64("max_residual", maxResidual))

		if maxResidual <= bound {
			break
		}
	}

	sol := &Solution{
		Values:     make(map[int64]float64, n),
		Policy:     make(map[int64]term.Term, n),
		Iterations: iteration,
	}
	for i := 0; i < n; i++ {
		sol.Values[int64(i)] = values[i]
		sol.Policy[int64(i)] = policy[i]
	}
	return sol, nil
}

// expectedValue folds the per-fluent transition probabilities into the
// expected value of the successor state: a branch per stochastic fluent,
// with near-deterministic probabilities short-circuited, and the successor
// index recovered from the accumulated valuation at each leaf.
func (vi *ValueIteration) expectedValue(transition []FluentProb, values []float64) float64 {
	valuation := make(fluent.Valuation, len(transition))
	return vi.branch(transition, valuation, values)
}

const probEps = 1e-6

func (vi *ValueIteration) branch(rest []FluentProb, valuation fluent.Valuation, values []float64) float64 {
	if len(rest) == 0 {
		return values[vi.schema.Encode(valuation)]
	}
	head := rest[0]
	key := head.Term.String()

	switch {
	case head.Prob >= 1-probEps:
		valuation[key] = 1
		defer delete(valuation, key)
		return vi.branch(rest[1:], valuation, values)
	case head.Prob <= probEps:
		valuation[key] = 0
		defer delete(valuation, key)
		return vi.branch(rest[1:], valuation, values)
	default:
		valuation[key] = 1
		high := vi.branch(rest[1:], valuation, values)
		valuation[key] = 0
		low := vi.branch(rest[1:], valuation, values)
		delete(valuation, key)
		return head.Prob*high + (1-head.Prob)*low
	}
}
