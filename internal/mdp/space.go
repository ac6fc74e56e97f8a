package mdp

import (
	"fmt"

	"mdplog/internal/fluent"
	"mdplog/internal/term"
)

// StateSpace enumerates the states of a schema with every fluent
// instantiated at a fixed timestep. State indexes follow the schema's
// mixed-radix encoding.
type StateSpace struct {
	temporal *fluent.Schema
}

// NewStateSpace builds the state space of schema at the given timestep.
func NewStateSpace(schema *fluent.Schema, timestep int) (*StateSpace, error) {
	temporal := fluent.NewSchema()
	for _, f := range schema.Factors() {
		terms := f.Terms()
		for i, t := range terms {
			terms[i] = Temporal(t, timestep)
		}
		var err error
		if f.IsBool() {
			err = temporal.AddBool(terms[0])
		} else {
			err = temporal.AddGroup(terms)
		}
		if err != nil {
			return nil, fmt.Errorf("mdp: temporalize schema: %w", err)
		}
	}
	return &StateSpace{temporal: temporal}, nil
}

// Len returns the number of states.
func (s *StateSpace) Len() int64 { return s.temporal.TotalStates() }

// At returns the valuation of the state with the given index.
func (s *StateSpace) At(index int64) fluent.Valuation { return s.temporal.Decode(index) }

// Index returns the state index of a valuation.
func (s *StateSpace) Index(v fluent.Valuation) int64 { return s.temporal.Encode(v) }

// Valuations returns a restartable iterator over all states.
func (s *StateSpace) Valuations() *fluent.ValuationIter { return s.temporal.Valuations() }

// Schema returns the temporalized schema backing the space.
func (s *StateSpace) Schema() *fluent.Schema { return s.temporal }

// ActionSpace enumerates actions as a one-hot mutually exclusive set. A
// single-action model is legal here, unlike a state enum group.
type ActionSpace struct {
	actions []term.Term
}

// NewActionSpace returns the action space over the given actions.
func NewActionSpace(actions []term.Term) (*ActionSpace, error) {
	if len(actions) == 0 {
		return nil, fmt.Errorf("mdp: empty action set")
	}
	copied := make([]term.Term, len(actions))
	copy(copied, actions)
	term.SortTerms(copied)
	return &ActionSpace{actions: copied}, nil
}

// Len returns the number of actions.
func (s *ActionSpace) Len() int { return len(s.actions) }

// At returns the action with the given index.
func (s *ActionSpace) At(index int) term.Term { return s.actions[index] }

// Terms returns the ordered action terms.
func (s *ActionSpace) Terms() []term.Term {
	return append([]term.Term(nil), s.actions...)
}

// Valuation returns the one-hot valuation selecting the action at index.
func (s *ActionSpace) Valuation(index int) fluent.Valuation {
	v := make(fluent.Valuation, len(s.actions))
	for i, a := range s.actions {
		if i == index {
			v[a.String()] = 1
		} else {
			v[a.String()] = 0
		}
	}
	return v
}
