// Package mdp bridges a compiled logic model to its MDP view: the factored
// state schema, the action set, utility assignments, and temporal fluent
// instantiation for the current and next decision epochs.
package mdp

import (
	"fmt"

	"mdplog/internal/fluent"
	"mdplog/internal/logic"
	"mdplog/internal/term"
)

// MDP is the decision-process view over a logic model. The schema is built
// once at construction and immutable afterwards.
type MDP struct {
	model    *logic.Model
	schema   *fluent.Schema
	warnings []fluent.Diagnostic
}

// New grounds the model, runs the schema pipeline and returns the MDP
// view. Schema warnings are retained and available via Warnings.
func New(model *logic.Model) (*MDP, error) {
	b := fluent.NewBuilder(model)
	b.SetDeclarationPredicate(model.DeclarationPredicate())
	res, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &MDP{model: model, schema: res.Schema, warnings: res.Warnings}, nil
}

// StateSchema returns the factored state-space schema.
func (m *MDP) StateSchema() *fluent.Schema { return m.schema }

// Warnings returns the non-fatal diagnostics collected during schema
// construction.
func (m *MDP) Warnings() []fluent.Diagnostic {
	return append([]fluent.Diagnostic(nil), m.warnings...)
}

// Actions returns the declared actions sorted by canonical string.
func (m *MDP) Actions() ([]term.Term, error) {
	actions, err := m.model.Declarations("action")
	if err != nil {
		return nil, err
	}
	term.SortTerms(actions)
	return actions, nil
}

// Utility is one utility assignment: a term and its numeric value.
type Utility struct {
	Term  term.Term
	Value float64
}

// Utilities returns the declared utility assignments.
func (m *MDP) Utilities() ([]Utility, error) {
	assignments, err := m.model.Assignments("utility")
	if err != nil {
		return nil, err
	}
	out := make([]Utility, 0, len(assignments))
	for _, a := range assignments {
		v, ok := a.Tag.FloatValue()
		if !ok {
			return nil, fmt.Errorf("mdp: utility value %s for %s is not numeric", a.Tag, a.Subject)
		}
		out = append(out, Utility{Term: a.Subject, Value: v})
	}
	return out, nil
}

// Temporal returns the fluent term instantiated at the given decision
// epoch: the timestep is appended as a trailing numeric argument.
func Temporal(t term.Term, step int) term.Term {
	args := append(t.Args(), term.Int(int64(step)))
	return t.WithArgs(args...)
}

// CurrentStateFluents returns every schema fluent at timestep 0, in
// schema order.
func (m *MDP) CurrentStateFluents() []term.Term {
	return m.temporalFluents(0)
}

// NextStateFluents returns every schema fluent at timestep 1, in schema
// order.
func (m *MDP) NextStateFluents() []term.Term {
	return m.temporalFluents(1)
}

func (m *MDP) temporalFluents(step int) []term.Term {
	flat := m.schema.Flat()
	out := make([]term.Term, len(flat))
	for i, t := range flat {
		out[i] = Temporal(t, step)
	}
	return out
}
