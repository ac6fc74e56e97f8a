// Package logic implements the logic-program collaborator consumed by the
// fluent classification pipeline: a clause table for MDP model programs,
// a text parser for the declaration surface, and grounding of rule-defined
// declarations through the Google Mangle engine.
package logic

import (
	"fmt"

	"mdplog/internal/fluent"
	"mdplog/internal/term"
)

// Node is one entry of the model's clause table.
type Node interface {
	isNode()
}

// FactNode is a ground fact, deterministic (probability 1) or an
// independent probabilistic fact.
type FactNode struct {
	Atom        term.Term
	Probability float64
}

// RuleNode is a definite clause: a head template derived from a flat,
// positive body conjunction. Head arguments may be compound templates;
// body atoms must be flat (arguments are variables or atomic constants).
type RuleNode struct {
	Head term.Term
	Body []term.Term
}

// ChoiceNode is a probabilistic choice construct: mutually exclusive
// alternatives, each with an associated probability, sharing one group id.
type ChoiceNode struct {
	Group        int
	Alternatives []Alternative
}

// Alternative is one option of a choice construct.
type Alternative struct {
	Term        term.Term
	Probability float64
}

func (FactNode) isNode()   {}
func (RuleNode) isNode()   {}
func (ChoiceNode) isNode() {}

// Model is a compiled MDP logic program: an immutable-once-grounded clause
// table plus the grounded fact base derived from it. It implements the
// fluent.Engine collaborator interface and the fluent.ChoiceTable visitor.
type Model struct {
	nodes     []Node
	declPred  string
	nextGroup int
	grounded  bool
	facts     map[term.Head]map[string]term.Term
	factOrder map[term.Head][]string
}

// NewModel returns an empty model using the default declaration predicate.
func NewModel() *Model {
	return &Model{
		declPred:  fluent.DefaultDeclarationPredicate,
		facts:     make(map[term.Head]map[string]term.Term),
		factOrder: make(map[term.Head][]string),
	}
}

// SetDeclarationPredicate overrides the predicate under which fluent
// declarations are counted for MultiClauseHeads.
func (m *Model) SetDeclarationPredicate(name string) { m.declPred = name }

// DeclarationPredicate reports the predicate under which fluent
// declarations are read.
func (m *Model) DeclarationPredicate() string { return m.declPred }

// Nodes returns the clause table in declaration order.
func (m *Model) Nodes() []Node {
	copied := make([]Node, len(m.nodes))
	copy(copied, m.nodes)
	return copied
}

// AddFact records a ground deterministic fact.
func (m *Model) AddFact(t term.Term) error {
	return m.AddProbabilisticFact(t, 1.0)
}

// AddProbabilisticFact records a ground independent probabilistic fact.
// Unlike choice alternatives, independent facts contribute nothing to the
// probabilistic-choice vocabulary.
func (m *Model) AddProbabilisticFact(t term.Term, p float64) error {
	if err := m.mutable(); err != nil {
		return err
	}
	if !t.IsGround() {
		return fmt.Errorf("logic: fact %s is not ground", t)
	}
	if p < 0 || p > 1 {
		return fmt.Errorf("logic: fact %s has probability %g outside [0,1]", t, p)
	}
	m.nodes = append(m.nodes, FactNode{Atom: t, Probability: p})
	return nil
}

// AddRule records a definite clause. Body atoms must be flat and every
// head variable must occur in the body.
func (m *Model) AddRule(head term.Term, body ...term.Term) error {
	if err := m.mutable(); err != nil {
		return err
	}
	if len(body) == 0 {
		return fmt.Errorf("logic: rule for %s has an empty body; declare a fact instead", head)
	}
	bound := make(map[string]bool)
	for _, atom := range body {
		if !isFlat(atom) {
			return fmt.Errorf("logic: body atom %s is not flat; compound body arguments are not supported", atom)
		}
		for _, v := range atom.Variables() {
			bound[v] = true
		}
	}
	for _, v := range head.Variables() {
		if !bound[v] {
			return fmt.Errorf("logic: head variable %s of %s does not occur in the body", v, head)
		}
	}
	m.nodes = append(m.nodes, RuleNode{Head: head, Body: append([]term.Term(nil), body...)})
	return nil
}

// AddChoice records a probabilistic choice construct over mutually
// exclusive ground alternatives. The alternative probabilities must not
// sum above one.
func (m *Model) AddChoice(alternatives []term.Term, probabilities []float64) error {
	if err := m.mutable(); err != nil {
		return err
	}
	if len(alternatives) < 2 {
		return fmt.Errorf("logic: a choice construct needs at least 2 alternatives, got %d", len(alternatives))
	}
	if len(alternatives) != len(probabilities) {
		return fmt.Errorf("logic: %d alternatives with %d probabilities", len(alternatives), len(probabilities))
	}
	total := 0.0
	node := ChoiceNode{Group: m.nextGroup}
	for i, alt := range alternatives {
		if !alt.IsGround() || !isFlat(alt) {
			return fmt.Errorf("logic: choice alternative %s must be ground and flat", alt)
		}
		p := probabilities[i]
		if p < 0 || p > 1 {
			return fmt.Errorf("logic: alternative %s has probability %g outside [0,1]", alt, p)
		}
		total += p
		node.Alternatives = append(node.Alternatives, Alternative{Term: alt, Probability: p})
	}
	if total > 1.0+1e-9 {
		return fmt.Errorf("logic: choice probabilities sum to %g, above 1", total)
	}
	m.nextGroup++
	m.nodes = append(m.nodes, node)
	return nil
}

func (m *Model) mutable() error {
	if m.grounded {
		return fmt.Errorf("logic: model is already grounded")
	}
	return nil
}

// isFlat reports whether every argument of the atom is a variable or an
// atomic constant.
func isFlat(atom term.Term) bool {
	for _, a := range atom.Args() {
		if a.Arity() > 0 {
			return false
		}
	}
	return true
}

// VisitChoices implements fluent.ChoiceTable over the clause table.
func (m *Model) VisitChoices(yield func(fluent.Choice) bool) {
	for _, n := range m.nodes {
		choice, ok := n.(ChoiceNode)
		if !ok {
			continue
		}
		for _, alt := range choice.Alternatives {
			if !yield(fluent.Choice{Group: choice.Group, Alternative: alt.Term}) {
				return
			}
		}
	}
}

// Declarations returns all grounded instances of the unary predicate name.
func (m *Model) Declarations(name string) ([]term.Term, error) {
	if err := m.ensureGrounded(); err != nil {
		return nil, err
	}
	h := term.Head{Functor: name, Arity: 1}
	out := make([]term.Term, 0, len(m.factOrder[h]))
	for _, key := range m.factOrder[h] {
		out = append(out, m.facts[h][key].Arg(0))
	}
	return out, nil
}

// Assignments returns all grounded instances of the binary predicate name
// as (subject, tag) pairs with unique subjects; the first clause wins on a
// duplicate subject.
func (m *Model) Assignments(name string) ([]fluent.Assignment, error) {
	if err := m.ensureGrounded(); err != nil {
		return nil, err
	}
	h := term.Head{Functor: name, Arity: 2}
	seen := make(map[string]bool)
	var out []fluent.Assignment
	for _, key := range m.factOrder[h] {
		atom := m.facts[h][key]
		subject := atom.Arg(0)
		if seen[subject.String()] {
			continue
		}
		seen[subject.String()] = true
		out = append(out, fluent.Assignment{Subject: subject, Tag: atom.Arg(1)})
	}
	return out, nil
}

// Vocabulary returns the probabilistic-choice vocabulary of the model.
func (m *Model) Vocabulary() (map[string]fluent.ValueSet, error) {
	return fluent.ExtractVocabulary(m), nil
}

// MultiClauseHeads counts, per (functor, arity) of the declared term, the
// clauses supplying the binary declaration predicate.
func (m *Model) MultiClauseHeads() (map[term.Head]int, error) {
	counts := make(map[term.Head]int)
	bump := func(head term.Term) {
		if head.Functor() != m.declPred || head.Arity() != 2 {
			return
		}
		counts[term.HeadOf(head.Arg(0))]++
	}
	for _, n := range m.nodes {
		switch node := n.(type) {
		case FactNode:
			bump(node.Atom)
		case RuleNode:
			bump(node.Head)
		}
	}
	for h, n := range counts {
		if n < 2 {
			delete(counts, h)
		}
	}
	return counts, nil
}

// GroundAtoms returns the grounded instances of the given predicate head,
// in derivation order.
func (m *Model) GroundAtoms(h term.Head) ([]term.Term, error) {
	if err := m.ensureGrounded(); err != nil {
		return nil, err
	}
	out := make([]term.Term, 0, len(m.factOrder[h]))
	for _, key := range m.factOrder[h] {
		out = append(out, m.facts[h][key])
	}
	return out, nil
}

func (m *Model) addGroundAtom(atom term.Term) {
	h := term.HeadOf(atom)
	byKey, ok := m.facts[h]
	if !ok {
		byKey = make(map[string]term.Term)
		m.facts[h] = byKey
	}
	key := atom.String()
	if _, dup := byKey[key]; dup {
		return
	}
	byKey[key] = atom
	m.factOrder[h] = append(m.factOrder[h], key)
}

func (m *Model) ensureGrounded() error {
	if m.grounded {
		return nil
	}
	return m.Ground()
}
