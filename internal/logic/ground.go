package logic

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"mdplog/internal/term"
)

// Ground compiles the clause table into a Mangle program, evaluates it,
// and materializes every grounded instance of every predicate, including
// the groundings of rule-defined declarations. The model is immutable
// afterwards.
//
// Translation scheme: flat ground facts and choice alternatives become
// Mangle facts; rules with flat heads become Mangle rules verbatim; rules
// whose head carries a compound template are rewritten to an internal
// predicate over the template's variables, and the solutions are
// substituted back into the template after evaluation. Atomic symbols
// travel as Mangle strings, integers as numbers.
func (m *Model) Ground() error {
	if m.grounded {
		return nil
	}

	var mangleFacts []term.Term
	var flatRules []RuleNode
	var templRules []RuleNode

	for _, n := range m.nodes {
		switch node := n.(type) {
		case FactNode:
			m.addGroundAtom(node.Atom)
			if isFlat(node.Atom) {
				mangleFacts = append(mangleFacts, node.Atom)
			}
		case ChoiceNode:
			for _, alt := range node.Alternatives {
				m.addGroundAtom(alt.Term)
				mangleFacts = append(mangleFacts, alt.Term)
			}
		case RuleNode:
			if isFlat(node.Head) {
				flatRules = append(flatRules, node)
			} else {
				templRules = append(templRules, node)
			}
		}
	}

	if len(flatRules) == 0 && len(templRules) == 0 {
		m.grounded = true
		return nil
	}

	templates := make(map[string]term.Term, len(templRules))
	src := m.renderProgram(mangleFacts, flatRules, templRules, templates)

	unit, err := parse.Unit(bytes.NewReader([]byte(src)))
	if err != nil {
		return fmt.Errorf("logic: parse generated program: %w", err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return fmt.Errorf("logic: analyze generated program: %w", err)
	}

	index := make(map[term.Head]ast.PredicateSym, len(programInfo.Decls))
	for sym := range programInfo.Decls {
		index[term.Head{Functor: sym.Symbol, Arity: sym.Arity}] = sym
	}

	store := factstore.NewSimpleInMemoryStore()
	for _, fact := range mangleFacts {
		atom, err := factToAtom(index, fact)
		if err != nil {
			return err
		}
		store.Add(atom)
	}

	if _, err := mengine.EvalProgramWithStats(programInfo, store); err != nil {
		return fmt.Errorf("logic: evaluate program: %w", err)
	}

	var walkErr error
	for _, sym := range store.ListPredicates() {
		template, isTemplate := templates[sym.Symbol]
		err := store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
			derived, err := atomToTerm(atom)
			if err != nil {
				return err
			}
			if !isTemplate {
				m.addGroundAtom(derived)
				return nil
			}
			binding := make(map[string]term.Term, derived.Arity())
			for i, name := range template.Variables() {
				binding[name] = derived.Arg(i)
			}
			m.addGroundAtom(term.Substitute(template, binding))
			return nil
		})
		if err != nil && walkErr == nil {
			walkErr = err
		}
	}
	if walkErr != nil {
		return fmt.Errorf("logic: read grounded facts: %w", walkErr)
	}

	m.grounded = true
	return nil
}

// renderProgram emits the Mangle source for the model: declarations for
// every predicate, flat rules verbatim, and one internal rule per
// template rule. templates is filled with internal-predicate-name to
// head-template entries for the read-back pass.
func (m *Model) renderProgram(facts []term.Term, flatRules, templRules []RuleNode, templates map[string]term.Term) string {
	arities := make(map[term.Head]bool)
	note := func(atom term.Term) {
		arities[term.HeadOf(atom)] = true
	}
	for _, f := range facts {
		note(f)
	}
	for _, r := range flatRules {
		note(r.Head)
		for _, b := range r.Body {
			note(b)
		}
	}

	var rules []string
	for _, r := range flatRules {
		rules = append(rules, renderClause(r.Head, r.Body))
	}
	for i, r := range templRules {
		name := fmt.Sprintf("template_head_%d", i)
		vars := r.Head.Variables()
		headArgs := make([]term.Term, len(vars))
		for j, v := range vars {
			headArgs[j] = term.Var(v)
		}
		genHead := term.New(name, headArgs...)
		note(genHead)
		templates[name] = r.Head
		rules = append(rules, renderClause(genHead, r.Body))
		for _, b := range r.Body {
			note(b)
		}
	}

	heads := make([]term.Head, 0, len(arities))
	for h := range arities {
		heads = append(heads, h)
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i].String() < heads[j].String() })

	var b strings.Builder
	for _, h := range heads {
		b.WriteString("Decl ")
		b.WriteString(h.Functor)
		b.WriteByte('(')
		for i := 0; i < h.Arity; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "A%d", i)
		}
		b.WriteString(").\n")
	}
	for _, r := range rules {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderClause(head term.Term, body []term.Term) string {
	var b strings.Builder
	b.WriteString(renderAtom(head))
	b.WriteString(" :- ")
	for i, atom := range body {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(renderAtom(atom))
	}
	b.WriteByte('.')
	return b.String()
}

func renderAtom(atom term.Term) string {
	var b strings.Builder
	b.WriteString(atom.Functor())
	b.WriteByte('(')
	for i, a := range atom.Args() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(renderValue(a))
	}
	b.WriteByte(')')
	return b.String()
}

// renderValue maps an atomic argument to Mangle syntax: variables keep
// their name, integers become number literals, everything else becomes a
// quoted string.
func renderValue(t term.Term) string {
	if t.IsVariable() {
		return t.Functor()
	}
	if _, ok := t.IntValue(); ok {
		return t.Functor()
	}
	return strconv.Quote(t.Functor())
}

func factToAtom(index map[term.Head]ast.PredicateSym, fact term.Term) (ast.Atom, error) {
	sym, ok := index[term.HeadOf(fact)]
	if !ok {
		return ast.Atom{}, fmt.Errorf("logic: predicate %s missing from generated declarations", term.HeadOf(fact))
	}
	args := make([]ast.BaseTerm, fact.Arity())
	for i, a := range fact.Args() {
		if n, ok := a.IntValue(); ok {
			args[i] = ast.Number(n)
			continue
		}
		args[i] = ast.String(a.Functor())
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

func atomToTerm(atom ast.Atom) (term.Term, error) {
	args := make([]term.Term, len(atom.Args))
	for i, a := range atom.Args {
		constant, ok := a.(ast.Constant)
		if !ok {
			return term.Term{}, fmt.Errorf("logic: non-constant argument %v in derived fact %v", a, atom)
		}
		args[i] = constantToTerm(constant)
	}
	return term.New(atom.Predicate.Symbol, args...), nil
}

func constantToTerm(c ast.Constant) term.Term {
	switch c.Type {
	case ast.StringType:
		return term.Atom(c.Symbol)
	case ast.NameType:
		return term.Atom(strings.TrimPrefix(c.Symbol, "/"))
	case ast.NumberType:
		return term.Int(c.NumValue)
	case ast.Float64Type:
		return term.Float(math.Float64frombits(uint64(c.NumValue)))
	default:
		return term.Atom(c.String())
	}
}
