package logic

import (
	"strings"
	"testing"

	"mdplog/internal/fluent"
	"mdplog/internal/term"
)

func mustModel(t *testing.T, src string) *Model {
	t.Helper()
	m, err := ParseModel(src)
	if err != nil {
		t.Fatalf("ParseModel: %v", err)
	}
	return m
}

func TestDeclarations(t *testing.T) {
	m := mustModel(t, `
		state_fluent(rain).
		state_fluent(umbrella).
	`)
	decls, err := m.Declarations("state_fluent")
	if err != nil {
		t.Fatalf("Declarations: %v", err)
	}
	if len(decls) != 2 {
		t.Fatalf("got %d declarations, want 2", len(decls))
	}
	if decls[0].String() != "rain" || decls[1].String() != "umbrella" {
		t.Errorf("got %v", decls)
	}
}

func TestAssignmentsFirstClauseWins(t *testing.T) {
	m := mustModel(t, `
		state_fluent(rain, bool).
		state_fluent(rain, enum).
	`)
	as, err := m.Assignments("state_fluent")
	if err != nil {
		t.Fatalf("Assignments: %v", err)
	}
	if len(as) != 1 {
		t.Fatalf("got %d assignments, want 1", len(as))
	}
	if as[0].Subject.String() != "rain" || as[0].Tag.String() != "bool" {
		t.Errorf("got %s -> %s", as[0].Subject, as[0].Tag)
	}
}

func TestVocabularyFromChoices(t *testing.T) {
	m := mustModel(t, `
		0.5::weather(sun); 0.5::weather(rain).
		0.3::rain.
	`)
	vocab, err := m.Vocabulary()
	if err != nil {
		t.Fatalf("Vocabulary: %v", err)
	}
	want := fluent.ValueSet{"sun": true, "rain": true}
	got := vocab["weather"]
	if len(got) != len(want) || !got.Contains("sun") || !got.Contains("rain") {
		t.Errorf("vocab[weather] = %v, want %v", got, want)
	}
	// Independent probabilistic facts are not choice constructs.
	if _, ok := vocab["rain"]; ok {
		t.Error("independent fact should contribute no vocabulary")
	}
}

func TestMultiClauseHeads(t *testing.T) {
	m := mustModel(t, `
		state_fluent(at(t1,paris), enum).
		state_fluent(at(t1,berlin), enum).
		state_fluent(rain, bool).
	`)
	heads, err := m.MultiClauseHeads()
	if err != nil {
		t.Fatalf("MultiClauseHeads: %v", err)
	}
	if n := heads[term.Head{Functor: "at", Arity: 2}]; n != 2 {
		t.Errorf("at/2 count = %d, want 2", n)
	}
	if _, ok := heads[term.Head{Functor: "rain", Arity: 0}]; ok {
		t.Error("single-clause heads must be omitted")
	}
}

func TestMultiClauseHeadsHonorDeclPredOverride(t *testing.T) {
	m := mustModel(t, `
		fluent(at(t1,paris), enum).
		fluent(at(t1,berlin), enum).
	`)
	heads, err := m.MultiClauseHeads()
	if err != nil {
		t.Fatalf("MultiClauseHeads: %v", err)
	}
	if len(heads) != 0 {
		t.Fatalf("default predicate should see no clauses, got %v", heads)
	}

	m.SetDeclarationPredicate("fluent")
	heads, err = m.MultiClauseHeads()
	if err != nil {
		t.Fatalf("MultiClauseHeads: %v", err)
	}
	if n := heads[term.Head{Functor: "at", Arity: 2}]; n != 2 {
		t.Errorf("at/2 count = %d, want 2", n)
	}
}

func TestModelImmutableAfterGrounding(t *testing.T) {
	m := mustModel(t, `rain.`)
	if err := m.Ground(); err != nil {
		t.Fatalf("Ground: %v", err)
	}
	err := m.AddFact(term.Atom("umbrella"))
	if err == nil || !strings.Contains(err.Error(), "grounded") {
		t.Fatalf("AddFact after Ground = %v", err)
	}
}

func TestAddChoiceValidation(t *testing.T) {
	m := NewModel()
	one := []term.Term{term.MustParse("color(red)")}
	if err := m.AddChoice(one, []float64{1.0}); err == nil {
		t.Error("a single alternative is not a choice")
	}
	two := []term.Term{term.MustParse("color(red)"), term.MustParse("color(blue)")}
	if err := m.AddChoice(two, []float64{0.7, 0.7}); err == nil {
		t.Error("probabilities above 1 must be rejected")
	}
	if err := m.AddChoice(two, []float64{0.5}); err == nil {
		t.Error("length mismatch must be rejected")
	}
	if err := m.AddChoice(two, []float64{0.5, 0.5}); err != nil {
		t.Errorf("valid choice rejected: %v", err)
	}
}

func TestAddRuleValidation(t *testing.T) {
	m := NewModel()
	head := term.MustParse("wet(X)")
	if err := m.AddRule(head); err == nil {
		t.Error("empty body must be rejected")
	}
	if err := m.AddRule(head, term.MustParse("rain(Y)")); err == nil {
		t.Error("unbound head variable must be rejected")
	}
	deep := term.MustParse("holds(f(X))")
	if err := m.AddRule(term.MustParse("ok(X)"), deep); err == nil {
		t.Error("compound body argument must be rejected")
	}
	if err := m.AddRule(head, term.MustParse("rain(X)")); err != nil {
		t.Errorf("valid rule rejected: %v", err)
	}
}
