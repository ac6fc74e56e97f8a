package fluent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mdplog/internal/term"
)

// choiceList is a literal ChoiceTable for tests.
type choiceList []Choice

func (cl choiceList) VisitChoices(yield func(Choice) bool) {
	for _, c := range cl {
		if !yield(c) {
			return
		}
	}
}

func TestExtractVocabulary(t *testing.T) {
	table := choiceList{
		{Group: 0, Alternative: term.MustParse("weather(sun)")},
		{Group: 0, Alternative: term.MustParse("weather(rain)")},
		{Group: 1, Alternative: term.MustParse("at(truck1,paris)")},
		{Group: 1, Alternative: term.MustParse("at(truck1,berlin)")},
		{Group: 2, Alternative: term.Atom("backup")},
	}

	vocab := ExtractVocabulary(table)

	assert.Equal(t, ValueSet{"sun": true, "rain": true}, vocab["weather"])
	assert.Equal(t, ValueSet{"truck1": true, "paris": true, "berlin": true}, vocab["at"])
	// Argument-less alternatives contribute their own functor.
	assert.Equal(t, ValueSet{"backup": true}, vocab["backup"])
}

func TestExtractVocabularySkipsVariables(t *testing.T) {
	table := choiceList{
		{Group: 0, Alternative: term.MustParse("pick(X,a)")},
	}
	vocab := ExtractVocabulary(table)
	assert.Equal(t, ValueSet{"a": true}, vocab["pick"])
}

func TestCoveredBy(t *testing.T) {
	vocab := map[string]ValueSet{
		"weather": {"sun": true, "rain": true, "fog": true},
		"mode":    {"eco": true, "fast": true},
	}

	assert.True(t, coveredBy(ValueSet{"sun": true}, vocab))
	assert.True(t, coveredBy(ValueSet{"sun": true, "fog": true}, vocab))
	assert.False(t, coveredBy(ValueSet{}, vocab), "empty set matches nothing")
	assert.False(t, coveredBy(ValueSet{"sun": true, "eco": true}, vocab),
		"values straddling two vocabularies are not covered by either")
	assert.False(t, coveredBy(ValueSet{"snow": true}, vocab))
}

func TestInVocabulary(t *testing.T) {
	vocab := map[string]ValueSet{"weather": {"sun": true}}
	assert.True(t, inVocabulary(vocab, "sun"))
	assert.False(t, inVocabulary(vocab, "rain"))
}
