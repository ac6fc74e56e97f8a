package fluent

import "mdplog/internal/term"

// Choice is one alternative of a probabilistic-choice construct as it
// appears in the collaborator's clause table: the alternative term plus
// the identifier of the choice group that declared it.
type Choice struct {
	Group       int
	Alternative term.Term
}

// ChoiceTable is the typed visitor surface over the collaborator's parsed
// declaration set. VisitChoices calls yield for every probabilistic-choice
// alternative in table order and stops early when yield returns false.
type ChoiceTable interface {
	VisitChoices(yield func(Choice) bool)
}

// ExtractVocabulary scans the choice table and groups the ground values
// offered by probabilistic-choice constructs by their declaring predicate.
// Alternatives with arguments contribute each non-variable argument value;
// argument-less alternatives contribute the functor itself. The scan is
// pure and read-only; it cannot fail.
func ExtractVocabulary(table ChoiceTable) map[string]ValueSet {
	vocab := make(map[string]ValueSet)
	add := func(pred, value string) {
		set, ok := vocab[pred]
		if !ok {
			set = make(ValueSet)
			vocab[pred] = set
		}
		set[value] = true
	}

	table.VisitChoices(func(c Choice) bool {
		alt := c.Alternative
		if alt.Arity() == 0 {
			add(alt.Functor(), alt.Functor())
			return true
		}
		for _, arg := range alt.Args() {
			if arg.IsVariable() {
				continue
			}
			add(alt.Functor(), arg.String())
		}
		return true
	})
	return vocab
}

// inVocabulary reports whether value appears in any vocabulary set.
func inVocabulary(vocab map[string]ValueSet, value string) bool {
	for _, set := range vocab {
		if set.Contains(value) {
			return true
		}
	}
	return false
}

// coveredBy reports whether values is a non-empty subset of some single
// vocabulary set. Subset testing against individual sets, rather than the
// flattened union, keeps unrelated choice groups that happen to share a
// literal from colliding.
func coveredBy(values ValueSet, vocab map[string]ValueSet) bool {
	if len(values) == 0 {
		return false
	}
	for _, set := range vocab {
		if len(values) > len(set) {
			continue
		}
		subset := true
		for v := range values {
			if !set.Contains(v) {
				subset = false
				break
			}
		}
		if subset {
			return true
		}
	}
	return false
}
