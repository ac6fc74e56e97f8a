package fluent

import (
	"fmt"
	"sort"

	"mdplog/internal/term"
)

// Classified is the result of typing one declared fluent term.
// MutableIndex is the zero-based argument position carrying the enumerated
// domain, or NoIndex when the whole grounding is the domain element.
type Classified struct {
	Term         term.Term
	Kind         Kind
	MutableIndex int
}

// Registry maps canonical term strings to their classification. Explicit
// entries are inserted first and are never overwritten by implicit ones.
type Registry map[string]Classified

// classifyExplicit parses each explicit declaration's tag and registers
// the result. Tags are already validated; a parse failure here would be a
// programming error, so it is surfaced as one.
func classifyExplicit(explicit []Assignment, reg Registry) error {
	for _, a := range explicit {
		spec, diag := ParseTag(a.Subject, a.Tag)
		if diag != nil {
			return fmt.Errorf("fluent: unvalidated tag reached classification: %s", diag)
		}
		reg[a.Subject.String()] = Classified{
			Term:         a.Subject,
			Kind:         spec.Kind,
			MutableIndex: spec.Index,
		}
	}
	return nil
}

// classifyImplicit infers a type for every implicitly declared term not
// already present in the registry. Terms are grouped by (functor, arity)
// over all their groundings and each group is classified as a whole.
// Irreducible ambiguities are collected across all groups and raised
// together as one AmbiguityError.
func classifyImplicit(declPred string, implicit []term.Term, reg Registry, vocab map[string]ValueSet) error {
	groups := make(map[term.Head][]term.Term)
	for _, t := range implicit {
		if _, done := reg[t.String()]; done {
			continue
		}
		h := term.HeadOf(t)
		groups[h] = append(groups[h], t)
	}

	heads := make([]term.Head, 0, len(groups))
	for h := range groups {
		heads = append(heads, h)
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i].String() < heads[j].String() })

	var ambiguities []Diagnostic
	for _, h := range heads {
		kind, diag := inferGroupKind(declPred, h, groups[h], vocab)
		if diag != nil {
			ambiguities = append(ambiguities, *diag)
			continue
		}
		for _, t := range groups[h] {
			reg[t.String()] = Classified{Term: t, Kind: kind, MutableIndex: NoIndex}
		}
	}

	if len(ambiguities) > 0 {
		return &AmbiguityError{Diags: ambiguities}
	}
	return nil
}

// inferGroupKind classifies one (functor, arity) group of implicit
// groundings by structural inference against the choice vocabulary.
func inferGroupKind(declPred string, h term.Head, groundings []term.Term, vocab map[string]ValueSet) (Kind, *Diagnostic) {
	if h.Arity == 0 {
		return KindBool, nil
	}

	// For each argument position, test whether the distinct values seen at
	// that position all originate from a single choice vocabulary.
	matched := make([]int, 0, h.Arity)
	for pos := 0; pos < h.Arity; pos++ {
		values := make(ValueSet, len(groundings))
		for _, t := range groundings {
			values[t.Arg(pos).String()] = true
		}
		if coveredBy(values, vocab) {
			matched = append(matched, pos)
		}
	}

	if len(matched) == 0 {
		// No probabilistic multi-valued structure present: every grounding
		// is an independent binary variable. Not an error.
		return KindBool, nil
	}
	if h.Arity == 1 {
		return KindEnum, nil
	}

	return 0, &Diagnostic{
		Rule:     "V4",
		Severity: SeverityError,
		Term:     h.String(),
		Message: fmt.Sprintf("implicit declaration has arity %d and argument %d originates from a probabilistic choice; the grouping is ambiguous between the product-domain and relational-keyed interpretations, declare it explicitly",
			h.Arity, matched[0]+1),
		Remedies: remediationDeclarations(declPred, h),
	}
}
