package fluent

import (
	"fmt"
	"sort"

	"mdplog/internal/term"
)

// validateDeclarations runs the static syntactic checks over the full
// declaration set before any classification happens. V1..V3 violations
// are accumulated and returned as one combined DeclarationError; V6a, V6b
// and V7 findings are advisory and returned as warnings regardless of
// whether the error is raised.
func validateDeclarations(declPred string, explicit []Assignment, implicit []term.Term, heads map[term.Head]int, vocab map[string]ValueSet) ([]Diagnostic, error) {
	var warnings []Diagnostic
	var violations []Diagnostic

	// V1, V2, V3: tag well-formedness on every explicit declaration.
	for _, a := range explicit {
		if _, diag := ParseTag(a.Subject, a.Tag); diag != nil {
			violations = append(violations, *diag)
		}
	}

	// V6a: a term declared both explicitly and implicitly. The explicit
	// declaration wins downstream; the duplicate is only reported.
	explicitSubjects := make(map[string]bool, len(explicit))
	for _, a := range explicit {
		explicitSubjects[a.Subject.String()] = true
	}
	for _, t := range implicit {
		if explicitSubjects[t.String()] {
			warnings = append(warnings, Diagnostic{
				Rule:     "V6a",
				Severity: SeverityWarning,
				Term:     t.String(),
				Message:  "declared both implicitly and explicitly; the explicit declaration takes precedence",
			})
		}
	}

	// V6b: several explicit-declaration clauses share one (functor, arity)
	// head. Groundings from all clauses still merge downstream; the warning
	// exists because split declarations usually hide a tag disagreement.
	warnings = append(warnings, multiClauseWarnings(declPred, heads)...)

	// V7: an enum(N) declaration whose static argument values intersect a
	// choice vocabulary. The mutable position may have been misdeclared, or
	// the model has a cross dependency the schema cannot represent.
	for _, a := range explicit {
		spec, diag := ParseTag(a.Subject, a.Tag)
		if diag != nil || spec.Kind != KindEnum || spec.Index == NoIndex {
			continue
		}
		for i, arg := range a.Subject.Args() {
			if i == spec.Index {
				continue
			}
			if inVocabulary(vocab, arg.String()) {
				warnings = append(warnings, Diagnostic{
					Rule:     "V7",
					Severity: SeverityWarning,
					Term:     a.Subject.String(),
					Message: fmt.Sprintf("declared enum(%d), but static argument %d (%q) also appears in a probabilistic-choice vocabulary; the model may have unmodeled cross dependencies",
						spec.Index+1, i+1, arg.String()),
				})
				break
			}
		}
	}

	if len(violations) > 0 {
		return warnings, &DeclarationError{Diags: violations}
	}
	return warnings, nil
}

func multiClauseWarnings(declPred string, heads map[term.Head]int) []Diagnostic {
	var dup []term.Head
	for h, n := range heads {
		if n > 1 {
			dup = append(dup, h)
		}
	}
	sort.Slice(dup, func(i, j int) bool { return dup[i].String() < dup[j].String() })

	warnings := make([]Diagnostic, 0, len(dup))
	for _, h := range dup {
		warnings = append(warnings, Diagnostic{
			Rule:     "V6b",
			Severity: SeverityWarning,
			Term:     h.String(),
			Message: fmt.Sprintf("%d explicit-declaration clauses share this head; their groundings merge into one declaration set, consolidate them into a single clause",
				heads[h]),
			Remedies: remediationDeclarations(declPred, h),
		})
	}
	return warnings
}

// remediationDeclarations spells out both legal explicit forms for a
// predicate head. The same two resolutions answer a V6b duplicate-head
// warning and a V4 inference ambiguity, so both paths share this helper.
func remediationDeclarations(declPred string, h term.Head) []string {
	return []string{
		fmt.Sprintf("%s(%s(...), enum)    %% all groundings form a single mutually exclusive group (product domain)", declPred, h.Functor),
		fmt.Sprintf("%s(%s(...), enum(N)) %% argument N is the mutable domain, every other argument a static key", declPred, h.Functor),
	}
}
