// Package fluent classifies the declared state variables of a factored
// MDP model into independent binary fluents and mutually
// exclusive multi-valued groups, and builds the canonical factored
// state-space schema consumed by state enumeration and probability
// injection. Classification reconciles explicit type tags with positional
// structural inference against the probabilistic-choice vocabulary;
// every validation pass accumulates all violations of its class before
// raising one combined error.
package fluent

import (
	"fmt"
	"sort"

	"mdplog/internal/term"
)

// DefaultDeclarationPredicate is the predicate name under which fluent
// declarations are looked up in the logic program.
const DefaultDeclarationPredicate = "state_fluent"

// Builder runs the seven-phase schema construction pipeline against a
// logic-engine snapshot. Only three phases are fallible: structural
// validation, implicit classification and cardinality validation; each
// accumulates every violation of its class before raising, and a later
// phase never runs after an earlier failure.
type Builder struct {
	engine   Engine
	declPred string
}

// NewBuilder returns a builder reading declarations from the default
// predicate.
func NewBuilder(engine Engine) *Builder {
	return &Builder{engine: engine, declPred: DefaultDeclarationPredicate}
}

// SetDeclarationPredicate overrides the declaration predicate name.
func (b *Builder) SetDeclarationPredicate(name string) {
	b.declPred = name
}

// Result carries the built schema together with the non-fatal warnings
// collected on the way. Warnings are populated even when Build returns an
// error, so they are never silently dropped.
type Result struct {
	Schema   *Schema
	Warnings []Diagnostic
}

// Build runs the pipeline and returns the completed immutable schema.
// The returned Result is non-nil in every case.
func (b *Builder) Build() (*Result, error) {
	res := &Result{}

	// Phase 1: collect the declaration snapshot from the collaborator.
	vocab, err := b.engine.Vocabulary()
	if err != nil {
		return res, fmt.Errorf("fluent: collect vocabulary: %w", err)
	}
	explicit, err := b.engine.Assignments(b.declPred)
	if err != nil {
		return res, fmt.Errorf("fluent: collect explicit declarations: %w", err)
	}
	implicit, err := b.engine.Declarations(b.declPred)
	if err != nil {
		return res, fmt.Errorf("fluent: collect implicit declarations: %w", err)
	}
	heads, err := b.engine.MultiClauseHeads()
	if err != nil {
		return res, fmt.Errorf("fluent: collect multi-clause heads: %w", err)
	}

	// Phase 2: structural validation. V1..V3 violations halt the pipeline
	// as one combined DeclarationError; warnings survive either way.
	warnings, err := validateDeclarations(b.declPred, explicit, implicit, heads, vocab)
	res.Warnings = warnings
	if err != nil {
		return res, err
	}

	// Phase 3: explicit classification. Explicit entries own their
	// registry slots; implicit processing never overwrites them.
	reg := make(Registry, len(explicit)+len(implicit))
	if err := classifyExplicit(explicit, reg); err != nil {
		return res, err
	}

	// Phase 4: implicit classification by structural inference.
	if err := classifyImplicit(b.declPred, implicit, reg, vocab); err != nil {
		return res, err
	}

	// Phase 5: deterministic walk of the registry. Bool fluents go
	// straight into the schema; Enum fluents accumulate by group key.
	schema := NewSchema()
	buckets := make(map[string][]term.Term)
	bucketIdx := make(map[string]int)

	keys := make([]string, 0, len(reg))
	for k := range reg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		c := reg[k]
		switch c.Kind {
		case KindBool:
			if err := schema.AddBool(c.Term); err != nil {
				return res, err
			}
		case KindEnum:
			key := GroupKey(c.Term, c.MutableIndex)
			if prev, seen := bucketIdx[key]; seen && prev != c.MutableIndex {
				res.Warnings = append(res.Warnings, Diagnostic{
					Rule:     "V8",
					Severity: SeverityWarning,
					Term:     key,
					Message: fmt.Sprintf("declarations tagged %s and %s collapse into one group; the %s position decides the group's domain",
						enumTagName(prev), enumTagName(c.MutableIndex), enumTagName(c.MutableIndex)),
				})
			}
			buckets[key] = append(buckets[key], c.Term)
			bucketIdx[key] = c.MutableIndex
		}
	}

	// Phase 6: cardinality validation, then factor construction in
	// sorted bucket order.
	bucketKeys := make([]string, 0, len(buckets))
	for k := range buckets {
		bucketKeys = append(bucketKeys, k)
	}
	sort.Strings(bucketKeys)

	var cardinality []Diagnostic
	for _, key := range bucketKeys {
		options := buckets[key]
		term.SortTerms(options)

		domain := enumDomain(options, bucketIdx[key])
		if len(domain) < 2 {
			cardinality = append(cardinality, Diagnostic{
				Rule:     "V5",
				Severity: SeverityError,
				Term:     key,
				Message: fmt.Sprintf("enumerated group resolves to %d option(s) %v; a mutually exclusive group requires at least 2",
					len(domain), domain),
			})
			continue
		}
		if err := schema.AddGroup(options); err != nil {
			return res, err
		}
	}
	if len(cardinality) > 0 {
		return res, &CardinalityError{Diags: cardinality}
	}

	// Phase 7: seal and hand over.
	schema.freeze()
	res.Schema = schema
	return res, nil
}

// enumTagName renders a mutable index in the surface tag syntax.
func enumTagName(index int) string {
	if index == NoIndex {
		return "enum"
	}
	return fmt.Sprintf("enum(%d)", index+1)
}

// enumDomain returns the sorted distinct domain elements of a bucket:
// whole groundings when no argument position is designated mutable,
// otherwise the values at the designated position.
func enumDomain(options []term.Term, mutableIndex int) []string {
	set := make(map[string]bool, len(options))
	for _, t := range options {
		if mutableIndex == NoIndex || mutableIndex >= t.Arity() {
			set[t.String()] = true
		} else {
			set[t.Arg(mutableIndex).String()] = true
		}
	}
	domain := make([]string, 0, len(set))
	for v := range set {
		domain = append(domain, v)
	}
	sort.Strings(domain)
	return domain
}
