package fluent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBuild is the base error for all schema construction failures.
// DeclarationError, AmbiguityError and CardinalityError all unwrap to it,
// so callers that do not care which phase failed can errors.Is against a
// single sentinel.
var ErrBuild = errors.New("fluent: schema build failed")

// Severity distinguishes fatal diagnostics from advisory ones.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// Diagnostic is one itemized finding from a validation or inference pass.
// Rule is the validation rule code (V1..V8). Remedies, when present, are
// concrete declarations the user can paste verbatim to resolve the finding.
type Diagnostic struct {
	Rule     string
	Severity Severity
	Term     string
	Message  string
	Remedies []string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", d.Rule)
	if d.Term != "" {
		fmt.Fprintf(&b, "%s: ", d.Term)
	}
	b.WriteString(d.Message)
	for _, r := range d.Remedies {
		b.WriteString("\n    ")
		b.WriteString(r)
	}
	return b.String()
}

// DeclarationError reports malformed explicit declaration tags (V1..V3).
// Every violation across the whole declaration set is itemized; the
// pipeline never fails fast on the first one.
type DeclarationError struct {
	Diags []Diagnostic
}

func (e *DeclarationError) Error() string {
	return formatDiags("declaration error", e.Diags)
}

func (e *DeclarationError) Unwrap() error { return ErrBuild }

// AmbiguityError reports implicit multi-argument declarations whose
// interpretation cannot be inferred: at least one argument position ranges
// over a probabilistic-choice vocabulary, so the grouping is ambiguous
// between the product-domain and relational-keyed readings. Each diagnostic
// carries both legal explicit resolutions.
type AmbiguityError struct {
	Diags []Diagnostic
}

func (e *AmbiguityError) Error() string {
	return formatDiags("ambiguity error", e.Diags)
}

func (e *AmbiguityError) Unwrap() error { return ErrBuild }

// CardinalityError reports enumerated groups that resolved to fewer than
// two options. A single-option "choice" is a constant, not a decision
// variable, so it violates the mutual-exclusion invariant.
type CardinalityError struct {
	Diags []Diagnostic
}

func (e *CardinalityError) Error() string {
	return formatDiags("cardinality error", e.Diags)
}

func (e *CardinalityError) Unwrap() error { return ErrBuild }

func formatDiags(kind string, diags []Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "found %d %s(s):", len(diags), kind)
	for _, d := range diags {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}
