package fluent

import (
	"fmt"

	"mdplog/internal/term"
)

// Kind classifies a fluent as an independent binary variable or a member
// of a mutually exclusive multi-valued group.
type Kind int

const (
	KindBool Kind = iota
	KindEnum
)

func (k Kind) String() string {
	if k == KindEnum {
		return "enum"
	}
	return "bool"
}

// NoIndex marks the absence of a designated mutable argument position:
// the whole grounding is the domain element.
const NoIndex = -1

// TagSpec is the parsed form of an explicit declaration's type tag:
// bool, enum, or enum(N) with N converted to a zero-based argument index.
type TagSpec struct {
	Kind  Kind
	Index int
}

// ParseTag parses the second argument of an explicit declaration. The
// returned diagnostic is nil on success; otherwise it carries the V1/V2/V3
// rule code for the violation. Parsing is deterministic and does not
// consult the vocabulary.
func ParseTag(subject, tag term.Term) (TagSpec, *Diagnostic) {
	switch {
	case tag.Arity() == 0 && tag.Functor() == "bool":
		return TagSpec{Kind: KindBool, Index: NoIndex}, nil

	case tag.Arity() == 0 && tag.Functor() == "enum":
		// enum without an index: all groundings of the functor form a
		// single group (product domain).
		return TagSpec{Kind: KindEnum, Index: NoIndex}, nil

	case tag.Functor() == "enum" && tag.Arity() == 1:
		n, ok := tag.Arg(0).IntValue()
		if !ok || n < 1 {
			return TagSpec{}, &Diagnostic{
				Rule:     "V2",
				Severity: SeverityError,
				Term:     subject.String(),
				Message: fmt.Sprintf("invalid enum index %q: the index must be a positive integer literal",
					tag.Arg(0).String()),
			}
		}
		if int(n) > subject.Arity() {
			return TagSpec{}, &Diagnostic{
				Rule:     "V3",
				Severity: SeverityError,
				Term:     subject.String(),
				Message: fmt.Sprintf("enum(%d) index is out of range for %s: valid range is 1 to %d",
					n, term.HeadOf(subject), subject.Arity()),
			}
		}
		return TagSpec{Kind: KindEnum, Index: int(n) - 1}, nil
	}

	return TagSpec{}, &Diagnostic{
		Rule:     "V1",
		Severity: SeverityError,
		Term:     subject.String(),
		Message:  fmt.Sprintf("unknown type tag %q: valid tags are bool, enum, enum(N)", tag.String()),
	}
}
