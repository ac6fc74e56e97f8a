package fluent

import (
	"fmt"

	"mdplog/internal/term"
)

// maxTotalStates bounds the mixed-radix index so it always fits an int64.
const maxTotalStates = int64(1) << 62

// Factor is one dimension of the factored state space: either a single
// independent binary fluent (base 2) or an ordered mutually exclusive
// group (base = group size, at least 2).
type Factor struct {
	terms []term.Term
	base  int64
}

// Terms returns a copy of the factor's ordered option terms. A Bool
// factor has exactly one term; an Enum factor has one term per option.
func (f Factor) Terms() []term.Term {
	copied := make([]term.Term, len(f.terms))
	copy(copied, f.terms)
	return copied
}

// Base returns the factor's radix.
func (f Factor) Base() int64 { return f.base }

// IsBool reports whether the factor is an independent binary fluent.
func (f Factor) IsBool() bool { return len(f.terms) == 1 && f.base == 2 }

// Valuation assigns 0 or 1 to fluent terms by canonical string. Bool
// factors contribute one entry; Enum factors contribute a one-hot block,
// one entry per option.
type Valuation map[string]int

// Schema is the canonical factored state-space description: an ordered
// sequence of factors with a mixed-radix encoding between valuations and
// state indexes. Built once by the SchemaBuilder and immutable afterwards.
type Schema struct {
	factors []Factor
	flat    []term.Term
	total   int64
	frozen  bool
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{total: 1}
}

// AddBool appends an independent binary state fluent.
func (s *Schema) AddBool(t term.Term) error {
	if err := s.grow(2); err != nil {
		return err
	}
	s.factors = append(s.factors, Factor{terms: []term.Term{t}, base: 2})
	s.flat = append(s.flat, t)
	return nil
}

// AddGroup appends a mutually exclusive group of state fluents. Duplicate
// terms collapse into one option. The group must contain at least two
// distinct terms; a single-option group is a constant, not a decision
// variable, and fails with a CardinalityError.
func (s *Schema) AddGroup(options []term.Term) error {
	distinct := make([]term.Term, 0, len(options))
	seen := make(map[string]bool, len(options))
	for _, t := range options {
		if seen[t.String()] {
			continue
		}
		seen[t.String()] = true
		distinct = append(distinct, t)
	}
	if len(distinct) < 2 {
		return &CardinalityError{Diags: []Diagnostic{{
			Rule:     "V5",
			Severity: SeverityError,
			Message:  fmt.Sprintf("mutually exclusive group has %d distinct option(s); at least 2 are required", len(distinct)),
		}}}
	}
	if err := s.grow(int64(len(distinct))); err != nil {
		return err
	}
	s.factors = append(s.factors, Factor{terms: distinct, base: int64(len(distinct))})
	s.flat = append(s.flat, distinct...)
	return nil
}

func (s *Schema) grow(base int64) error {
	if s.frozen {
		return fmt.Errorf("fluent: schema is frozen")
	}
	if s.total > maxTotalStates/base {
		return fmt.Errorf("fluent: state space exceeds %d states", maxTotalStates)
	}
	s.total *= base
	return nil
}

// freeze seals the schema against further factor insertion.
func (s *Schema) freeze() { s.frozen = true }

// Factors returns a copy of the ordered factor sequence.
func (s *Schema) Factors() []Factor {
	copied := make([]Factor, len(s.factors))
	copy(copied, s.factors)
	return copied
}

// Flat returns every fluent term in schema order: Bool terms directly,
// Enum groups expanded option by option.
func (s *Schema) Flat() []term.Term {
	copied := make([]term.Term, len(s.flat))
	copy(copied, s.flat)
	return copied
}

// TotalStates returns the product of all factor bases.
func (s *Schema) TotalStates() int64 { return s.total }

// Strides returns the mixed-radix positional weights: stride[0] = 1 and
// stride[k] = stride[k-1] * base[k-1].
func (s *Schema) Strides() []int64 {
	strides := make([]int64, len(s.factors))
	current := int64(1)
	for i, f := range s.factors {
		strides[i] = current
		current *= f.base
	}
	return strides
}

// Decode maps a state index in [0, TotalStates()) to its valuation.
func (s *Schema) Decode(index int64) Valuation {
	v := make(Valuation, len(s.flat))
	rest := index
	for _, f := range s.factors {
		digit := rest % f.base
		rest /= f.base
		if f.IsBool() {
			v[f.terms[0].String()] = int(digit)
			continue
		}
		for i, t := range f.terms {
			if int64(i) == digit {
				v[t.String()] = 1
			} else {
				v[t.String()] = 0
			}
		}
	}
	return v
}

// Encode maps a valuation back to its state index. Terms missing from the
// valuation read as 0; in an Enum factor the first option marked 1 wins.
// Encode and Decode are exact inverses over [0, TotalStates()).
func (s *Schema) Encode(v Valuation) int64 {
	index := int64(0)
	stride := int64(1)
	for _, f := range s.factors {
		digit := int64(0)
		if f.IsBool() {
			if v[f.terms[0].String()] == 1 {
				digit = 1
			}
		} else {
			for i, t := range f.terms {
				if v[t.String()] == 1 {
					digit = int64(i)
					break
				}
			}
		}
		index += digit * stride
		stride *= f.base
	}
	return index
}

// Valuations returns a restartable iterator over every valuation of the
// schema in mixed-radix counter order.
func (s *Schema) Valuations() *ValuationIter {
	return &ValuationIter{schema: s}
}

// ValuationIter enumerates valuations lazily. The zero index is the first
// element; Reset rewinds to it.
type ValuationIter struct {
	schema *Schema
	next   int64
}

// Next returns the next valuation, or false when the sequence is done.
func (it *ValuationIter) Next() (Valuation, bool) {
	if it.next >= it.schema.total {
		return nil, false
	}
	v := it.schema.Decode(it.next)
	it.next++
	return v, true
}

// Reset rewinds the iterator to the first valuation.
func (it *ValuationIter) Reset() { it.next = 0 }

// Len returns the number of valuations in the sequence.
func (it *ValuationIter) Len() int64 { return it.schema.total }
