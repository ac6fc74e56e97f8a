// Package term implements the symbolic term representation shared by the
// logic model and the fluent classification pipeline. A term is a functor
// with an ordered tuple of argument terms; atoms and numeric constants are
// zero-arity terms. Terms are immutable: constructors copy their inputs and
// accessors return copies, so a term can be used as a map key through its
// canonical string without defensive copying at call sites.
package term

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Term is a symbolic value: a functor plus ordered arguments. The zero
// value is not usable; build terms with New, Atom, Var, Int or Float.
type Term struct {
	functor string
	args    []Term
	number  bool
}

// New returns a compound term with the given functor and arguments.
func New(functor string, args ...Term) Term {
	copied := make([]Term, len(args))
	copy(copied, args)
	return Term{functor: functor, args: copied}
}

// Atom returns a zero-arity symbolic term.
func Atom(name string) Term {
	return Term{functor: name}
}

// Var returns a variable term. Variables are atoms whose name starts with
// an uppercase letter or underscore; Var exists for call-site clarity.
func Var(name string) Term {
	return Term{functor: name}
}

// Int returns a numeric constant term.
func Int(n int64) Term {
	return Term{functor: strconv.FormatInt(n, 10), number: true}
}

// Float returns a numeric constant term.
func Float(f float64) Term {
	return Term{functor: strconv.FormatFloat(f, 'g', -1, 64), number: true}
}

// Functor returns the term's functor name (or literal text for numbers).
func (t Term) Functor() string { return t.functor }

// Arity returns the number of arguments.
func (t Term) Arity() int { return len(t.args) }

// Args returns a copy of the argument tuple.
func (t Term) Args() []Term {
	copied := make([]Term, len(t.args))
	copy(copied, t.args)
	return copied
}

// Arg returns the i-th argument. Panics if out of range, like slice indexing.
func (t Term) Arg(i int) Term { return t.args[i] }

// IsNumber reports whether the term is a numeric constant.
func (t Term) IsNumber() bool { return t.number }

// IntValue returns the term's value as an integer. The second result is
// false when the term is not an integer literal.
func (t Term) IntValue() (int64, bool) {
	if !t.number || len(t.args) > 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(t.functor, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FloatValue returns the term's value as a float. The second result is
// false when the term is not a numeric literal.
func (t Term) FloatValue() (float64, bool) {
	if !t.number || len(t.args) > 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(t.functor, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsVariable reports whether the term is a logical variable: a zero-arity
// symbol starting with an uppercase letter or underscore.
func (t Term) IsVariable() bool {
	if t.number || len(t.args) > 0 || t.functor == "" {
		return false
	}
	c := t.functor[0]
	return (c >= 'A' && c <= 'Z') || c == '_'
}

// IsGround reports whether the term contains no variables.
func (t Term) IsGround() bool {
	if t.IsVariable() {
		return false
	}
	for _, a := range t.args {
		if !a.IsGround() {
			return false
		}
	}
	return true
}

// Equal reports structural equality over functor and all arguments.
func (t Term) Equal(other Term) bool {
	if t.functor != other.functor || t.number != other.number || len(t.args) != len(other.args) {
		return false
	}
	for i := range t.args {
		if !t.args[i].Equal(other.args[i]) {
			return false
		}
	}
	return true
}

// Hash returns a structural hash consistent with Equal.
func (t Term) Hash() uint64 {
	h := fnv.New64a()
	t.hashInto(h)
	return h.Sum64()
}

func (t Term) hashInto(h interface{ Write([]byte) (int, error) }) {
	_, _ = h.Write([]byte(t.functor))
	if t.number {
		_, _ = h.Write([]byte{'#'})
	}
	for _, a := range t.args {
		_, _ = h.Write([]byte{'('})
		a.hashInto(h)
		_, _ = h.Write([]byte{')'})
	}
}

// String returns the canonical textual form, e.g. "at(truck1,paris)".
// Canonical strings are the basis for all deterministic ordering in the
// schema pipeline, so the format has no optional whitespace.
func (t Term) String() string {
	if len(t.args) == 0 {
		return t.functor
	}
	var b strings.Builder
	b.WriteString(t.functor)
	b.WriteByte('(')
	for i, a := range t.args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Variables returns the distinct variable names in the term, in order of
// first appearance.
func (t Term) Variables() []string {
	seen := make(map[string]bool)
	var out []string
	t.collectVars(seen, &out)
	return out
}

func (t Term) collectVars(seen map[string]bool, out *[]string) {
	if t.IsVariable() {
		if !seen[t.functor] {
			seen[t.functor] = true
			*out = append(*out, t.functor)
		}
		return
	}
	for _, a := range t.args {
		a.collectVars(seen, out)
	}
}

// Substitute replaces every variable bound in binding with its ground
// value. Unbound variables are left in place. This is one-way template
// instantiation, not unification.
func Substitute(t Term, binding map[string]Term) Term {
	if t.IsVariable() {
		if ground, ok := binding[t.functor]; ok {
			return ground
		}
		return t
	}
	if len(t.args) == 0 {
		return t
	}
	args := make([]Term, len(t.args))
	for i, a := range t.args {
		args[i] = Substitute(a, binding)
	}
	return Term{functor: t.functor, args: args, number: t.number}
}

// WithArgs returns a term with the same functor and the given arguments.
func (t Term) WithArgs(args ...Term) Term {
	return Term{functor: t.functor, args: append([]Term(nil), args...), number: t.number}
}

// SortTerms sorts terms in place by canonical string.
func SortTerms(ts []Term) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].String() < ts[j].String() })
}

// Head identifies a predicate by functor name and arity.
type Head struct {
	Functor string
	Arity   int
}

// HeadOf returns the predicate head of a term.
func HeadOf(t Term) Head {
	return Head{Functor: t.functor, Arity: len(t.args)}
}

// String returns the conventional functor/arity form, e.g. "at/2".
func (h Head) String() string {
	return fmt.Sprintf("%s/%d", h.Functor, h.Arity)
}
