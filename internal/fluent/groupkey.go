package fluent

import (
	"strings"

	"mdplog/internal/term"
)

// GroupKey computes the bucket key that partitions enumerated groundings
// into mutually exclusive option sets.
//
// With no mutable index the key is the functor alone: every grounding of
// the functor joins one bucket and the group's domain is the full product
// of argument values. With a mutable index the key is the functor plus the
// stringified values at every other position, so each combination of
// static keys gets its own bucket and only the designated argument varies
// within it. A one-argument term with a mutable index has no static
// positions left and the key degenerates to the functor.
func GroupKey(t term.Term, mutableIndex int) string {
	if mutableIndex == NoIndex || t.Arity() <= 1 {
		return t.Functor()
	}

	static := make([]string, 0, t.Arity()-1)
	for i, arg := range t.Args() {
		if i == mutableIndex {
			continue
		}
		static = append(static, arg.String())
	}
	if len(static) == 0 {
		return t.Functor()
	}
	return t.Functor() + "(" + strings.Join(static, ",") + ")"
}
