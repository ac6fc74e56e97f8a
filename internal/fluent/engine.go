package fluent

import "mdplog/internal/term"

// Assignment is one grounded instance of the binary declaration predicate:
// the declared fluent term and its type tag.
type Assignment struct {
	Subject term.Term
	Tag     term.Term
}

// ValueSet is a set of canonical value strings.
type ValueSet map[string]bool

// Contains reports set membership.
func (s ValueSet) Contains(v string) bool { return s[v] }

// Engine is the read-only query boundary into the logic-program
// collaborator. The schema pipeline consumes an immutable snapshot of the
// compiled program through these four queries and performs no writes.
type Engine interface {
	// Declarations returns all grounded instances of the unary predicate
	// name, i.e. the implicitly declared fluent terms.
	Declarations(name string) ([]term.Term, error)

	// Assignments returns all grounded instances of the binary predicate
	// name as (subject, tag) pairs. Subjects are unique.
	Assignments(name string) ([]Assignment, error)

	// Vocabulary returns the ground values offered by every
	// probabilistic-choice construct, keyed by declaring predicate.
	Vocabulary() (map[string]ValueSet, error)

	// MultiClauseHeads returns, for the binary declaration predicate, the
	// number of supplying clauses per (functor, arity) of the declared
	// term. Heads with a single clause may be omitted.
	MultiClauseHeads() (map[term.Head]int, error)
}
