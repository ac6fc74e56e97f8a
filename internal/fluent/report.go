package fluent

import (
	"fmt"
	"strings"
)

// Doc is the serialization-friendly snapshot of a schema, exported for
// downstream tooling via JSON or YAML.
type Doc struct {
	TotalStates int64      `json:"total_states" yaml:"total_states"`
	Booleans    []string   `json:"booleans" yaml:"booleans"`
	Groups      []GroupDoc `json:"groups" yaml:"groups"`
}

// GroupDoc is one mutually exclusive group in a Doc.
type GroupDoc struct {
	Base    int64    `json:"base" yaml:"base"`
	Options []string `json:"options" yaml:"options"`
}

// Doc returns the snapshot form of the schema.
func (s *Schema) Doc() Doc {
	doc := Doc{TotalStates: s.TotalStates(), Booleans: []string{}, Groups: []GroupDoc{}}
	for _, f := range s.factors {
		if f.IsBool() {
			doc.Booleans = append(doc.Booleans, f.terms[0].String())
			continue
		}
		g := GroupDoc{Base: f.base}
		for _, t := range f.terms {
			g.Options = append(g.Options, t.String())
		}
		doc.Groups = append(doc.Groups, g)
	}
	return doc
}

// Report renders a human-readable summary of the factored state space.
func (s *Schema) Report() string {
	doc := s.Doc()
	rule := strings.Repeat("=", 60)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(" Factored state space\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total states: %d\n", doc.TotalStates)
	b.WriteString(strings.Repeat("-", 60) + "\n")

	fmt.Fprintf(&b, "Boolean fluents (%d), each over {0, 1}:\n", len(doc.Booleans))
	if len(doc.Booleans) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, t := range doc.Booleans {
		fmt.Fprintf(&b, "  [ ] %s\n", t)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Mutually exclusive groups (%d), exactly one option true:\n", len(doc.Groups))
	if len(doc.Groups) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, g := range doc.Groups {
		fmt.Fprintf(&b, "  group #%d (base %d)\n", i, g.Base)
		for _, opt := range g.Options {
			fmt.Fprintf(&b, "    (o) %s\n", opt)
		}
	}
	b.WriteString(rule)
	return b.String()
}
