package logic

import (
	"fmt"
	"strconv"
	"strings"

	"mdplog/internal/term"
)

// ParseModel reads an MDP model program into a clause table. The surface
// is Prolog-like: facts `person(denis).`, independent probabilistic facts
// `0.3::rain.`, probabilistic choice constructs
// `0.3::color(red); 0.7::color(blue).`, and definite clauses
// `head :- b1, ..., bn.` with flat positive bodies. `%` starts a comment.
// Annotated disjunctions with a non-trivial body are not supported.
func ParseModel(src string) (*Model, error) {
	m := NewModel()
	for _, c := range splitClauses(src) {
		if err := parseClause(m, c.text); err != nil {
			return nil, fmt.Errorf("line %d: %w", c.line, err)
		}
	}
	return m, nil
}

type clause struct {
	line int
	text string
}

// splitClauses cuts the source at every top-level terminating period. A
// period only terminates a clause when it sits outside parentheses and is
// followed by whitespace, a comment, or end of input, which keeps float
// literals like 0.3 intact.
func splitClauses(src string) []clause {
	var clauses []clause
	var b strings.Builder
	depth := 0
	line := 1
	startLine := 1
	started := false
	comment := false

	mark := func() {
		if !started {
			started = true
			startLine = line
		}
	}
	flush := func() {
		text := strings.TrimSpace(b.String())
		b.Reset()
		started = false
		if text != "" {
			clauses = append(clauses, clause{line: startLine, text: text})
		}
	}

	for i := 0; i < len(src); i++ {
		ch := src[i]
		if ch == '\n' {
			line++
			comment = false
			b.WriteByte(' ')
			continue
		}
		if comment {
			continue
		}
		switch ch {
		case '%':
			comment = true
		case '(':
			depth++
			mark()
			b.WriteByte(ch)
		case ')':
			depth--
			b.WriteByte(ch)
		case '.':
			next := byte(0)
			if i+1 < len(src) {
				next = src[i+1]
			}
			if depth == 0 && (next == 0 || next == ' ' || next == '\t' || next == '\r' || next == '\n' || next == '%') {
				flush()
				continue
			}
			mark()
			b.WriteByte(ch)
		default:
			if ch != ' ' && ch != '\t' && ch != '\r' {
				mark()
			}
			b.WriteByte(ch)
		}
	}
	flush()
	return clauses
}

func parseClause(m *Model, text string) error {
	if head, body, isRule := strings.Cut(text, ":-"); isRule {
		if strings.Contains(head, "::") {
			return fmt.Errorf("annotated disjunctions with a rule body are not supported: %q", text)
		}
		headTerm, err := term.Parse(strings.TrimSpace(head))
		if err != nil {
			return err
		}
		var bodyTerms []term.Term
		for _, part := range splitTopLevel(body, ',') {
			atom, err := term.Parse(strings.TrimSpace(part))
			if err != nil {
				return err
			}
			bodyTerms = append(bodyTerms, atom)
		}
		return m.AddRule(headTerm, bodyTerms...)
	}

	if strings.Contains(text, "::") {
		return parseProbabilisticClause(m, text)
	}

	t, err := term.Parse(text)
	if err != nil {
		return err
	}
	return m.AddFact(t)
}

func parseProbabilisticClause(m *Model, text string) error {
	parts := splitTopLevel(text, ';')
	alts := make([]term.Term, 0, len(parts))
	probs := make([]float64, 0, len(parts))
	for _, part := range parts {
		probText, termText, ok := strings.Cut(strings.TrimSpace(part), "::")
		if !ok {
			return fmt.Errorf("choice alternative %q is missing a probability annotation", part)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(probText), 64)
		if err != nil {
			return fmt.Errorf("malformed probability %q: %w", probText, err)
		}
		t, err := term.Parse(strings.TrimSpace(termText))
		if err != nil {
			return err
		}
		alts = append(alts, t)
		probs = append(probs, p)
	}
	if len(alts) == 1 {
		return m.AddProbabilisticFact(alts[0], probs[0])
	}
	return m.AddChoice(alts, probs)
}

// splitTopLevel splits on sep outside parentheses.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
