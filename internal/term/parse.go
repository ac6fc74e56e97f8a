package term

import (
	"fmt"
	"strings"
	"unicode"
)

// Parse reads a single term from s, e.g. "at(truck1, paris)" or "cost(3)".
// The full input must be consumed; trailing characters are an error.
func Parse(s string) (Term, error) {
	p := &parser{input: s}
	p.skipSpace()
	t, err := p.parseTerm()
	if err != nil {
		return Term{}, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return Term{}, fmt.Errorf("term: trailing input %q at offset %d", p.input[p.pos:], p.pos)
	}
	return t, nil
}

// MustParse is Parse for fixtures and tests; it panics on malformed input.
func MustParse(s string) Term {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parseTerm() (Term, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return Term{}, fmt.Errorf("term: unexpected end of input at offset %d", p.pos)
	}

	c := p.input[p.pos]
	if c == '-' || (c >= '0' && c <= '9') {
		return p.parseNumber()
	}
	if !isIdentStart(rune(c)) {
		return Term{}, fmt.Errorf("term: unexpected character %q at offset %d", c, p.pos)
	}

	name := p.scanIdent()
	p.skipSpace()
	if p.pos >= len(p.input) || p.input[p.pos] != '(' {
		return Term{functor: name}, nil
	}

	p.pos++ // consume '('
	var args []Term
	for {
		arg, err := p.parseTerm()
		if err != nil {
			return Term{}, err
		}
		args = append(args, arg)

		p.skipSpace()
		if p.pos >= len(p.input) {
			return Term{}, fmt.Errorf("term: unterminated argument list for %q", name)
		}
		switch p.input[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return Term{functor: name, args: args}, nil
		default:
			return Term{}, fmt.Errorf("term: expected ',' or ')' at offset %d, got %q", p.pos, p.input[p.pos])
		}
	}
}

func (p *parser) parseNumber() (Term, error) {
	start := p.pos
	if p.input[p.pos] == '-' {
		p.pos++
	}
	digits := 0
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
		digits++
	}
	if p.pos < len(p.input) && p.input[p.pos] == '.' && p.pos+1 < len(p.input) &&
		p.input[p.pos+1] >= '0' && p.input[p.pos+1] <= '9' {
		p.pos++
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
		}
	}
	if digits == 0 {
		return Term{}, fmt.Errorf("term: malformed number at offset %d", start)
	}
	return Term{functor: p.input[start:p.pos], number: true}, nil
}

func (p *parser) scanIdent() string {
	start := p.pos
	for p.pos < len(p.input) && isIdentPart(rune(p.input[p.pos])) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && strings.ContainsRune(" \t\r\n", rune(p.input[p.pos])) {
		p.pos++
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
