// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package locator

// This file contains the locator text parser and the canonical
// renderer.  The grammar is
//
//     locator   := single | pair ("," pair)*
//     single    := value
//     pair      := name ":" value | name "(" locator-text ")"
//     value     := plain | "(" locator-text ")" | "$base64:" base64
//
// A plain value runs up to the next top-level comma; parentheses
// inside it must balance.

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// base64Prefix marks a value whose remainder is base64 encoded.  This
// is how values with unbalanced parentheses are written.
const base64Prefix = "$base64:"

// Pair is a single dimension occurrence in a locator.
type Pair struct {
	Name  string
	Value string
}

// Parsed is the immutable result of parsing locator text.  It carries
// no usage tracking, so a single Parsed can be shared between
// goroutines and turned into any number of Locator objects.
type Parsed struct {
	text   string
	single bool
	value  string
	pairs  []Pair
}

// Text returns the text the locator was parsed from.
func (p Parsed) Text() string {
	return p.text
}

// IsSingleValue returns true if the locator is a bare value with no
// named dimensions.
func (p Parsed) IsSingleValue() bool {
	return p.single
}

// IsEmpty returns true if the locator has neither a single value nor
// any dimensions.
func (p Parsed) IsEmpty() bool {
	return !p.single && len(p.pairs) == 0
}

// Pairs returns the dimension occurrences in the order they appeared.
func (p Parsed) Pairs() []Pair {
	return append([]Pair(nil), p.pairs...)
}

// String renders the locator in canonical form.
func (p Parsed) String() string {
	if p.single {
		return EscapeValue(p.value)
	}
	return renderPairs(p.pairs)
}

func renderPairs(pairs []Pair) string {
	parts := make([]string, len(pairs))
	for i, pair := range pairs {
		parts[i] = pair.Name + ":" + EscapeValue(pair.Value)
	}
	return strings.Join(parts, ",")
}

// Parse parses locator text.  Empty (or all-whitespace) text produces
// an empty locator.  Syntax errors are returned as ErrBadRequest.
func Parse(text string) (Parsed, error) {
	result := Parsed{text: text}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return result, nil
	}
	p := parser{text: trimmed}
	if p.isSingleValue() {
		value, err := p.singleValue()
		if err != nil {
			return result, p.fail(err.Error())
		}
		result.single = true
		result.value = value
		return result, nil
	}
	for {
		pair, err := p.pair()
		if err != nil {
			return result, err
		}
		result.pairs = append(result.pairs, pair)
		if p.done() {
			break
		}
		// pair() only stops at a comma or the end
		p.pos++
		if p.done() {
			return result, p.fail("dimension expected after ','")
		}
	}
	return result, nil
}

type parser struct {
	text string
	pos  int
}

func (p *parser) done() bool {
	return p.pos >= len(p.text)
}

func (p *parser) fail(message string) error {
	return ErrBadRequest{Message: fmt.Sprintf(
		"Bad locator syntax: %s. Details: locator: '%s', at position %d",
		message, p.text, p.pos)}
}

// isSingleValue decides whether the whole text is a bare value: it
// has no top-level colon, comma or dimension-opening parenthesis.  A
// text that is entirely one parenthesized group is a quoted single
// value, as is anything starting with the base64 marker.
func (p *parser) isSingleValue() bool {
	if strings.HasPrefix(p.text, base64Prefix) {
		return true
	}
	if p.text[0] == '(' {
		end, ok := matchParen(p.text, 0)
		return ok && end == len(p.text)-1
	}
	depth := 0
	for _, c := range p.text {
		switch c {
		case '(':
			if depth == 0 {
				return false
			}
			depth++
		case ')':
			depth--
		case ':', ',':
			if depth == 0 {
				return false
			}
		}
	}
	return true
}

func (p *parser) singleValue() (string, error) {
	text := p.text
	if text[0] == '(' {
		p.pos = len(text)
		return text[1 : len(text)-1], nil
	}
	if !balanced(text) {
		return "", fmt.Errorf("unbalanced ')'")
	}
	p.pos = len(text)
	return decodeValue(text)
}

// pair reads one "name:value" or "name(value)" and leaves pos at the
// following comma or at the end of the text.
func (p *parser) pair() (Pair, error) {
	start := p.pos
	for !p.done() {
		c := p.text[p.pos]
		if c == ':' || c == '(' || c == ',' || c == ')' {
			break
		}
		p.pos++
	}
	name := strings.TrimSpace(p.text[start:p.pos])
	if name == "" {
		return Pair{}, p.fail("dimension name expected")
	}
	if !validName(name) {
		return Pair{}, p.fail(fmt.Sprintf("invalid dimension name '%s'", name))
	}
	if p.done() || p.text[p.pos] == ',' {
		return Pair{}, p.fail(fmt.Sprintf("no value for dimension '%s': ':' expected", name))
	}
	if p.text[p.pos] == ')' {
		return Pair{}, p.fail("unbalanced ')'")
	}
	var (
		value string
		err   error
	)
	if p.text[p.pos] == '(' {
		value, err = p.group()
	} else {
		// skip the ':'
		p.pos++
		if !p.done() && p.text[p.pos] == '(' {
			value, err = p.group()
		} else {
			value, err = p.plain()
		}
	}
	if err != nil {
		return Pair{}, err
	}
	if !p.done() && p.text[p.pos] != ',' {
		return Pair{}, p.fail("',' expected after value of dimension '" + name + "'")
	}
	return Pair{Name: name, Value: value}, nil
}

// group reads a parenthesized value starting at pos and returns its
// contents without the outer parentheses.
func (p *parser) group() (string, error) {
	end, ok := matchParen(p.text, p.pos)
	if !ok {
		return "", p.fail("unbalanced '('")
	}
	value := p.text[p.pos+1 : end]
	p.pos = end + 1
	for !p.done() && p.text[p.pos] == ' ' {
		p.pos++
	}
	return value, nil
}

// plain reads a value up to the next top-level comma.
func (p *parser) plain() (string, error) {
	start := p.pos
	depth := 0
	for !p.done() {
		c := p.text[p.pos]
		if c == ',' && depth == 0 {
			break
		}
		if c == '(' {
			depth++
		} else if c == ')' {
			if depth == 0 {
				return "", p.fail("unbalanced ')'")
			}
			depth--
		}
		p.pos++
	}
	if depth != 0 {
		return "", p.fail("unbalanced '('")
	}
	value, err := decodeValue(p.text[start:p.pos])
	if err != nil {
		return "", p.fail(err.Error())
	}
	return value, nil
}

// matchParen returns the index of the parenthesis closing the one at
// text[open].
func matchParen(text string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func validName(name string) bool {
	for i, c := range name {
		switch {
		case c == '$' && i == 0:
		case c == '_', c == '-', c == '.',
			c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

func decodeValue(value string) (string, error) {
	if !strings.HasPrefix(value, base64Prefix) {
		return value, nil
	}
	encoded := value[len(base64Prefix):]
	bytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return "", fmt.Errorf("invalid base64 value '%s'", encoded)
	}
	return string(bytes), nil
}

// EscapeValue renders a dimension value so that Parse returns it
// unchanged.  Values with locator punctuation are parenthesized;
// values whose parentheses do not balance are base64 encoded.
func EscapeValue(value string) string {
	if strings.HasPrefix(value, base64Prefix) || !balanced(value) {
		return base64Prefix + base64.RawURLEncoding.EncodeToString([]byte(value))
	}
	if value != strings.TrimSpace(value) || strings.ContainsAny(value, ",:()") {
		return "(" + value + ")"
	}
	return value
}

func balanced(value string) bool {
	depth := 0
	for _, c := range value {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
