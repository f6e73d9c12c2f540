// Package grammar implements the RFC 5545 content-line grammar: unfolding,
// tokenizing, component nesting, and the inverse (folding, emitting). It
// knows nothing about property semantics — that bridging happens one layer
// up, in the ical package's typed decoder.
package grammar

import "fmt"

// Parameter is one NAME=value[,value...] qualifier on a content line.
type Parameter struct {
	Name   string
	Values []string
}

// ContentLine is one logical, unfolded, unescaped-at-the-punctuation-level
// line: a name, its parameters, and the raw (still value-escaped) value.
type ContentLine struct {
	Name       string
	Parameters []Parameter
	Value      string
}

// Param returns the first parameter with the given name (case-insensitive
// callers are expected to pass an upper-cased name, since parameter names
// are normalized to upper-case during tokenizing).
func (c ContentLine) Param(name string) (Parameter, bool) {
	for _, p := range c.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// ParamValue returns the first value of the named parameter, if present.
func (c ContentLine) ParamValue(name string) (string, bool) {
	p, ok := c.Param(name)
	if !ok || len(p.Values) == 0 {
		return "", false
	}
	return p.Values[0], true
}

// LexError reports a malformed content line: bad folding or an unterminated
// quoted parameter value.
type LexError struct {
	Line int
	Msg  string
}

func (e *LexError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ical: lex error at line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("ical: lex error: %s", e.Msg)
}
