package grammar

import (
	"fmt"
	"strings"
)

// foldLimit is the maximum number of octets RFC 5545 allows per physical
// output line, CRLF excluded.
const foldLimit = 75

// Fold breaks a logical content line into RFC 5545's folded physical-line
// form: CRLF followed by a single space before each 75-octet boundary. It
// never splits a UTF-8 rune across lines.
func Fold(line string) string {
	if len(line) <= foldLimit {
		return line
	}

	var out strings.Builder
	pos := 0
	chunk := foldLimit
	for pos < len(line) {
		end := pos + chunk
		if end >= len(line) {
			end = len(line)
		} else {
			for end > pos && isUTF8Continuation(line[end]) {
				end--
			}
		}
		if pos > 0 {
			out.WriteString("\r\n ")
		}
		out.WriteString(line[pos:end])
		pos = end
		chunk = foldLimit - 1 // the inserted leading space counts toward the next line's budget
	}
	return out.String()
}

func isUTF8Continuation(b byte) bool {
	return b&0xC0 == 0x80
}

// EscapeText applies the RFC 5545 TEXT value escapes: backslash, comma,
// semicolon, and newline.
func EscapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ',':
			b.WriteString(`\,`)
		case ';':
			b.WriteString(`\;`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnescapeText reverses EscapeText: \\, \,, \;, \n and \N all collapse to
// their literal character.
func UnescapeText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
			case ',':
				b.WriteByte(',')
			case ';':
				b.WriteByte(';')
			case 'n', 'N':
				b.WriteByte('\n')
			default:
				b.WriteByte(s[i])
				continue
			}
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// UnescapeTextStrict behaves like UnescapeText but rejects a trailing
// backslash or a backslash escape it does not recognize, instead of
// passing it through verbatim.
func UnescapeTextStrict(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			if i+1 >= len(s) {
				return "", fmt.Errorf("malformed escape: trailing backslash in %q", s)
			}
			switch s[i+1] {
			case '\\':
				b.WriteByte('\\')
			case ',':
				b.WriteByte(',')
			case ';':
				b.WriteByte(';')
			case 'n', 'N':
				b.WriteByte('\n')
			default:
				return "", fmt.Errorf("malformed escape %q in %q", s[i:i+2], s)
			}
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}

// quoteParamValueIfNeeded wraps a parameter value in double quotes when it
// contains a character that is unsafe unquoted (":", ";", ",").
func quoteParamValueIfNeeded(v string) string {
	if strings.ContainsAny(v, ":;,") {
		return `"` + v + `"`
	}
	return v
}

// WriteContentLine renders one content line (name, parameters, value),
// folded per RFC 5545, terminated with CRLF.
func WriteContentLine(b *strings.Builder, cl ContentLine) {
	var raw strings.Builder
	raw.WriteString(cl.Name)
	for _, p := range cl.Parameters {
		raw.WriteByte(';')
		raw.WriteString(p.Name)
		raw.WriteByte('=')
		for i, v := range p.Values {
			if i > 0 {
				raw.WriteByte(',')
			}
			raw.WriteString(quoteParamValueIfNeeded(v))
		}
	}
	raw.WriteByte(':')
	raw.WriteString(cl.Value)

	b.WriteString(Fold(raw.String()))
	b.WriteString("\r\n")
}

// EmitComponents serializes a component tree back to folded content-line
// text, the inverse of Parse.
func EmitComponents(roots []*ParsedComponent) string {
	var b strings.Builder
	for _, r := range roots {
		emitComponent(&b, r)
	}
	return b.String()
}

func emitComponent(b *strings.Builder, c *ParsedComponent) {
	WriteContentLine(b, ContentLine{Name: "BEGIN", Value: c.Name})
	for _, p := range c.Properties {
		WriteContentLine(b, p)
	}
	for _, child := range c.Children {
		emitComponent(b, child)
	}
	WriteContentLine(b, ContentLine{Name: "END", Value: c.Name})
}
