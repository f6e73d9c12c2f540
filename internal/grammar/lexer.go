package grammar

import "strings"

// Lexer unfolds physical lines into logical content lines and tokenizes
// each one. It is a pull-based scanner: the parser calls Next until it
// reports io.EOF-equivalent (ok == false, err == nil).
type Lexer struct {
	lines  []string
	pos    int
	lineNo int
}

// NewLexer prepares a scanner over raw iCalendar text. CRLF and bare LF
// line endings are both accepted; a leading byte-order mark is stripped.
func NewLexer(text string) *Lexer {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	return &Lexer{lines: lines}
}

// Next returns the next logical content line. ok is false with a nil err
// once the input is exhausted.
func (l *Lexer) Next() (ContentLine, bool, error) {
	for {
		logical, ok, err := l.nextLogicalLine()
		if err != nil || !ok {
			return ContentLine{}, false, err
		}
		if strings.TrimSpace(logical) == "" {
			continue
		}
		cl, err := tokenizeLine(logical, l.lineNo)
		if err != nil {
			return ContentLine{}, false, err
		}
		return cl, true, nil
	}
}

// nextLogicalLine joins a physical line with any continuation lines that
// follow it (lines starting with a space or tab).
func (l *Lexer) nextLogicalLine() (string, bool, error) {
	if l.pos >= len(l.lines) {
		return "", false, nil
	}
	first := l.lines[l.pos]
	l.pos++
	l.lineNo++
	if len(first) > 0 && (first[0] == ' ' || first[0] == '\t') {
		return "", false, &LexError{Line: l.lineNo, Msg: "continuation line with no predecessor"}
	}
	var b strings.Builder
	b.WriteString(first)
	for l.pos < len(l.lines) {
		next := l.lines[l.pos]
		if len(next) == 0 || (next[0] != ' ' && next[0] != '\t') {
			break
		}
		b.WriteString(next[1:])
		l.pos++
		l.lineNo++
	}
	return b.String(), true, nil
}

// tokenizeLine parses NAME (";" PARAM-NAME "=" PARAM-VALUE ("," PARAM-VALUE)*)* ":" VALUE.
func tokenizeLine(line string, lineNo int) (ContentLine, error) {
	n := len(line)
	i := 0

	start := i
	for i < n && isNameChar(rune(line[i])) {
		i++
	}
	if i == start {
		return ContentLine{}, &LexError{Line: lineNo, Msg: "missing property or component name"}
	}
	name := strings.ToUpper(line[start:i])

	var params []Parameter
	for i < n && line[i] == ';' {
		i++
		pstart := i
		for i < n && isNameChar(rune(line[i])) {
			i++
		}
		if i == pstart {
			return ContentLine{}, &LexError{Line: lineNo, Msg: "missing parameter name"}
		}
		pname := strings.ToUpper(line[pstart:i])
		if i >= n || line[i] != '=' {
			return ContentLine{}, &LexError{Line: lineNo, Msg: "expected '=' after parameter name " + pname}
		}
		i++

		var values []string
		for {
			val, next, err := parseParamValue(line, i, lineNo)
			if err != nil {
				return ContentLine{}, err
			}
			values = append(values, val)
			i = next
			if i < n && line[i] == ',' {
				i++
				continue
			}
			break
		}
		params = append(params, Parameter{Name: pname, Values: values})
	}

	if i >= n || line[i] != ':' {
		return ContentLine{}, &LexError{Line: lineNo, Msg: "missing ':' terminating " + name}
	}
	value := line[i+1:]
	return ContentLine{Name: name, Parameters: params, Value: value}, nil
}

// parseParamValue reads one (possibly quoted) parameter value starting at i,
// returning the unquoted value and the index just past it.
func parseParamValue(line string, i int, lineNo int) (string, int, error) {
	n := len(line)
	if i < n && line[i] == '"' {
		i++
		start := i
		for i < n && line[i] != '"' {
			i++
		}
		if i >= n {
			return "", i, &LexError{Line: lineNo, Msg: "unterminated quoted parameter value"}
		}
		val := line[start:i]
		i++ // consume closing quote
		return val, i, nil
	}
	start := i
	for i < n && line[i] != ':' && line[i] != ';' && line[i] != ',' {
		i++
	}
	return line[start:i], i, nil
}

func isNameChar(r rune) bool {
	return r == '-' ||
		(r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9')
}
