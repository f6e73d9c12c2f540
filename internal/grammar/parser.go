package grammar

import (
	"fmt"
	"strings"
)

// ParsedComponent is a BEGIN:X ... END:X block: a name, its own properties,
// and any nested components in the order they appeared.
type ParsedComponent struct {
	Name       string
	Properties []ContentLine
	Children   []*ParsedComponent
}

// Prop returns the first property with the given name.
func (c *ParsedComponent) Prop(name string) (ContentLine, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return ContentLine{}, false
}

// Props returns every property with the given name, in order.
func (c *ParsedComponent) Props(name string) []ContentLine {
	var out []ContentLine
	for _, p := range c.Properties {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

// ChildrenNamed returns direct children with the given component name.
func (c *ParsedComponent) ChildrenNamed(name string) []*ParsedComponent {
	var out []*ParsedComponent
	for _, ch := range c.Children {
		if ch.Name == name {
			out = append(out, ch)
		}
	}
	return out
}

// ParseError reports a component-nesting violation or a property line
// appearing outside of any component.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ical: parse error: %s", e.Msg)
}

// Parse consumes a full content-line stream and returns the top-level
// components (typically a single VCALENDAR).
func Parse(text string) ([]*ParsedComponent, error) {
	lex := NewLexer(text)
	var stack []*ParsedComponent
	var roots []*ParsedComponent

	for {
		cl, ok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		switch cl.Name {
		case "BEGIN":
			comp := &ParsedComponent{Name: strings.ToUpper(cl.Value)}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, comp)
			}
			stack = append(stack, comp)
		case "END":
			if len(stack) == 0 {
				return nil, &ParseError{Msg: "END with no matching BEGIN"}
			}
			top := stack[len(stack)-1]
			wantName := strings.ToUpper(cl.Value)
			if top.Name != wantName {
				return nil, &ParseError{Msg: fmt.Sprintf("END:%s does not match open BEGIN:%s", wantName, top.Name)}
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				roots = append(roots, top)
			}
		default:
			if len(stack) == 0 {
				return nil, &ParseError{Msg: "property " + cl.Name + " outside any component"}
			}
			top := stack[len(stack)-1]
			top.Properties = append(top.Properties, cl)
		}
	}

	if len(stack) != 0 {
		return nil, &ParseError{Msg: "unexpected end of input: " + stack[len(stack)-1].Name + " was never closed"}
	}
	return roots, nil
}
