package engine

import (
	"strings"
)

// Template is a command template with named {placeholders}. Doubled braces
// ("{{" and "}}") render as literal braces.
type Template struct {
	source   string
	segments []segment
}

// segment is either literal text or a placeholder key.
type segment struct {
	text  string
	isKey bool
}

// ParseTemplate splits a command template into literals and placeholders.
func ParseTemplate(source string) (*Template, error) {
	var (
		segments []segment
		literal  strings.Builder
	)

	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(source); i++ {
		c := source[i]
		switch c {
		case '{':
			if i+1 < len(source) && source[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(source[i+1:], "{}")
			if end < 0 || source[i+1+end] != '}' {
				return nil, NewMalformedTemplateError("unclosed '{'", i)
			}
			flush()
			segments = append(segments, segment{text: source[i+1 : i+1+end], isKey: true})
			i += end + 1
		case '}':
			if i+1 < len(source) && source[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, NewMalformedTemplateError("single '}' encountered", i)
		default:
			literal.WriteByte(c)
		}
	}
	flush()

	return &Template{source: source, segments: segments}, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
func MustParseTemplate(source string) *Template {
	t, err := ParseTemplate(source)
	if err != nil {
		panic(err)
	}
	return t
}

// Source returns the unparsed template.
func (t *Template) Source() string {
	return t.source
}

// Placeholders returns the distinct keys in order of first appearance.
func (t *Template) Placeholders() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, seg := range t.segments {
		if seg.isKey && !seen[seg.text] {
			seen[seg.text] = true
			keys = append(keys, seg.text)
		}
	}
	return keys
}

// Execute substitutes every placeholder from table. A key absent from the
// table fails with ErrCodeMissingPlaceholder.
func (t *Template) Execute(table map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(t.source))

	for _, seg := range t.segments {
		if !seg.isKey {
			b.WriteString(seg.text)
			continue
		}
		value, ok := table[seg.text]
		if !ok {
			return "", NewMissingPlaceholderError(seg.text)
		}
		b.WriteString(value)
	}

	return b.String(), nil
}
