package judge

import "strings"

// Argument is one `name = value` binding parsed from a raw test-case input
// such as `nums = [1,2,3], target = 5`.
type Argument struct {
	Name  string
	Value string
}

// splitTopLevel splits s on sep, but only at bracket/paren/brace depth zero
// and outside string literals. Naive comma splitting breaks on values that
// themselves contain commas (nested arrays, objects), so depth is tracked.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++ // skip escaped char inside a string literal
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			if depth > 0 {
				depth--
			}
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

// ParseTestInput parses a raw test-case input string of the form
// `name1 = value1, name2 = value2` into ordered arguments. Values are kept
// verbatim (minus surrounding whitespace); a segment with no `=` becomes an
// unnamed positional value.
func ParseTestInput(raw string) []Argument {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	segments := splitTopLevel(raw, ',')
	args := make([]Argument, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if eq := strings.Index(seg, "="); eq >= 0 && !strings.HasPrefix(seg[eq:], "==") {
			args = append(args, Argument{
				Name:  strings.TrimSpace(seg[:eq]),
				Value: strings.TrimSpace(seg[eq+1:]),
			})
			continue
		}
		args = append(args, Argument{Value: seg})
	}
	return args
}
