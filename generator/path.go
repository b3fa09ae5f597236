package generator

import "strings"

// PathTemplate turns a mux path template into an OpenAPI path by dropping
// variable patterns: "/pets/{id:[0-9]+}" becomes "/pets/{id}". Patterns may
// contain nested braces.
func PathTemplate(tpl string) string {
	var b strings.Builder
	b.Grow(len(tpl))

	for i := 0; i < len(tpl); i++ {
		if tpl[i] != '{' {
			b.WriteByte(tpl[i])
			continue
		}

		end := closingBrace(tpl, i)
		if end < 0 {
			b.WriteString(tpl[i:])
			break
		}

		name, _, _ := strings.Cut(tpl[i+1:end], ":")
		b.WriteByte('{')
		b.WriteString(strings.TrimSpace(name))
		b.WriteByte('}')
		i = end
	}

	return b.String()
}

// closingBrace returns the index of the brace closing the one at start,
// or -1 when braces are unbalanced.
func closingBrace(s string, start int) int {
	level := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			level++
		case '}':
			if level--; level == 0 {
				return i
			}
		}
	}
	return -1
}
