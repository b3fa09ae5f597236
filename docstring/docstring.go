// Package docstring extracts the operation description, status code
// descriptions and tags from free-form handler documentation.
//
//	Find a pet by id.
//
//	Status Codes:
//	    200: The pet
//	    404: No pet with this id
//	        exists in the store
//
//	Tags: pets, store
package docstring

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	statusCodesHeader = regexp.MustCompile(`^\s*[Ss]tatus\s+[Cc]odes\s*:\s*$`)
	tagsHeader        = regexp.MustCompile(`^\s*[Tt]ags\s*:(.*)$`)
	statusCodeLine    = regexp.MustCompile(`^\s*(\d{3})\s*:\s*(.*)$`)
)

// Doc is parsed documentation.
type Doc struct {
	Description string
	StatusCodes map[int]string
	Tags        []string
}

// Parse splits documentation into its description, status code and tags
// sections.
func Parse(text string) Doc {
	return Doc{
		Description: Operation(text),
		StatusCodes: StatusCodes(text),
		Tags:        Tags(text),
	}
}

// Operation returns the documentation without its "Status Codes:" and
// "Tags:" blocks, dedented and trimmed.
func Operation(text string) string {
	lines := splitLines(text)
	var kept []string

	for i := 0; i < len(lines); i++ {
		if statusCodesHeader.MatchString(lines[i]) || tagsHeader.MatchString(lines[i]) {
			i += len(block(lines, i))
			continue
		}
		kept = append(kept, lines[i])
	}

	return strings.TrimSpace(dedent(kept))
}

// StatusCodes returns the descriptions listed in the "Status Codes:" block,
// keyed by code. Lines indented deeper than an entry continue its
// description.
func StatusCodes(text string) map[int]string {
	codes := make(map[int]string)
	lines := splitLines(text)

	for i, line := range lines {
		if !statusCodesHeader.MatchString(line) {
			continue
		}

		current := 0
		entryIndent := -1
		for _, entry := range block(lines, i) {
			if strings.TrimSpace(entry) == "" {
				continue
			}

			indent := indentOf(entry)
			if m := statusCodeLine.FindStringSubmatch(entry); m != nil && (entryIndent < 0 || indent <= entryIndent) {
				code, err := strconv.Atoi(m[1])
				if err != nil {
					continue
				}
				current = code
				entryIndent = indent
				codes[code] = strings.TrimSpace(m[2])
				continue
			}

			if current != 0 {
				codes[current] = strings.TrimSpace(codes[current] + " " + strings.TrimSpace(entry))
			}
		}
	}

	return codes
}

// Tags returns the comma or semicolon separated names of the "Tags:" block.
func Tags(text string) []string {
	lines := splitLines(text)

	for i, line := range lines {
		m := tagsHeader.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		raw := m[1]
		for _, more := range block(lines, i) {
			raw += " " + more
		}

		var tags []string
		for _, tag := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
			if tag = strings.Join(strings.Fields(tag), " "); tag != "" {
				tags = append(tags, tag)
			}
		}
		return tags
	}

	return nil
}

// block returns the lines following the header at index i that belong to
// it: blank lines and lines indented deeper than the header. Trailing blank
// lines are not part of the block.
func block(lines []string, i int) []string {
	indent := indentOf(lines[i])
	end := i + 1
	last := i

	for ; end < len(lines); end++ {
		if strings.TrimSpace(lines[end]) == "" {
			continue
		}
		if indentOf(lines[end]) <= indent {
			break
		}
		last = end
	}

	return lines[i+1 : last+1]
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	return strings.Split(text, "\n")
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

// dedent removes the indentation shared by all non-blank lines.
func dedent(lines []string) string {
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n := indentOf(line); common < 0 || n < common {
			common = n
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out[i] = strings.TrimRight(line[common:], " ")
	}

	return strings.Join(out, "\n")
}
