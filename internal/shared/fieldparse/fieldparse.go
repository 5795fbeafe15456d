// Package fieldparse turns free-form multi-line text fields from the console
// forms into structured entries. The grammar is deliberately lenient: empty
// input yields an empty slice and blank entries are dropped silently, never
// reported as errors.
package fieldparse

import "strings"

// Pair is a "primary | secondary" entry, e.g. a gallery "url | caption" or a
// metric "label | value". Secondary is empty when no separator was present.
type Pair struct {
	Primary   string
	Secondary string
}

// Lines splits s on newlines, trimming each entry and dropping blanks.
func Lines(s string) []string {
	return split(s, func(r rune) bool { return r == '\n' || r == '\r' })
}

// List splits s on newlines or commas, trimming each entry and dropping
// blanks. Used for tag and technology lists where both styles appear.
func List(s string) []string {
	return split(s, func(r rune) bool { return r == '\n' || r == '\r' || r == ',' })
}

// Pairs splits s into lines and each line on the first '|'. Lines whose
// primary segment is empty after trimming are dropped.
func Pairs(s string) []Pair {
	lines := Lines(s)
	pairs := make([]Pair, 0, len(lines))
	for _, line := range lines {
		primary, secondary, found := strings.Cut(line, "|")
		primary = strings.TrimSpace(primary)
		if primary == "" {
			continue
		}
		p := Pair{Primary: primary}
		if found {
			p.Secondary = strings.TrimSpace(secondary)
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func split(s string, sep func(rune) bool) []string {
	fields := strings.FieldsFunc(s, sep)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}
