package utils

import (
	"regexp"
	"strings"
)

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9-]+`)
	slugCollapse = regexp.MustCompile(`-+`)
	slugShape    = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// GenerateSlug derives a URL slug from a title: lowercase, spaces to
// hyphens, everything outside [a-z0-9-] stripped, runs of hyphens collapsed.
func GenerateSlug(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	hyphenated := strings.ReplaceAll(lower, " ", "-")
	cleaned := slugInvalid.ReplaceAllString(hyphenated, "")
	normalized := slugCollapse.ReplaceAllString(cleaned, "-")
	return strings.Trim(normalized, "-")
}

// IsValidSlug reports whether s contains only lowercase letters, digits and
// hyphens.
func IsValidSlug(s string) bool {
	return slugShape.MatchString(s)
}
