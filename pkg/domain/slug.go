package domain

import (
	"regexp"
	"strings"
)

var (
	whitespace  = regexp.MustCompile(`[\s\p{Zs}]`)
	nonSlugChar = regexp.MustCompile(`[^A-Za-z0-9-]`)
)

// Slug derives the canonical page slug from a title: whitespace becomes a
// dash, anything outside [A-Za-z0-9-] is dropped, and the result is lowercased.
func Slug(title string) string {
	s := whitespace.ReplaceAllString(title, "-")
	s = nonSlugChar.ReplaceAllString(s, "")
	return strings.ToLower(s)
}
