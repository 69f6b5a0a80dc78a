package dsl

import "regexp"

var bracketLink = regexp.MustCompile(`\[\[.*?\]\]`)

// ExtractLinks returns the titles of every [[bracket link]] in text, in order
// of appearance. Repeated links are kept.
func ExtractLinks(text string) []string {
	matches := bracketLink.FindAllString(text, -1)
	titles := make([]string, 0, len(matches))
	for _, m := range matches {
		titles = append(titles, m[2:len(m)-2])
	}
	return titles
}
