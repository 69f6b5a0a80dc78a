package dsl

import "regexp"

var spaceRun = regexp.MustCompile(` +`)

// Quote turns a title into a DOT string literal, replacing every run of
// spaces with a line break so long titles render as multi-line labels.
// The transform is one-way: quoting an already quoted label nests the quotes.
func Quote(s string) string {
	return `"` + spaceRun.ReplaceAllString(s, "\n") + `"`
}
