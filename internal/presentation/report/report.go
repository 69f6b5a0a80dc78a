// Package report renders build reports as text for people: markdown for the
// terminal and the HTTP API, and federated wiki pages for the wiki itself.
package report

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/dig/pkg/domain"
)

// Titles of the generated report pages.
const (
	TitleHandbookSource    = "Handbook Source"
	TitleConversionSummary = "Conversion Summary"
	TitleBuildProblems     = "Build Problems"
)

const timeLayout = time.RFC1123

// HandbookSource describes the source site as seen by the last build.
func HandbookSource(r *domain.Report) string {
	lastUpdate := "unknown"
	if r.LastUpdate > 0 {
		lastUpdate = time.UnixMilli(r.LastUpdate).UTC().Format(timeLayout)
	}

	var sb strings.Builder
	sb.WriteString("Before we start we check to see if our source has been updated since our last build.\n\n")
	sb.WriteString("Sitemap information.\n\n")
	fmt.Fprintf(&sb, "[%s %s]\n\n", r.Site, r.Site)
	fmt.Fprintf(&sb, "%d pages\n\n", r.SitemapSize)
	fmt.Fprintf(&sb, "Last Site Update\n%s\n\n", lastUpdate)
	fmt.Fprintf(&sb, "Last Build Started\n%s\n", r.StartedAt.UTC().Format(timeLayout))
	return sb.String()
}

// ConversionSummary lists the pages with and without diagrams.
func ConversionSummary(r *domain.Report) string {
	var sb strings.Builder
	sb.WriteString("We create PNG files for pages with diagrams.\n\n")
	fmt.Fprintf(&sb, "Pages with diagrams\n%s\n\n", links(r.Written))
	fmt.Fprintf(&sb, "Pages without diagrams\n%s\n", links(r.Skipped))
	return sb.String()
}

// BuildProblems lists failed diagrams and reachability findings, or "" if there are none.
func BuildProblems(r *domain.Report) string {
	var sb strings.Builder
	if len(r.Failed) > 0 {
		sb.WriteString("Pages whose diagram failed\n")
		for _, title := range sortedKeys(r.Failed) {
			reason, _, _ := strings.Cut(r.Failed[title], "\n")
			fmt.Fprintf(&sb, "[[%s]] %s\n", title, reason)
		}
		sb.WriteString("\n")
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(&sb, "Missing pages\n%s\n\n", links(r.Missing))
	}
	if len(r.Unreachable) > 0 {
		fmt.Fprintf(&sb, "Unreachable pages\n%s\n\n", links(r.Unreachable))
	}
	for _, key := range r.Trouble.Keys() {
		fmt.Fprintf(&sb, "Trouble: %s\n%s\n\n", key, links(r.Trouble[key]))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Markdown renders the whole report as one document.
func Markdown(r *domain.Report) string {
	var sb strings.Builder
	if r.Error != "" {
		fmt.Fprintf(&sb, "> **Build failed:** %s\n\n", r.Error)
	}
	section(&sb, TitleHandbookSource, HandbookSource(r))
	section(&sb, TitleConversionSummary, ConversionSummary(r))
	if problems := BuildProblems(r); problems != "" {
		section(&sb, TitleBuildProblems, problems)
	}
	return sb.String()
}

// Pages returns the report as wiki pages, keyed by slug.
func Pages(r *domain.Report) map[string]*domain.Page {
	pages := map[string]*domain.Page{}
	add := func(title, text string) {
		page := AsPage(title, text)
		pages[page.Slug()] = page
	}
	add(TitleHandbookSource, HandbookSource(r))
	add(TitleConversionSummary, ConversionSummary(r))
	if problems := BuildProblems(r); problems != "" {
		add(TitleBuildProblems, problems)
	}
	return pages
}

var paragraphBreak = regexp.MustCompile(`\n+`)

// AsPage turns text into a page with one paragraph per non-empty line.
func AsPage(title, text string) *domain.Page {
	page := &domain.Page{Title: title, Story: []domain.StoryItem{}}
	for i, line := range paragraphBreak.Split(strings.TrimSpace(text), -1) {
		if line == "" {
			continue
		}
		page.Story = append(page.Story, domain.StoryItem{
			Type: domain.ItemParagraph,
			ID:   fmt.Sprintf("%s-%d", page.Slug(), i),
			Text: line,
		})
	}
	return page
}

func section(sb *strings.Builder, title, body string) {
	fmt.Fprintf(sb, "# %s\n\n", title)
	// single line breaks separate paragraphs in the wiki text
	sb.WriteString(strings.ReplaceAll(strings.TrimRight(body, "\n"), "\n", "\n\n"))
	sb.WriteString("\n\n")
}

func links(titles []string) string {
	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = "[[" + t + "]]"
	}
	return strings.Join(quoted, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
