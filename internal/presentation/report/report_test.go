package report

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *domain.Report {
	r := domain.NewReport("https://dig.example.org", time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC))
	r.SitemapSize = 42
	r.LastUpdate = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC).UnixMilli()
	r.Written = []string{"Alpha", "Beta"}
	r.Skipped = []string{"Gamma"}
	return r
}

func TestHandbookSource(t *testing.T) {
	text := HandbookSource(sample())

	assert.Contains(t, text, "[https://dig.example.org https://dig.example.org]")
	assert.Contains(t, text, "42 pages")
	assert.Contains(t, text, "Last Site Update\nSun, 18 Oct 2026 00:00:00 UTC")
	assert.Contains(t, text, "Last Build Started\nMon, 19 Oct 2026 08:30:00 UTC")

	empty := domain.NewReport("s", time.Now())
	assert.Contains(t, HandbookSource(empty), "Last Site Update\nunknown")
}

func TestConversionSummary(t *testing.T) {
	text := ConversionSummary(sample())
	assert.Contains(t, text, "Pages with diagrams\n[[Alpha]], [[Beta]]")
	assert.Contains(t, text, "Pages without diagrams\n[[Gamma]]")
}

func TestBuildProblems(t *testing.T) {
	r := sample()
	assert.Empty(t, BuildProblems(r))

	r.Failed["Beta"] = "can't do here\nHERE SIDEWAYS"
	r.Missing = []string{"Ghost"}
	r.Unreachable = []string{"Orphan"}
	r.Trouble.Add("unexpected html item", "Alpha")

	text := BuildProblems(r)
	assert.Contains(t, text, "[[Beta]] can't do here")
	assert.NotContains(t, text, "SIDEWAYS")
	assert.Contains(t, text, "Missing pages\n[[Ghost]]")
	assert.Contains(t, text, "Unreachable pages\n[[Orphan]]")
	assert.Contains(t, text, "Trouble: unexpected html item\n[[Alpha]]")
}

func TestMarkdown(t *testing.T) {
	r := sample()
	r.Error = "failed to fetch sitemap: dns"

	md := Markdown(r)
	assert.True(t, strings.HasPrefix(md, "> **Build failed:** failed to fetch sitemap: dns"))
	assert.Contains(t, md, "# Handbook Source")
	assert.Contains(t, md, "# Conversion Summary")
	assert.NotContains(t, md, "# Build Problems")
	assert.Contains(t, md, "Pages with diagrams\n\n[[Alpha]], [[Beta]]")
}

func TestPages(t *testing.T) {
	pages := Pages(sample())
	require.Len(t, pages, 2)

	summary := pages["conversion-summary"]
	require.NotNil(t, summary)
	assert.Equal(t, TitleConversionSummary, summary.Title)
	require.Len(t, summary.Story, 5)
	assert.Equal(t, domain.ItemParagraph, summary.Story[0].Type)
	assert.Equal(t, "We create PNG files for pages with diagrams.", summary.Story[0].Text)
	assert.Equal(t, "[[Alpha]], [[Beta]]", summary.Story[2].Text)

	assert.Contains(t, pages, "handbook-source")
}
