package validator

import (
	"testing"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paragraph(text string) domain.StoryItem {
	return domain.StoryItem{Type: domain.ItemParagraph, Text: text}
}

func TestCheck_MissingUnreachableAndTrouble(t *testing.T) {
	welcome := &domain.Page{Title: "Welcome", Story: []domain.StoryItem{
		paragraph("go to [[Orphan]] or [[Ghost]]"),
		{Type: domain.ItemMarkdown, Text: "again [[Ghost]]"},
	}}
	orphan := &domain.Page{Title: "Orphan", Story: []domain.StoryItem{paragraph("back to [[Welcome]]")}}
	island := &domain.Page{Title: "Island"}
	mesh := domain.NewMesh([]*domain.Page{welcome, orphan, island})
	sitemap := []domain.SitemapEntry{
		{Slug: "welcome", Title: "Welcome"},
		{Slug: "orphan", Title: "Orphan"},
		{Slug: "island", Title: "Island"},
	}

	result := NewChecker().Check(mesh, sitemap, "Welcome")

	assert.Equal(t, []string{"Ghost"}, result.Missing)
	assert.Equal(t, []string{"Island"}, result.Unreachable)
	assert.Equal(t, []string{"Welcome"}, result.Trouble[TroubleMissingLink])
	require.Error(t, result.Err())
	assert.Contains(t, result.Err().Error(), "Missing page: 'Ghost'")
}

func TestCheck_SchemaViolations(t *testing.T) {
	root := &domain.Page{Title: "Root", Story: []domain.StoryItem{
		{Type: domain.ItemGraphviz, Text: "DOT FROM dig-handbook tall"},
		{Type: domain.ItemGraphviz, Text: "digraph { a -> b }"},
		{Type: domain.ItemHTML, Text: "<img src=\"x.png\">"},
		{Type: domain.ItemHTML, Text: "<p>hello</p>"},
		{Type: "video", Text: "YOUTUBE abc"},
	}}
	other := &domain.Page{Title: "Other", Story: []domain.StoryItem{{Type: "video"}}}
	mesh := domain.NewMesh([]*domain.Page{root, other})
	sitemap := []domain.SitemapEntry{{Title: "Root"}, {Title: "Other"}}

	result := NewChecker().Check(mesh, sitemap, "Root")

	assert.Equal(t, domain.TroubleLog{
		"unexpected graphviz item": {"Root"},
		"unexpected html item":     {"Root"},
		"item type omitted: video": {"Root"},
	}, result.Trouble)
	assert.Equal(t, []string{"Other"}, result.Unreachable)
	assert.Empty(t, result.Missing)
}

func TestCheck_CustomPrefixes(t *testing.T) {
	root := &domain.Page{Title: "Root", Story: []domain.StoryItem{
		{Type: domain.ItemGraphviz, Text: "digraph { a -> b }"},
	}}
	mesh := domain.NewMesh([]*domain.Page{root})

	result := NewChecker(WithPrefixes("digraph")).Check(mesh, []domain.SitemapEntry{{Title: "Root"}}, "Root")

	assert.NoError(t, result.Err())
}

func TestCheck_MissingRootAndCycles(t *testing.T) {
	a := &domain.Page{Title: "A", Story: []domain.StoryItem{paragraph("[[B]] [[B]] [[a]]")}}
	b := &domain.Page{Title: "B", Story: []domain.StoryItem{paragraph("[[A]]")}}
	mesh := domain.NewMesh([]*domain.Page{a, b})
	sitemap := []domain.SitemapEntry{{Title: "A"}, {Title: "B"}}

	result := NewChecker().Check(mesh, sitemap, "A")
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Unreachable)
	assert.Empty(t, result.Trouble)

	result = NewChecker().Check(mesh, sitemap, "Nowhere")
	assert.Equal(t, []string{"Nowhere"}, result.Missing)
	assert.Equal(t, []string{"A", "B"}, result.Unreachable)
}
