package dsl

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Program(t *testing.T) {
	mesh, root := testMesh()
	c := NewCompiler(mesh, "example.org")

	program := "DOT digraph\n  node [shape=box]\n  HERE NODE\n    LINKS HERE -> NODE"
	dot, err := c.Compile(context.Background(), root, program)

	require.NoError(t, err)
	assert.Equal(t, "digraph {node [shape=box]\n\"Root\"\n\"Root\" -> \"Alpha\"\n\"Root\" -> \"Beta\"}", dot)
}

func TestCompile_StrictHeader(t *testing.T) {
	mesh, root := testMesh()
	c := NewCompiler(mesh, "example.org")

	dot, err := c.Compile(context.Background(), root, "DOT strict graph\nHERE NODE x")

	require.NoError(t, err)
	assert.Equal(t, "strict graph {\"x\" -- \"Root\" [style=dotted]}", dot)
}

func TestCompile_RawDotPassesThrough(t *testing.T) {
	mesh, root := testMesh()
	c := NewCompiler(mesh, "example.org")

	for _, text := range []string{"digraph { a -> b }", "DOT digraph", "DOT multigraph\nHERE"} {
		dot, err := c.Compile(context.Background(), root, text)
		require.NoError(t, err)
		assert.Equal(t, text, dot)
	}
}

func TestCompile_DirectiveErrorIsWrapped(t *testing.T) {
	mesh, root := testMesh()
	c := NewCompiler(mesh, "example.org")

	_, err := c.Compile(context.Background(), root, "DOT digraph\nLINKS UP")

	require.Error(t, err)
	assert.True(t, domain.IsDirectiveError(err))
	assert.Contains(t, err.Error(), "Root")
}

func TestTemplateFor(t *testing.T) {
	assert.Equal(t, DefaultTemplate, TemplateFor("DOT FROM welcome-visitors"))

	tall := TemplateFor("a tall diagram")
	assert.Contains(t, tall, "rankdir=LR")
	assert.NotContains(t, tall, "rankdir=TB")
	assert.Equal(t, 1, strings.Count(tall, "LR"))
}

func TestCompile_DefaultTemplate(t *testing.T) {
	a := &domain.Page{Title: "Alpha", Story: []domain.StoryItem{
		{Type: domain.ItemParagraph, Text: "Next [[Beta]]"},
		{Type: domain.ItemGraphviz, Text: "DOT FROM alpha"},
	}}
	b := &domain.Page{Title: "Beta", Story: []domain.StoryItem{
		{Type: domain.ItemParagraph, Text: "see [[Gamma]]"},
	}}
	mesh := domain.NewMesh([]*domain.Page{a, b})

	dot, err := NewCompiler(mesh, "example.org").Compile(context.Background(), a, TemplateFor(""))
	require.NoError(t, err)
	// blank template lines are literals too
	assert.True(t, strings.HasPrefix(dot, "strict digraph {\n\n\n\nrankdir=TB\n"), dot)
	assert.Contains(t, dot, `"Alpha" -> "Beta"`)
	assert.Contains(t, dot, `"Beta" -> "Gamma"`)
	assert.True(t, strings.HasSuffix(dot, "}"))
}
