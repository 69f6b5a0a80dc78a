package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paragraph(text string) domain.StoryItem {
	return domain.StoryItem{Type: domain.ItemParagraph, Text: text}
}

func fold(name string) domain.StoryItem {
	return domain.StoryItem{Type: domain.ItemPagefold, Text: name}
}

// testMesh: Root -> Alpha, Beta; Alpha -> Gamma (absent), Delta (absent).
func testMesh() (*domain.Mesh, *domain.Page) {
	root := &domain.Page{Title: "Root", Story: []domain.StoryItem{paragraph("see [[Alpha]] and [[Beta]]")}}
	alpha := &domain.Page{Title: "Alpha", Story: []domain.StoryItem{
		paragraph("Next [[Gamma]]"),
		paragraph("other [[Delta]]"),
	}}
	beta := &domain.Page{Title: "Beta"}
	return domain.NewMesh([]*domain.Page{root, alpha, beta}), root
}

func evaluate(t *testing.T, mesh *domain.Mesh, scope Scope, program string) ([]string, error) {
	t.Helper()
	e := NewEvaluator(NewResolver(mesh))
	return e.Evaluate(context.Background(), Parse(SplitLines(program), 0), scope)
}

func TestEvaluate_DeferredBlocksTrailImmediateLines(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root)

	dot, err := evaluate(t, mesh, scope, "line1\nWHERE /see/\n  inner\nline2")

	require.NoError(t, err)
	assert.Equal(t, []string{"line1", "line2", "inner"}, dot)
}

func TestEvaluate_PlainBlockKeepsScope(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root)

	dot, err := evaluate(t, mesh, scope, "a\n  LINKS HERE -> NODE\nb")

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", `"Root" -> "Alpha"`, `"Root" -> "Beta"`}, dot)
}

func TestEvaluate_LinksFromHere(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root)

	dot, err := evaluate(t, mesh, scope, "LINKS HERE -> NODE")

	require.NoError(t, err)
	assert.Equal(t, []string{`"Root" -> "Alpha"`, `"Root" -> "Beta"`}, dot)
}

func TestEvaluate_LinksToHereKeepsDuplicates(t *testing.T) {
	page := &domain.Page{Title: "Welcome Visitors", Story: []domain.StoryItem{
		paragraph("[[Alpha]] twice [[Alpha]]"),
		paragraph("and [[Big Idea]]"),
	}}
	mesh := domain.NewMesh([]*domain.Page{page})
	scope := NewScope("graph", "example.org", page)

	dot, err := evaluate(t, mesh, scope, "LINKS NODE -- HERE")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"\"Alpha\" -- \"Welcome\nVisitors\"",
		"\"Alpha\" -- \"Welcome\nVisitors\"",
		"\"Big\nIdea\" -- \"Welcome\nVisitors\"",
	}, dot)
}

func TestEvaluate_BareLinksEmitsNothingButRunsBlock(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root)

	dot, err := evaluate(t, mesh, scope, "LINKS\n  HERE NODE")

	require.NoError(t, err)
	assert.Equal(t, []string{`"Alpha"`, `"Beta"`}, dot)
}

func TestEvaluate_LinksRecursesThroughResolvedPages(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root)

	program := "LINKS HERE -> NODE\n  HERE NODE\n    LINKS HERE -> NODE"
	dot, err := evaluate(t, mesh, scope, program)

	require.NoError(t, err)
	assert.Equal(t, []string{
		`"Root" -> "Alpha"`,
		`"Root" -> "Beta"`,
		`"Alpha"`,
		`"Alpha" -> "Gamma"`,
		`"Alpha" -> "Delta"`,
		`"Beta"`,
	}, dot)
}

func TestEvaluate_HereNode(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root)

	dot, err := evaluate(t, mesh, scope, "HERE NODE\n  LINKS HERE -> NODE")

	require.NoError(t, err)
	assert.Equal(t, []string{`"Root"`, `"Root" -> "Alpha"`, `"Root" -> "Beta"`}, dot)
}

func TestEvaluate_HereAnnotation(t *testing.T) {
	mesh, root := testMesh()

	dot, err := evaluate(t, mesh, NewScope("strict digraph", "example.org", root), "HERE NODE summary")
	require.NoError(t, err)
	assert.Equal(t, []string{`"summary" -> "Root" [style=dotted]`}, dot)

	dot, err = evaluate(t, mesh, NewScope("graph", "example.org", root), "HERE NODE summary")
	require.NoError(t, err)
	assert.Equal(t, []string{`"summary" -- "Root" [style=dotted]`}, dot)
	assert.NotContains(t, dot[0], "HERE")
}

func TestEvaluate_HereElseOnMissingPage(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root).WithName("Ghost")

	dot, err := evaluate(t, mesh, scope, "HERE NODE\n  inside\nELSE\n  fallback\n  LINKS HERE -> NODE")

	require.NoError(t, err)
	// the ELSE block keeps the unresolved subject and the original story
	assert.Equal(t, []string{"fallback", `"Ghost" -> "Alpha"`, `"Ghost" -> "Beta"`}, dot)
}

func TestEvaluate_ElseSkippedWhenResolved(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root)

	dot, err := evaluate(t, mesh, scope, "HERE\n  inside\nELSE\n  fallback")

	require.NoError(t, err)
	assert.Equal(t, []string{"inside"}, dot)
}

func TestEvaluate_HereMovesScopeToResolvedPage(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root).WithName("Alpha")

	dot, err := evaluate(t, mesh, scope, "HERE\n  LINKS HERE -> NODE")

	require.NoError(t, err)
	assert.Equal(t, []string{`"Alpha" -> "Gamma"`, `"Alpha" -> "Delta"`}, dot)
}

func TestEvaluate_WhereForms(t *testing.T) {
	page := &domain.Page{Title: "Root", Story: []domain.StoryItem{
		paragraph("before [[A]]"),
		fold("links"),
		paragraph("in [[B]]"),
		{Type: domain.ItemParagraph, Text: "also [[C]]", Attrs: map[string]any{"featured": true}},
		fold("other"),
		paragraph("Next [[D]]"),
	}}
	mesh := domain.NewMesh([]*domain.Page{page})
	scope := NewScope("digraph", "example.org", page)

	cases := map[string][]string{
		"WHERE /^Next/\n  LINKS HERE -> NODE":    {`"Root" -> "D"`},
		"WHERE FOLD links\n  LINKS HERE -> NODE": {`"Root" -> "B"`, `"Root" -> "C"`},
		"WHERE FOLD nope\n  LINKS HERE -> NODE":  {},
		"WHERE featured\n  LINKS HERE -> NODE":   {`"Root" -> "C"`},
	}
	for program, want := range cases {
		dot, err := evaluate(t, mesh, scope, program)
		require.NoError(t, err, program)
		assert.Equal(t, want, dot, program)
	}
}

func TestEvaluate_DirectiveErrors(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root)

	programs := []string{
		"LINKS SIDEWAYS",
		"WHERE Nothing",
		"WHERE /(/",
		"HERE THERE",
		"ok line\n  HERE NODE\n    LINKS HERE => NODE",
	}
	for _, program := range programs {
		dot, err := evaluate(t, mesh, scope, program)
		require.Error(t, err, program)
		assert.True(t, domain.IsDirectiveError(err), program)
		assert.Nil(t, dot, program)
	}
}

func TestEvaluate_InvalidHereIgnoredWhenUnresolved(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root).WithName("Ghost")

	dot, err := evaluate(t, mesh, scope, "HERE THERE")

	require.NoError(t, err)
	assert.Empty(t, dot)
}

func TestEvaluate_UnknownDirectiveSkipped(t *testing.T) {
	mesh, root := testMesh()
	scope := NewScope("digraph", "example.org", root)

	dot, err := evaluate(t, mesh, scope, "GRAPH\nELSE\nrankdir=LR")

	require.NoError(t, err)
	assert.Equal(t, []string{"rankdir=LR"}, dot)
}

func TestEvaluate_CanceledContext(t *testing.T) {
	mesh, root := testMesh()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEvaluator(NewResolver(mesh))
	_, err := e.Evaluate(ctx, Parse([]string{"a"}, 0), NewScope("digraph", "example.org", root))

	assert.ErrorIs(t, err, context.Canceled)
}
