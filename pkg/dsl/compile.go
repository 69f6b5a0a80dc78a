package dsl

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/dig/pkg/domain"
)

var programHeader = regexp.MustCompile(`^DOT ((strict )?(di)?graph)\n`)

// Compiler turns diagram programs into DOT text for pages of one mesh.
type Compiler struct {
	evaluator *Evaluator
	site      string
}

// NewCompiler creates a compiler for pages fetched from site.
func NewCompiler(source PageSource, site string, opts ...EvaluatorOption) *Compiler {
	return &Compiler{
		evaluator: NewEvaluator(NewResolver(source), opts...),
		site:      site,
	}
}

// Compile evaluates program with page as its subject. Text that does not
// start with a "DOT [strict ][di]graph" header line is already DOT and is
// returned unchanged.
func (c *Compiler) Compile(ctx context.Context, page *domain.Page, program string) (string, error) {
	m := programHeader.FindStringSubmatch(program)
	if m == nil {
		return program, nil
	}

	root := Parse(SplitLines(program), 0)
	// the header line is always the first node at column zero
	root = root[1:]

	graph := GraphKind(m[1])
	dot, err := c.evaluator.Evaluate(ctx, root, NewScope(graph, c.site, page))
	if err != nil {
		return "", fmt.Errorf("failed to compile diagram of %q: %w", page.Title, err)
	}
	return fmt.Sprintf("%s {%s}", graph, strings.Join(dot, "\n")), nil
}
