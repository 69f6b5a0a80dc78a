package dsl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aretw0/dig/pkg/domain"
)

// Evaluator walks a parsed program against the pages of one build and
// produces DOT statements.
type Evaluator struct {
	resolver *Resolver
	logger   *slog.Logger
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLogger sets the logger used for skipped lines and swallowed lookups.
func WithLogger(logger *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEvaluator creates an evaluator resolving subjects through resolver.
func NewEvaluator(resolver *Resolver, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		resolver: resolver,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs tree in scope and returns the DOT statements in emission order.
// A *domain.DirectiveError aborts the whole evaluation; no partial output is returned.
func (e *Evaluator) Evaluate(ctx context.Context, tree Tree, scope Scope) ([]string, error) {
	dot := []string{}
	if err := e.evaluate(ctx, tree, scope, &dot); err != nil {
		return nil, err
	}
	return dot, nil
}

type deferred struct {
	tree  Tree
	scope Scope
}

func (e *Evaluator) evaluate(ctx context.Context, tree Tree, scope Scope, dot *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var deeper []deferred
	queue := func(t Tree, s Scope) {
		if len(t) > 0 {
			deeper = append(deeper, deferred{tree: t, scope: s})
		}
	}

	pc := 0
	nest := func() Tree {
		if pc < len(tree) && tree[pc].IsBlock() {
			pc++
			return tree[pc-1].Block
		}
		return nil
	}
	peekElse := func() bool {
		if pc < len(tree) && !tree[pc].IsBlock() && Classify(tree[pc].Line).Kind == KindElse {
			pc++
			return true
		}
		return false
	}

	for pc < len(tree) {
		node := tree[pc]
		pc++

		if node.IsBlock() {
			queue(node.Block, scope)
			continue
		}

		d := Classify(node.Line)
		switch d.Kind {
		case KindLiteral:
			*dot = append(*dot, node.Line)

		case KindLinks:
			block := nest()
			if d.Links == LinksInvalid {
				return domain.NewDirectiveError("can't do link", d.Line)
			}
			for _, link := range linksInScope(scope) {
				switch d.Links {
				case LinksFromHere:
					*dot = append(*dot, fmt.Sprintf("%s %s %s", Quote(scope.Name()), d.Arrow, Quote(link)))
				case LinksToHere:
					*dot = append(*dot, fmt.Sprintf("%s %s %s", Quote(link), d.Arrow, Quote(scope.Name())))
				}
				if len(block) > 0 {
					child := scope.WithName(link)
					queue(block, child.WithPending(e.resolver.Start(ctx, child)))
				}
			}

		case KindHere:
			block := nest()
			res := e.resolve(ctx, scope)
			base := scope.WithoutPending()
			if res.Found() {
				switch d.Here {
				case HereNode:
					*dot = append(*dot, Quote(scope.Name()))
				case HereAnnotate:
					// only the annotation word is quoted, not the directive line
					*dot = append(*dot, fmt.Sprintf("%s %s %s [style=dotted]", Quote(d.Word), scope.Graph().EdgeOp(), Quote(scope.Name())))
				case HereScope:
				default:
					return domain.NewDirectiveError("can't do here", d.Line)
				}
				queue(block, base.WithPage(res.Site, res.Page))
			}
			if peekElse() {
				alternative := nest()
				if !res.Found() {
					queue(alternative, base)
				}
			}

		case KindWhere:
			block := nest()
			want, err := filterWant(d, scope.Want())
			if err != nil {
				return err
			}
			queue(block, scope.WithWant(want))

		default:
			e.logger.Debug("skipping line", "line", d.Line, "page", scope.Name())
		}
	}

	for _, child := range deeper {
		if err := e.evaluate(ctx, child.tree, child.scope, dot); err != nil {
			return err
		}
	}
	return nil
}

// resolve consumes the scope's pending resolution if there is one. Failures
// are treated as "no page".
func (e *Evaluator) resolve(ctx context.Context, scope Scope) Resolution {
	var (
		res Resolution
		err error
	)
	if p := scope.Pending(); p != nil {
		res, err = p.Await(ctx)
	} else {
		res, err = e.resolver.Resolve(ctx, scope)
	}
	if err != nil {
		e.logger.Debug("resolution failed", "name", scope.Name(), "err", err)
		return Resolution{}
	}
	return res
}

func linksInScope(scope Scope) []string {
	texts := make([]string, 0, len(scope.Want()))
	for _, item := range scope.Want() {
		texts = append(texts, item.Text)
	}
	return ExtractLinks(strings.Join(texts, "\n"))
}

func filterWant(d Directive, want []domain.StoryItem) ([]domain.StoryItem, error) {
	out := []domain.StoryItem{}
	switch d.Filter {
	case FilterRegexp:
		re, err := regexp.Compile(d.Pattern)
		if err != nil {
			return nil, domain.NewDirectiveError("can't do where", d.Line)
		}
		for _, item := range want {
			if re.MatchString(item.Text) {
				out = append(out, item)
			}
		}
	case FilterFold:
		within := false
		for _, item := range want {
			if item.Type == domain.ItemPagefold {
				within = item.Text == d.Pattern
				continue
			}
			if within {
				out = append(out, item)
			}
		}
	case FilterAttribute:
		for _, item := range want {
			if item.Truthy(d.Pattern) {
				out = append(out, item)
			}
		}
	default:
		return nil, domain.NewDirectiveError("can't do where", d.Line)
	}
	return out, nil
}
