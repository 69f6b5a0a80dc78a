package dsl

import (
	"strings"

	"github.com/aretw0/dig/pkg/domain"
)

// GraphKind is the DOT graph keyword of a program, e.g. "strict digraph".
type GraphKind string

// Directed reports whether edges are directed.
func (g GraphKind) Directed() bool {
	return strings.HasSuffix(string(g), "digraph")
}

// EdgeOp returns the edge operator matching the graph kind.
func (g GraphKind) EdgeOp() string {
	if g.Directed() {
		return "->"
	}
	return "--"
}

// Scope is the evaluation context of one block. It is a value: the With
// methods return modified copies, so sibling and deferred branches never
// observe each other's changes.
type Scope struct {
	graph   GraphKind
	name    string
	site    string
	page    *domain.Page
	want    []domain.StoryItem
	pending *Pending
}

// NewScope starts evaluation on page: the subject is the page itself and the
// whole story is in scope.
func NewScope(graph GraphKind, site string, page *domain.Page) Scope {
	s := Scope{graph: graph, site: site, page: page}
	if page != nil {
		s.name = page.Title
		s.want = page.Story
	}
	return s
}

// Graph returns the DOT graph keyword.
func (s Scope) Graph() GraphKind { return s.graph }

// Name returns the subject title.
func (s Scope) Name() string { return s.name }

// Site returns the site the subject page was found on.
func (s Scope) Site() string { return s.site }

// Page returns the subject page, or nil when none was resolved.
func (s Scope) Page() *domain.Page { return s.page }

// Want returns the story items in scope.
func (s Scope) Want() []domain.StoryItem { return s.want }

// Pending returns the resolution started for the subject, if any.
func (s Scope) Pending() *Pending { return s.pending }

// WithName changes the subject title.
func (s Scope) WithName(name string) Scope {
	s.name = name
	return s
}

// WithWant replaces the story items in scope.
func (s Scope) WithWant(want []domain.StoryItem) Scope {
	s.want = want
	return s
}

// WithPage moves the scope onto a resolved page and its story.
func (s Scope) WithPage(site string, page *domain.Page) Scope {
	s.site = site
	s.page = page
	s.want = page.Story
	return s
}

// WithPending attaches an in-flight resolution of the subject.
func (s Scope) WithPending(p *Pending) Scope {
	s.pending = p
	return s
}

// WithoutPending drops the in-flight resolution once it has been consumed.
func (s Scope) WithoutPending() Scope {
	s.pending = nil
	return s
}
