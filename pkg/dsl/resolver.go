package dsl

import (
	"context"

	"github.com/aretw0/dig/pkg/domain"
)

// PageSource is where the resolver looks pages up. A *domain.Mesh satisfies it;
// a multi-site source could consult page journals for collaborating sites.
type PageSource interface {
	Page(slug string) (*domain.Page, bool)
}

// Resolution is the outcome of resolving a subject name. Page is nil when
// the name does not match any page, which is an expected outcome.
type Resolution struct {
	Site string
	Page *domain.Page
}

// Found reports whether a page was resolved.
func (r Resolution) Found() bool {
	return r.Page != nil
}

// Resolver maps scope subjects to pages of the current build.
type Resolver struct {
	source PageSource
}

// NewResolver creates a resolver over source.
func NewResolver(source PageSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve finds the page named by the scope. When the name is the title of
// the scope's own page, that exact record is returned without a lookup.
func (r *Resolver) Resolve(ctx context.Context, s Scope) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	if s.page != nil && s.name == s.page.Title {
		return Resolution{Site: s.site, Page: s.page}, nil
	}
	page, ok := r.source.Page(domain.Slug(s.name))
	if !ok {
		return Resolution{Site: s.site}, nil
	}
	return Resolution{Site: s.site, Page: page}, nil
}

// Start begins resolving s in the background and returns a handle to await it.
func (r *Resolver) Start(ctx context.Context, s Scope) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.res, p.err = r.Resolve(ctx, s)
	}()
	return p
}

// Pending is a resolution that may still be running.
type Pending struct {
	done chan struct{}
	res  Resolution
	err  error
}

// Await blocks until the resolution finishes or ctx is done.
func (p *Pending) Await(ctx context.Context) (Resolution, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return Resolution{}, ctx.Err()
	}
}
