package validator

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/aretw0/dig/pkg/dsl"
)

// Violation messages used as TroubleLog keys.
const (
	TroubleMissingLink = "links to missing title"
)

// DefaultPrefixes are the texts a graphviz or html item may start with.
var DefaultPrefixes = []string{"DOT FROM", "<img"}

// Result is the outcome of one reachability pass.
type Result struct {
	Missing     []string
	Unreachable []string
	Trouble     domain.TroubleLog
}

// Err summarises the result as an error, or nil when nothing was found.
func (r Result) Err() error {
	var problems []string
	for _, title := range r.Missing {
		problems = append(problems, fmt.Sprintf("Missing page: '%s'", title))
	}
	for _, title := range r.Unreachable {
		problems = append(problems, fmt.Sprintf("Unreachable page: '%s'", title))
	}
	for _, key := range r.Trouble.Keys() {
		problems = append(problems, fmt.Sprintf("%s: %s", key, strings.Join(r.Trouble[key], ", ")))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("found %d problems:\n- %s", len(problems), strings.Join(problems, "\n- "))
}

// Checker crawls the page mesh from a root title.
type Checker struct {
	prefixes []string
	logger   *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithPrefixes replaces the allowed graphviz/html item prefixes.
func WithPrefixes(prefixes ...string) Option {
	return func(c *Checker) {
		if len(prefixes) > 0 {
			c.prefixes = prefixes
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker creates a checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		prefixes: DefaultPrefixes,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check walks bracket links breadth-first from root. Titles that are linked
// but absent from the mesh are missing; sitemap titles never reached are
// unreachable; story items breaking the page schema are logged as trouble.
func (c *Checker) Check(mesh *domain.Mesh, sitemap []domain.SitemapEntry, root string) Result {
	index := domain.IndexSitemap(sitemap)
	result := Result{
		Missing:     []string{},
		Unreachable: []string{},
		Trouble:     domain.TroubleLog{},
	}

	visited := make(map[string]bool)
	queue := []string{root}

	for len(queue) > 0 {
		title := queue[0]
		queue = queue[1:]

		slug := domain.Slug(title)
		if visited[slug] {
			continue
		}
		visited[slug] = true

		page, ok := mesh.Page(slug)
		if !ok {
			if !slices.Contains(result.Missing, title) {
				result.Missing = append(result.Missing, title)
			}
			continue
		}

		for _, item := range page.Story {
			switch item.Type {
			case domain.ItemParagraph, domain.ItemMarkdown:
				for _, link := range dsl.ExtractLinks(item.Text) {
					if !index.HasTitle(link) {
						result.Trouble.Add(TroubleMissingLink, page.Title)
					}
					if !visited[domain.Slug(link)] {
						queue = append(queue, link)
					}
				}
			case domain.ItemGraphviz, domain.ItemHTML:
				if !c.hasAllowedPrefix(item.Text) {
					result.Trouble.Add(fmt.Sprintf("unexpected %s item", item.Type), page.Title)
				}
			default:
				result.Trouble.Add(fmt.Sprintf("item type omitted: %s", item.Type), page.Title)
			}
		}
	}

	for _, entry := range sitemap {
		if visited[domain.Slug(entry.Title)] || slices.Contains(result.Unreachable, entry.Title) {
			continue
		}
		result.Unreachable = append(result.Unreachable, entry.Title)
	}

	c.logger.Debug("reachability checked",
		"visited", len(visited),
		"missing", len(result.Missing),
		"unreachable", len(result.Unreachable),
		"trouble", len(result.Trouble),
	)
	return result
}

func (c *Checker) hasAllowedPrefix(text string) bool {
	for _, p := range c.prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}
