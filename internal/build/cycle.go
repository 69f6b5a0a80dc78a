package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/dig/internal/logging"
	"github.com/aretw0/dig/internal/validator"
	"github.com/aretw0/dig/pkg/domain"
	"github.com/aretw0/dig/pkg/dsl"
	"github.com/aretw0/dig/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds simultaneous page fetches.
const DefaultConcurrency = 16

// DefaultRoot is the page reachability is measured from.
const DefaultRoot = "Welcome Visitors"

// Cycle is one configured build pipeline. Run may be called repeatedly;
// every run starts from an empty report.
type Cycle struct {
	client    ports.SiteClient
	writer    ports.DiagramWriter
	renderer  ports.Renderer
	publisher ports.Publisher
	marker    ports.Marker
	checker   *validator.Checker

	root        string
	template    string
	concurrency int
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Cycle.
type Option func(*Cycle)

// WithRenderer sets the rasterizer run on every DOT file.
func WithRenderer(r ports.Renderer) Option {
	return func(c *Cycle) { c.renderer = r }
}

// WithPublisher sets where the image directory is published after drawing.
func WithPublisher(p ports.Publisher) Option {
	return func(c *Cycle) { c.publisher = p }
}

// WithMarker sets the marker touched after a complete cycle.
func WithMarker(m ports.Marker) Option {
	return func(c *Cycle) { c.marker = m }
}

// WithChecker replaces the default reachability checker.
func WithChecker(checker *validator.Checker) Option {
	return func(c *Cycle) { c.checker = checker }
}

// WithRoot sets the title reachability is measured from.
func WithRoot(title string) Option {
	return func(c *Cycle) { c.root = title }
}

// WithTemplate replaces the diagram program drawn for every page.
func WithTemplate(template string) Option {
	return func(c *Cycle) {
		if template != "" {
			c.template = template
		}
	}
}

// WithConcurrency bounds simultaneous page fetches.
func WithConcurrency(n int) Option {
	return func(c *Cycle) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLifecycleHooks sets the observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Cycle) { c.hooks = hooks }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cycle) { c.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cycle) { c.now = now }
}

// NewCycle creates a cycle reading from client and writing through writer.
func NewCycle(client ports.SiteClient, writer ports.DiagramWriter, opts ...Option) *Cycle {
	c := &Cycle{
		client:      client,
		writer:      writer,
		root:        DefaultRoot,
		template:    dsl.DefaultTemplate,
		concurrency: DefaultConcurrency,
		logger:      logging.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.checker == nil {
		c.checker = validator.NewChecker(validator.WithLogger(c.logger))
	}
	return c
}

// Site returns the site the cycle builds.
func (c *Cycle) Site() string {
	return c.client.Site()
}

// Run executes one build. The returned report is never nil; on failure it
// holds whatever was produced before the fault, with Error set and
// Complete false, and the marker is left untouched.
func (c *Cycle) Run(ctx context.Context) (*domain.Report, error) {
	started := c.now()
	report := domain.NewReport(c.client.Site(), started)
	if c.hooks.OnCycleStart != nil {
		c.hooks.OnCycleStart(ctx, &domain.CycleEvent{
			EventBase: domain.EventBase{Timestamp: started, Type: domain.EventCycleStart},
			Site:      report.Site,
		})
	}

	err := c.run(ctx, report)

	report.FinishedAt = c.now()
	if err != nil {
		report.Error = err.Error()
		c.logger.Error("build failed", "site", report.Site, "error", err)
	} else {
		report.Complete = true
		c.logger.Info("build complete",
			"site", report.Site,
			"written", len(report.Written),
			"skipped", len(report.Skipped),
			"failed", len(report.Failed),
		)
	}

	if c.hooks.OnCycleEnd != nil {
		e := &domain.CycleEvent{
			EventBase: domain.EventBase{Timestamp: report.FinishedAt, Type: domain.EventCycleEnd},
			Site:      report.Site,
			Duration:  report.FinishedAt.Sub(started),
			Err:       err,
		}
		if err != nil {
			e.Error = err.Error()
		}
		c.hooks.OnCycleEnd(ctx, e)
	}
	return report, err
}

// ensurer is implemented by writers that must prepare storage before use.
type ensurer interface {
	Ensure() error
}

func (c *Cycle) run(ctx context.Context, report *domain.Report) error {
	if e, ok := c.writer.(ensurer); ok {
		if err := e.Ensure(); err != nil {
			return err
		}
	}

	sitemap, mesh, err := c.load(ctx, report)
	if err != nil {
		return err
	}

	driver := c.Driver(mesh)
	for _, page := range mesh.Pages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		outcome, err := driver.Draw(ctx, page, report)
		if err != nil {
			return err
		}
		c.diagram(ctx, page.Title, outcome, report.Failed[page.Title])
	}

	result := c.checker.Check(mesh, sitemap, c.root)
	report.Missing = result.Missing
	report.Unreachable = result.Unreachable
	report.Trouble = result.Trouble

	c.step(ctx, "images completed, ready to upload")
	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, c.writer.ImageDir()); err != nil {
			if !errors.Is(err, domain.ErrToolExit) {
				return fmt.Errorf("failed to publish images: %w", err)
			}
			c.logger.Warn("publish failed", "error", err)
		}
	}

	if c.marker != nil {
		if err := c.marker.Touch(report.StartedAt); err != nil {
			return err
		}
	}
	return nil
}

// Driver returns a driver drawing pages of mesh with the cycle's settings.
func (c *Cycle) Driver(mesh *domain.Mesh) *Driver {
	driver := NewDriver(mesh, c.client.Site(), c.writer, c.renderer, c.logger)
	driver.template = c.template
	driver.emit = c.step
	return driver
}

// Compile fetches the site and returns the DOT text of the page with slug.
func (c *Cycle) Compile(ctx context.Context, slug string) (string, error) {
	_, mesh, err := c.Load(ctx)
	if err != nil {
		return "", err
	}
	page, ok := mesh.Page(slug)
	if !ok {
		return "", fmt.Errorf("%s: %w", slug, domain.ErrPageNotFound)
	}
	return c.Driver(mesh).Compile(ctx, page)
}

// Check fetches the site and runs only the reachability check.
func (c *Cycle) Check(ctx context.Context) (validator.Result, error) {
	sitemap, mesh, err := c.Load(ctx)
	if err != nil {
		return validator.Result{}, err
	}
	return c.checker.Check(mesh, sitemap, c.root), nil
}

// Load fetches the sitemap and every page it lists.
func (c *Cycle) Load(ctx context.Context) ([]domain.SitemapEntry, *domain.Mesh, error) {
	return c.load(ctx, domain.NewReport(c.client.Site(), c.now()))
}

func (c *Cycle) load(ctx context.Context, report *domain.Report) ([]domain.SitemapEntry, *domain.Mesh, error) {
	sitemap, err := c.client.Sitemap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	report.SitemapSize = len(sitemap)
	report.LastUpdate = domain.LastUpdate(sitemap)
	c.step(ctx, fmt.Sprintf("%d pages in sitemap", len(sitemap)))

	pages := make([]*domain.Page, len(sitemap))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, entry := range sitemap {
		g.Go(func() error {
			page, err := c.client.Page(gctx, entry.Slug)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", entry.Slug, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	mesh := domain.NewMesh(pages)
	c.step(ctx, "pages loaded, ready to draw")
	return sitemap, mesh, nil
}

func (c *Cycle) step(ctx context.Context, message string) {
	c.logger.Info(message)
	if c.hooks.OnStep != nil {
		c.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: c.now(), Type: domain.EventStep},
			Message:   message,
		})
	}
}

func (c *Cycle) diagram(ctx context.Context, title, outcome, failure string) {
	if c.hooks.OnDiagram == nil {
		return
	}
	e := &domain.DiagramEvent{
		EventBase: domain.EventBase{Timestamp: c.now(), Type: domain.EventDiagram},
		Title:     title,
		Outcome:   outcome,
	}
	if failure != "" {
		e.Err = errors.New(failure)
		e.Error = failure
	}
	c.hooks.OnDiagram(ctx, e)
}
