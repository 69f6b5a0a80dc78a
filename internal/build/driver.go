// Package build runs the batch diagram build: fetch the site, compile a
// diagram for every page carrying one, rasterize, publish, and check
// reachability.
package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/dig/internal/logging"
	"github.com/aretw0/dig/pkg/domain"
	"github.com/aretw0/dig/pkg/dsl"
	"github.com/aretw0/dig/pkg/ports"
)

// Driver turns pages of one mesh into DOT files and images.
type Driver struct {
	compiler *dsl.Compiler
	template string
	writer   ports.DiagramWriter
	renderer ports.Renderer
	logger   *slog.Logger
	emit     func(ctx context.Context, step string)
}

// NewDriver prepares a driver for pages of mesh fetched from site.
// A nil renderer leaves DOT files unrendered.
func NewDriver(mesh *domain.Mesh, site string, writer ports.DiagramWriter, renderer ports.Renderer, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Driver{
		compiler: dsl.NewCompiler(mesh, site, dsl.WithLogger(logger)),
		template: dsl.DefaultTemplate,
		writer:   writer,
		renderer: renderer,
		logger:   logger,
		emit:     func(context.Context, string) {},
	}
}

// Compile returns the DOT text for page, or domain.ErrNoDiagram if its
// story has no graphviz item.
func (d *Driver) Compile(ctx context.Context, page *domain.Page) (string, error) {
	item, ok := page.FirstItem(domain.ItemGraphviz)
	if !ok {
		return "", domain.ErrNoDiagram
	}
	return d.compiler.Compile(ctx, page, dsl.Program(d.template, item.Text))
}

// Draw processes one page and records the outcome in report. Only faults
// that must end the cycle are returned; a directive error fails the page.
func (d *Driver) Draw(ctx context.Context, page *domain.Page, report *domain.Report) (string, error) {
	if _, ok := page.FirstItem(domain.ItemGraphviz); !ok {
		report.Skipped = append(report.Skipped, page.Title)
		return domain.OutcomeSkipped, nil
	}

	d.emit(ctx, fmt.Sprintf("%s next graphviz", page.Title))

	dot, err := d.Compile(ctx, page)
	if err != nil {
		if domain.IsDirectiveError(err) {
			d.logger.Warn("diagram failed", "page", page.Title, "error", err)
			report.Failed[page.Title] = err.Error()
			return domain.OutcomeFailed, nil
		}
		return "", err
	}

	slug := page.Slug()
	path, err := d.writer.WriteDot(slug, dot)
	if err != nil {
		return "", err
	}

	if d.renderer != nil {
		err := d.renderer.Render(ctx, path, d.writer.ImagePath(slug))
		switch {
		case errors.Is(err, domain.ErrToolExit):
			d.logger.Warn("render failed", "page", page.Title, "error", err)
		case err != nil:
			return "", fmt.Errorf("failed to render %s: %w", slug, err)
		}
	}

	report.Written = append(report.Written, page.Title)
	report.Dots[slug] = dot
	return domain.OutcomeWritten, nil
}
