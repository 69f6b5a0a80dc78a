package ports

import (
	"context"

	"github.com/aretw0/dig/pkg/domain"
)

// SiteClient fetches content from the source wiki.
type SiteClient interface {
	// Site returns the origin identifier, e.g. the base URL.
	Site() string

	// Sitemap returns the catalog of pages in site order.
	Sitemap(ctx context.Context) ([]domain.SitemapEntry, error)

	// Page fetches one page by slug.
	// Returns domain.ErrPageNotFound if the site does not have it.
	Page(ctx context.Context, slug string) (*domain.Page, error)
}
