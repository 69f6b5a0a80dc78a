// Package wiki fetches sitemaps and pages from a federated wiki site over HTTP.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/dig/pkg/domain"
)

// Client implements ports.SiteClient against one site.
type Client struct {
	site string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for the site at baseURL, e.g. "https://dig.wiki.example.org".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		site: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Site returns the base URL of the site.
func (c *Client) Site() string {
	return c.site
}

// Sitemap fetches /system/sitemap.json.
func (c *Client) Sitemap(ctx context.Context) ([]domain.SitemapEntry, error) {
	var entries []domain.SitemapEntry
	if err := c.getJSON(ctx, "/system/sitemap.json", &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	return entries, nil
}

// Page fetches /<slug>.json.
func (c *Client) Page(ctx context.Context, slug string) (*domain.Page, error) {
	var page domain.Page
	if err := c.getJSON(ctx, "/"+slug+".json", &page); err != nil {
		return nil, fmt.Errorf("failed to fetch page %s: %w", slug, err)
	}
	return &page, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.site+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrPageNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid json from %s: %w", path, err)
	}
	return nil
}
