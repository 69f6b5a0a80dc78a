package domain

// SitemapEntry is the catalog record a site publishes for each page.
type SitemapEntry struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Date  int64  `json:"date"`
}

// SitemapIndex maps slugs to their sitemap entries.
type SitemapIndex map[string]SitemapEntry

// IndexSitemap keys entries by the slug of their title, matching how pages are keyed in a Mesh.
func IndexSitemap(entries []SitemapEntry) SitemapIndex {
	idx := make(SitemapIndex, len(entries))
	for _, e := range entries {
		idx[Slug(e.Title)] = e
	}
	return idx
}

// HasTitle reports whether a page with this title is listed.
func (idx SitemapIndex) HasTitle(title string) bool {
	_, ok := idx[Slug(title)]
	return ok
}

// LastUpdate returns the most recent entry date (milliseconds since epoch), or 0.
func LastUpdate(entries []SitemapEntry) int64 {
	var latest int64
	for _, e := range entries {
		if e.Date > latest {
			latest = e.Date
		}
	}
	return latest
}
