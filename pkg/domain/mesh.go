package domain

// Mesh is the closed universe of pages for one build cycle, keyed by slug.
// It is populated once before any evaluation and read-only afterwards,
// so it can be shared by concurrent readers without locking.
type Mesh struct {
	pages map[string]*Page
	order []string
}

// NewMesh indexes pages by the slug of their title. A later page with the same
// slug replaces an earlier one but keeps the earlier position in Pages.
func NewMesh(pages []*Page) *Mesh {
	m := &Mesh{pages: make(map[string]*Page, len(pages))}
	for _, p := range pages {
		if p == nil {
			continue
		}
		slug := p.Slug()
		if _, seen := m.pages[slug]; !seen {
			m.order = append(m.order, slug)
		}
		m.pages[slug] = p
	}
	return m
}

// Page returns the page stored under slug.
func (m *Mesh) Page(slug string) (*Page, bool) {
	p, ok := m.pages[slug]
	return p, ok
}

// Lookup returns the page whose title slugs to the same value as title.
func (m *Mesh) Lookup(title string) (*Page, bool) {
	return m.Page(Slug(title))
}

// Pages returns the pages in first-seen order.
func (m *Mesh) Pages() []*Page {
	out := make([]*Page, 0, len(m.order))
	for _, slug := range m.order {
		out = append(out, m.pages[slug])
	}
	return out
}

// Len returns the number of distinct pages.
func (m *Mesh) Len() int {
	return len(m.pages)
}
