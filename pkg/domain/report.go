package domain

import (
	"slices"
	"time"
)

// TroubleLog maps a violation message to the titles of pages exhibiting it.
// Each title is recorded once per message, in the order first seen.
type TroubleLog map[string][]string

// Add records title under key unless it is already there.
func (t TroubleLog) Add(key, title string) {
	if slices.Contains(t[key], title) {
		return
	}
	t[key] = append(t[key], title)
}

// Keys returns the violation messages in sorted order.
func (t TroubleLog) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Report is everything one build cycle produces for presentation.
// It is rebuilt from scratch by every cycle.
type Report struct {
	Site       string    `json:"site"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Complete   bool      `json:"complete"`
	Error      string    `json:"error,omitempty"`

	SitemapSize int   `json:"sitemap_size"`
	LastUpdate  int64 `json:"last_update"`

	Written []string          `json:"written"`
	Skipped []string          `json:"skipped"`
	Failed  map[string]string `json:"failed,omitempty"`

	Missing     []string   `json:"missing"`
	Unreachable []string   `json:"unreachable"`
	Trouble     TroubleLog `json:"trouble"`

	// Dots holds the DOT source of every written diagram, keyed by slug.
	Dots map[string]string `json:"dots,omitempty"`
}

// NewReport returns an empty report for a build of site starting now.
func NewReport(site string, started time.Time) *Report {
	return &Report{
		Site:        site,
		StartedAt:   started,
		Written:     []string{},
		Skipped:     []string{},
		Failed:      map[string]string{},
		Missing:     []string{},
		Unreachable: []string{},
		Trouble:     TroubleLog{},
		Dots:        map[string]string{},
	}
}
