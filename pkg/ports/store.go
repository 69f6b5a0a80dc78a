package ports

import (
	"context"
	"time"

	"github.com/aretw0/dig/pkg/domain"
)

// ReportStore keeps the report of the most recent build cycle.
type ReportStore interface {
	// Save replaces the stored report.
	Save(ctx context.Context, report *domain.Report) error

	// Load returns the stored report, or (nil, nil) when no build has run yet.
	Load(ctx context.Context) (*domain.Report, error)
}

// Marker records when the last complete build cycle finished.
type Marker interface {
	// Touch records a complete build at time t.
	Touch(t time.Time) error

	// Last returns the time of the last complete build, or the zero time.
	Last() (time.Time, error)
}
