package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aretw0/dig/pkg/domain"
)

// Store implements ports.ReportStore as a JSON file.
type Store struct {
	Path string
}

// NewStore keeps the report at <dir>/report.json.
func NewStore(dir string) *Store {
	return &Store{Path: filepath.Join(dir, "report.json")}
}

// Save writes the report atomically.
func (s *Store) Save(ctx context.Context, report *domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return writeAtomic(s.Path, data)
}

// Load reads the report, returning (nil, nil) if none was saved.
func (s *Store) Load(ctx context.Context) (*domain.Report, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
