package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Marker implements ports.Marker with the modification time of a file.
type Marker struct {
	Path string
}

// NewMarker returns a marker file inside dir.
func NewMarker(dir string) *Marker {
	return &Marker{Path: filepath.Join(dir, "last-build")}
}

// Touch creates the marker if needed and sets its modification time to t.
func (m *Marker) Touch(t time.Time) error {
	if err := writeAtomic(m.Path, []byte(t.UTC().Format(time.RFC3339)+"\n")); err != nil {
		return fmt.Errorf("failed to write build marker: %w", err)
	}
	if err := os.Chtimes(m.Path, t, t); err != nil {
		return fmt.Errorf("failed to touch build marker: %w", err)
	}
	return nil
}

// Last returns the modification time of the marker, or the zero time if it does not exist.
func (m *Marker) Last() (time.Time, error) {
	info, err := os.Stat(m.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat build marker: %w", err)
	}
	return info.ModTime(), nil
}
