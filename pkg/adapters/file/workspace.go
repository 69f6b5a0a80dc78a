package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the data directory of a build:
//
//	<root>/dot/<slug>.dot
//	<root>/png/<slug>.png
//
// It implements ports.DiagramWriter.
type Workspace struct {
	Root string
}

// NewWorkspace returns a workspace rooted at dir, defaulting to "data".
func NewWorkspace(dir string) *Workspace {
	if dir == "" {
		dir = "data"
	}
	return &Workspace{Root: dir}
}

// DotDir is where DOT sources are written.
func (w *Workspace) DotDir() string {
	return filepath.Join(w.Root, "dot")
}

// ImageDir is where rendered images are written.
func (w *Workspace) ImageDir() string {
	return filepath.Join(w.Root, "png")
}

// Ensure creates the workspace directories that do not exist yet.
func (w *Workspace) Ensure() error {
	for _, dir := range []string{w.Root, w.DotDir(), w.ImageDir()} {
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// WriteDot writes the DOT source of slug and returns its path.
func (w *Workspace) WriteDot(slug, dot string) (string, error) {
	path := filepath.Join(w.DotDir(), slug+".dot")
	if err := writeAtomic(path, []byte(dot)); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// ImagePath returns the rendered image path of slug.
func (w *Workspace) ImagePath(slug string) string {
	return filepath.Join(w.ImageDir(), slug+".png")
}
