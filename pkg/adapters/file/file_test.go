package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace_EnsureAndWrite(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	w := NewWorkspace(root)

	require.NoError(t, w.Ensure())
	require.NoError(t, w.Ensure())
	assert.DirExists(t, filepath.Join(root, "dot"))
	assert.DirExists(t, filepath.Join(root, "png"))

	path, err := w.WriteDot("welcome-visitors", "digraph {}")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "dot", "welcome-visitors.dot"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "digraph {}", string(data))

	assert.Equal(t, filepath.Join(root, "png", "welcome-visitors.png"), w.ImagePath("welcome-visitors"))

	entries, err := os.ReadDir(w.DotDir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestMarker_TouchAndLast(t *testing.T) {
	m := NewMarker(t.TempDir())

	last, err := m.Last()
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	when := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, m.Touch(when))

	last, err = m.Last()
	require.NoError(t, err)
	assert.True(t, when.Equal(last), "got %v", last)
}

func TestStore_SaveLoad(t *testing.T) {
	s := NewStore(t.TempDir())
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	report := domain.NewReport("https://example.org", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	report.Written = append(report.Written, "Welcome Visitors")
	report.Trouble.Add("links to missing title", "Welcome Visitors")
	require.NoError(t, s.Save(ctx, report))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Welcome Visitors"}, got.Written)
	assert.Equal(t, []string{"Welcome Visitors"}, got.Trouble["links to missing title"])
	assert.True(t, report.StartedAt.Equal(got.StartedAt))
}
