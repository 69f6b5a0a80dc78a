package process

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
}

func TestRunner_Run(t *testing.T) {
	skipOnWindows(t)
	runner := NewRunner()
	runner.Register("greet", "sh", "-c", "echo hello {name}")

	t.Run("Expands Placeholders", func(t *testing.T) {
		res, err := runner.Run(context.Background(), "greet", map[string]string{"name": "world"})
		require.NoError(t, err)
		assert.Equal(t, "hello world", res.Stdout)
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		_, err := runner.Run(context.Background(), "hacker_script", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not registered")
		assert.False(t, errors.Is(err, domain.ErrToolExit))
	})

	t.Run("Non-zero Exit Wraps ErrToolExit", func(t *testing.T) {
		runner.Register("fail", "sh", "-c", "echo broken >&2; exit 3")
		res, err := runner.Run(context.Background(), "fail", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrToolExit)
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, "broken", res.Stderr)
	})

	t.Run("Missing Binary Is A Launch Failure", func(t *testing.T) {
		runner.Register("ghost", "definitely-not-a-real-binary-dig")
		_, err := runner.Run(context.Background(), "ghost", nil)
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrToolExit))
	})

	t.Run("Passes Environment", func(t *testing.T) {
		r := NewRunner(WithRegistry(map[string]ToolConfig{
			"env": {Command: "sh", Args: []string{"-c", "echo $DIG_TEST_VALUE"}, Environment: map[string]string{"DIG_TEST_VALUE": "present"}},
		}))
		res, err := r.Run(context.Background(), "env", nil)
		require.NoError(t, err)
		assert.Equal(t, "present", res.Stdout)
	})
}

func TestRenderer_UsesRenderTool(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "in.dot")
	output := filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(input, []byte("digraph {}"), 0644))

	runner := NewRunner()
	runner.Register(ToolRender, "cp", "{input}", "{output}")

	require.NoError(t, NewRenderer(runner).Render(context.Background(), input, output))
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "digraph {}", string(data))
}

func TestPublisher_AppendsTrailingSlash(t *testing.T) {
	skipOnWindows(t)
	runner := NewRunner()
	runner.Register(ToolPublish, "sh", "-c", `test "$0" = "data/png/" && test "$1" = "host:images/"`, "{source}", "{target}")

	require.NoError(t, NewPublisher(runner, "host:images/").Publish(context.Background(), "data/png"))
}

func TestDefaultTools(t *testing.T) {
	tools := DefaultTools()
	assert.Equal(t, "dot", tools[ToolRender].Command)
	assert.Equal(t, []string{"-Tpng", "{input}", "-o{output}"}, tools[ToolRender].Args)
	assert.Equal(t, "rsync", tools[ToolPublish].Command)
}
