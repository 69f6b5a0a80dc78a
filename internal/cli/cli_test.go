package cli

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/dig/internal/config"
	"github.com/aretw0/dig/internal/logging"
	"github.com/aretw0/dig/pkg/adapters/process"
	"github.com/aretw0/dig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWiki(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/system/sitemap.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"slug":"welcome-visitors","title":"Welcome Visitors","date":1700000000000},
			{"slug":"dig-handbook","title":"DIG Handbook","date":1700000500000}
		]`))
	})
	mux.HandleFunc("/welcome-visitors.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Welcome Visitors","story":[
			{"type":"paragraph","id":"a1","text":"Start with the [[DIG Handbook]]"}
		]}`))
	})
	mux.HandleFunc("/dig-handbook.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"DIG Handbook","story":[
			{"type":"paragraph","id":"b1","text":"Next [[Welcome Visitors]]"},
			{"type":"graphviz","id":"b2","text":"DOT FROM dig-handbook"}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newConfig(t *testing.T, site string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Site = site
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	return cfg
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	logger := NewLogger(cfg, false, &buf)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	cfg.LogFormat = "json"
	logger = NewLogger(cfg, true, &buf)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
}

func TestRunDotAndCheck(t *testing.T) {
	srv := newWiki(t)
	stack, err := NewStack(context.Background(), newConfig(t, srv.URL), logging.NewNop())
	require.NoError(t, err)
	defer stack.Close()

	var out bytes.Buffer
	require.NoError(t, RunDot(context.Background(), stack, "dig-handbook", &out))
	assert.Contains(t, out.String(), "\"DIG\nHandbook\" -> \"Welcome\nVisitors\"")

	err = RunDot(context.Background(), stack, "welcome-visitors", &out)
	assert.ErrorIs(t, err, domain.ErrNoDiagram)

	out.Reset()
	require.NoError(t, RunCheck(context.Background(), stack, &out))
	assert.Contains(t, out.String(), "every page is reachable")
}

func TestRunCheck_ReportsProblems(t *testing.T) {
	srv := newWiki(t)
	cfg := newConfig(t, srv.URL)
	cfg.Root = "Nowhere"
	stack, err := NewStack(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)

	var out bytes.Buffer
	err = RunCheck(context.Background(), stack, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing page: 'Nowhere'")
	assert.Contains(t, out.String(), "site has problems")
}

func TestRunBuild_WithRedis(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses the true command as renderer")
	}
	mr := miniredis.RunT(t)
	srv := newWiki(t)
	cfg := newConfig(t, srv.URL)
	cfg.Redis.Addr = mr.Addr()
	cfg.Tools = []process.ToolConfig{{Name: process.ToolRender, Command: "true"}}

	stack, err := NewStack(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer stack.Close()

	var out bytes.Buffer
	require.NoError(t, RunBuild(context.Background(), stack, &out))
	assert.Contains(t, out.String(), "# Conversion Summary")
	assert.Contains(t, out.String(), "1 diagrams written")
	assert.True(t, mr.Exists("dig:report"))

	rep, err := stack.Engine.Report(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"DIG Handbook"}, rep.Written)
}

func TestNewStack_Publishers(t *testing.T) {
	ctx := context.Background()

	cfg := newConfig(t, "https://example.org")
	cfg.Publish.Target = "host:/srv/png"
	_, err := NewStack(ctx, cfg, logging.NewNop())
	require.NoError(t, err)

	cfg = newConfig(t, "https://example.org")
	cfg.Publish.S3 = config.S3{Bucket: "diagrams", Region: "us-east-1", Endpoint: "http://localhost:9000", AccessKey: "a", SecretKey: "b"}
	_, err = NewStack(ctx, cfg, logging.NewNop())
	require.NoError(t, err)

	cfg = newConfig(t, "https://example.org")
	cfg.Template = filepath.Join(t.TempDir(), "missing.dot")
	_, err = NewStack(ctx, cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestCreateDebugHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug, logging.FormatText)
	hooks := createDebugHooks(logger)

	hooks.OnStep(context.Background(), &domain.StepEvent{Message: "pages loaded, ready to draw"})
	hooks.OnDiagram(context.Background(), &domain.DiagramEvent{Title: "DIG Handbook", Outcome: domain.OutcomeWritten})
	assert.Contains(t, buf.String(), "pages loaded, ready to draw")
	assert.Contains(t, buf.String(), "title=\"DIG Handbook\"")
}
