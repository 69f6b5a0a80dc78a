package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/dig/internal/presentation/report"
	"github.com/aretw0/dig/internal/presentation/tui"
	httpAdapter "github.com/aretw0/dig/pkg/adapters/http"
	"github.com/aretw0/dig/pkg/adapters/mcp"
)

// RunBuild runs one complete build and prints its report.
func RunBuild(ctx context.Context, stack *Stack, out io.Writer) error {
	printSystemMessage(out, "Building diagrams of %s", stack.Config.Site)
	rep, err := stack.Engine.Rebuild(ctx)
	if rep != nil {
		if displayErr := tui.Display(out, report.Markdown(rep)); displayErr != nil {
			stack.Logger.Warn("failed to render report", "err", displayErr)
		}
	}
	if err != nil {
		fmt.Fprintln(out, tui.Status(false, "build failed"))
		return err
	}
	fmt.Fprintln(out, tui.Status(true, fmt.Sprintf("%d diagrams written", len(rep.Written))))
	return nil
}

// RunDot fetches the site and prints the DOT source of one page.
func RunDot(ctx context.Context, stack *Stack, slug string, out io.Writer) error {
	dot, err := stack.Engine.Compile(ctx, slug)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, dot)
	return err
}

// RunCheck fetches the site and reports missing, unreachable and troubled pages.
func RunCheck(ctx context.Context, stack *Stack, out io.Writer) error {
	result, err := stack.Engine.Check(ctx)
	if err != nil {
		return err
	}
	if err := result.Err(); err != nil {
		fmt.Fprintln(out, tui.Status(false, "site has problems"))
		return err
	}
	fmt.Fprintln(out, tui.Status(true, "every page is reachable and well formed"))
	return nil
}

// ServeOptions configures RunServe.
type ServeOptions struct {
	Addr         string
	BuildOnStart bool
}

// RunServe serves the HTTP API until ctx is done.
func RunServe(ctx context.Context, stack *Stack, opts ServeOptions) error {
	if err := stack.Workspace.Ensure(); err != nil {
		return err
	}
	handler := httpAdapter.NewHandler(stack.Engine,
		httpAdapter.WithImageDir(stack.Workspace.ImageDir()),
		httpAdapter.WithMetrics(stack.Metrics.Handler()),
		httpAdapter.WithStreams(stack.Streams),
		httpAdapter.WithLogger(stack.Logger),
	)
	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		stack.Logger.Info("dig server listening", "addr", opts.Addr, "site", stack.Config.Site)
		serverErrors <- srv.ListenAndServe()
	}()

	if opts.BuildOnStart {
		if err := stack.Engine.Trigger(ctx); err != nil {
			stack.Logger.Error("initial build not started", "err", err)
		}
	}

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		stack.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		stack.Engine.Wait()
		return nil
	}
}

// MCPOptions configures RunMCP.
type MCPOptions struct {
	Transport string
	Addr      string
	BaseURL   string
}

// RunMCP serves the MCP server on stdio or SSE.
func RunMCP(ctx context.Context, stack *Stack, opts MCPOptions) error {
	srv := mcp.NewServer(stack.Engine, stack.Logger)
	switch opts.Transport {
	case "", "stdio":
		stack.Logger.Info("starting dig MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost" + opts.Addr
		}
		return srv.ServeSSE(ctx, opts.Addr, baseURL)
	default:
		return fmt.Errorf("unknown transport %q", opts.Transport)
	}
}
