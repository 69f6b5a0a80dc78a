// Package mcp exposes the build engine to MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/dig"
	"github.com/aretw0/dig/internal/presentation/report"
	"github.com/aretw0/dig/internal/validator"
	"github.com/aretw0/dig/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	ReportURI = "dig://report"
	StatusURI = "dig://status"
)

// Engine defines what the MCP server needs from *dig.Engine.
type Engine interface {
	Rebuild(ctx context.Context) (*domain.Report, error)
	Trigger(ctx context.Context) error
	Report(ctx context.Context) (*domain.Report, error)
	Dot(ctx context.Context, slug string) (string, error)
	Compile(ctx context.Context, slug string) (string, error)
	Check(ctx context.Context) (validator.Result, error)
	Status() dig.Status
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("dig-mcp", strings.TrimSpace(dig.Version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("rebuild",
		mcp.WithDescription("Rebuild every diagram of the site. By default waits for the build and returns its summary."),
		mcp.WithBoolean("wait", mcp.Description("Wait for the build to finish (default true)")),
	), s.handleRebuild)

	s.mcpServer.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Get the current build step and whether a build is running."),
	), s.handleStatus)

	s.mcpServer.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Get the report of the last build."),
		mcp.WithString("format", mcp.Description("markdown (default) or json")),
	), s.handleReport)

	s.mcpServer.AddTool(mcp.NewTool("get_dot",
		mcp.WithDescription("Get the DOT source the last build wrote for a page."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug, e.g. welcome-visitors")),
	), s.handleDot)

	s.mcpServer.AddTool(mcp.NewTool("compile_page",
		mcp.WithDescription("Fetch the site now and compile the diagram of one page without writing files."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
	), s.handleCompile)

	s.mcpServer.AddTool(mcp.NewTool("check_site",
		mcp.WithDescription("Fetch the site now and list missing, unreachable and troubled pages."),
	), s.handleCheck)
}

func (s *Server) handleRebuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !request.GetBool("wait", true) {
		if err := s.engine.Trigger(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rebuild failed: %v", err)), nil
		}
		return mcp.NewToolResultText("build started"), nil
	}

	rep, err := s.engine.Rebuild(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrBuildInProgress) {
			return mcp.NewToolResultError("a build is already running"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("rebuild failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("build complete: %d written, %d skipped, %d failed",
		len(rep.Written), len(rep.Skipped), len(rep.Failed))), nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(s.engine.Status())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.engine.Report(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if request.GetString("format", "markdown") == "json" {
		jsonBytes, _ := json.Marshal(rep)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
	return mcp.NewToolResultText(report.Markdown(rep)), nil
}

func (s *Server) handleDot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := request.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dot, err := s.engine.Dot(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(dot), nil
}

func (s *Server) handleCompile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := request.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dot, err := s.engine.Compile(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(dot), nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.engine.Check(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}
	if err := result.Err(); err != nil {
		return mcp.NewToolResultText(err.Error()), nil
	}
	return mcp.NewToolResultText("every page is reachable and well formed"), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ReportURI, "Last Build Report",
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		rep, err := s.engine.Report(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load report: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ReportURI,
				MIMEType: "text/markdown",
				Text:     report.Markdown(rep),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(StatusURI, "Build Status",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(s.engine.Status())
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      StatusURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
