// Package process runs the external rasterizer and sync tools.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/aretw0/dig/pkg/domain"
)

// Runner executes local processes from a strict allow-list.
// Callers pick a registered tool by name and supply placeholder values;
// they never supply a command line.
type Runner struct {
	registry map[string]ToolConfig
	baseDir  string
	logger   *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(tools map[string]ToolConfig) RunnerOption {
	return func(r *Runner) {
		for name, tool := range tools {
			r.Register(name, tool.Command, tool.Args...)
			if len(tool.Environment) > 0 {
				registered := r.registry[name]
				registered.Environment = tool.Environment
				r.registry[name] = registered
			}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithLogger sets the logger receiving tool output.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner with the default tools registered.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]ToolConfig),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for name, tool := range DefaultTools() {
		r.registry[name] = tool
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list, replacing any tool of the same name.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = ToolConfig{
		Name:    name,
		Command: command,
		Args:    args,
	}
}

// Tool returns the registered tool named name.
func (r *Runner) Tool(name string) (ToolConfig, bool) {
	tool, ok := r.registry[name]
	return tool, ok
}

// Result is the captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the tool named name with its placeholders replaced by vars.
//
// A tool that cannot be started returns a plain error. A tool that ran and
// exited non-zero returns its Result together with an error wrapping
// domain.ErrToolExit.
func (r *Runner) Run(ctx context.Context, name string, vars map[string]string) (Result, error) {
	tool, ok := r.registry[name]
	if !ok {
		return Result{}, fmt.Errorf("process tool not registered: %s", name)
	}

	args := expand(tool.Args, vars)
	cmd := exec.CommandContext(ctx, tool.Command, args...)
	cmd.Dir = r.baseDir
	if len(tool.Environment) > 0 {
		env := cmd.Environ()
		for k, v := range tool.Environment {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running tool", "tool", name, "command", tool.Command, "args", args)
	err := cmd.Run()

	result := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, fmt.Errorf("%s exited with %d: %s: %w", name, result.ExitCode, result.Stderr, domain.ErrToolExit)
		}
		return result, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return result, nil
}

func expand(args []string, vars map[string]string) []string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	replacer := strings.NewReplacer(pairs...)

	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = replacer.Replace(arg)
	}
	return out
}
