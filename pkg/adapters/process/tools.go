package process

import (
	"context"
	"strings"
)

// Renderer implements ports.Renderer with the registered render tool.
type Renderer struct {
	runner *Runner
}

// NewRenderer wraps runner.
func NewRenderer(runner *Runner) *Renderer {
	return &Renderer{runner: runner}
}

// Render rasterizes input into output.
func (r *Renderer) Render(ctx context.Context, input, output string) error {
	_, err := r.runner.Run(ctx, ToolRender, map[string]string{
		"input":  input,
		"output": output,
	})
	return err
}

// Publisher implements ports.Publisher with the registered publish tool.
type Publisher struct {
	runner *Runner
	target string
}

// NewPublisher syncs to target, an rsync destination such as "host:path/".
func NewPublisher(runner *Runner, target string) *Publisher {
	return &Publisher{runner: runner, target: target}
}

// Publish syncs the contents of dir to the target.
func (p *Publisher) Publish(ctx context.Context, dir string) error {
	// trailing slash syncs the directory contents rather than the directory itself
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	res, err := p.runner.Run(ctx, ToolPublish, map[string]string{
		"source": dir,
		"target": p.target,
	})
	if err != nil {
		return err
	}
	if res.Stdout != "" {
		p.runner.logger.Info("published images", "target", p.target, "output", res.Stdout)
	}
	return nil
}
