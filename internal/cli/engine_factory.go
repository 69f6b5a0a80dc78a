package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/dig"
	"github.com/aretw0/dig/internal/config"
	"github.com/aretw0/dig/internal/logging"
	"github.com/aretw0/dig/internal/metrics"
	"github.com/aretw0/dig/pkg/adapters/file"
	httpAdapter "github.com/aretw0/dig/pkg/adapters/http"
	"github.com/aretw0/dig/pkg/adapters/process"
	"github.com/aretw0/dig/pkg/adapters/redis"
	"github.com/aretw0/dig/pkg/adapters/s3"
	"github.com/aretw0/dig/pkg/adapters/wiki"
	"github.com/aretw0/dig/pkg/domain"
	"github.com/aretw0/dig/pkg/ports"
)

// Stack is an engine wired from configuration, plus the adapters the
// commands expose next to it.
type Stack struct {
	Config    *config.Config
	Engine    *dig.Engine
	Workspace *file.Workspace
	Metrics   *metrics.Collector
	Streams   *httpAdapter.StreamManager
	Logger    *slog.Logger

	closers []func() error
}

// Close releases connections opened by NewStack.
func (s *Stack) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// NewLogger builds the application logger from cfg. Debug overrides the level.
func NewLogger(cfg *config.Config, debug bool, w io.Writer) *slog.Logger {
	level := logging.ParseLevel(cfg.LogLevel)
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithWriter(w, level, logging.Format(cfg.LogFormat))
}

// NewStack initializes a dig engine with standard CLI conventions.
func NewStack(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	stack := &Stack{
		Config:    cfg,
		Workspace: file.NewWorkspace(cfg.DataDir),
		Metrics:   metrics.New(),
		Streams:   httpAdapter.NewStreamManager(logger),
		Logger:    logger,
	}

	template, err := cfg.TemplateText()
	if err != nil {
		return nil, err
	}
	tools, err := cfg.ToolRegistry()
	if err != nil {
		return nil, fmt.Errorf("error loading tools: %w", err)
	}
	runner := process.NewRunner(process.WithRegistry(tools), process.WithLogger(logger))

	engineOpts := []dig.Option{
		dig.WithLogger(logger),
		dig.WithLifecycleHooks(domain.ChainHooks(
			stack.Metrics.Hooks(),
			stack.Streams.Hooks(),
			createDebugHooks(logger),
		)),
		dig.WithMarker(file.NewMarker(cfg.DataDir)),
		dig.WithRenderer(process.NewRenderer(runner)),
		dig.WithRoot(cfg.Root),
		dig.WithTemplate(template),
		dig.WithConcurrency(cfg.Concurrency),
	}
	if len(cfg.Prefixes) > 0 {
		engineOpts = append(engineOpts, dig.WithAllowedPrefixes(cfg.Prefixes...))
	}

	publisher, err := createPublisher(ctx, cfg, runner, logger)
	if err != nil {
		return nil, err
	}
	if publisher != nil {
		engineOpts = append(engineOpts, dig.WithPublisher(publisher))
	}

	// Redis shares the lock and the last report between replicas.
	if cfg.Redis.Addr != "" {
		prefix := cfg.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		client := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		stack.closers = append(stack.closers, client.Close)
		engineOpts = append(engineOpts,
			dig.WithStore(redis.NewFromClient(client, redis.WithPrefix(prefix))),
			dig.WithLocker(redis.NewLocker(client, prefix), dig.DefaultLockTTL),
		)
		logger.Debug("using redis", "addr", cfg.Redis.Addr, "prefix", prefix)
	} else {
		engineOpts = append(engineOpts, dig.WithStore(file.NewStore(cfg.DataDir)))
	}

	stack.Engine = dig.New(wiki.New(cfg.Site), stack.Workspace, engineOpts...)
	return stack, nil
}

func createPublisher(ctx context.Context, cfg *config.Config, runner *process.Runner, logger *slog.Logger) (ports.Publisher, error) {
	switch cfg.PublishMode() {
	case config.PublishRsync:
		return process.NewPublisher(runner, cfg.Publish.Target), nil
	case config.PublishS3:
		s3cfg := cfg.Publish.S3
		publisher, err := s3.New(ctx, s3.Params{
			Bucket:    s3cfg.Bucket,
			Prefix:    s3cfg.Prefix,
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
		}, s3.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("error initializing s3 publisher: %w", err)
		}
		return publisher, nil
	default:
		return nil, nil
	}
}
