package dig

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/dig/internal/build"
	"github.com/aretw0/dig/internal/logging"
	"github.com/aretw0/dig/internal/validator"
	"github.com/aretw0/dig/pkg/adapters/memory"
	"github.com/aretw0/dig/pkg/domain"
	"github.com/aretw0/dig/pkg/ports"
)

// BuildLockKey is the lock shared by every engine building the same store.
const BuildLockKey = "build"

// DefaultLockTTL bounds how long a crashed build can hold a distributed lock.
const DefaultLockTTL = 30 * time.Minute

// Status is a snapshot of the build state.
type Status struct {
	Site       string    `json:"site"`
	Running    bool      `json:"running"`
	Step       string    `json:"step"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	LastBuild  time.Time `json:"last_build,omitzero"`
	Error      string    `json:"error,omitempty"`
}

// Engine is the high-level entry point: it owns the build cycle, the last
// report and the rebuild lock.
type Engine struct {
	cycle   *build.Cycle
	store   ports.ReportStore
	locker  ports.BuildLocker
	marker  ports.Marker
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	lockTTL time.Duration

	buildOpts []build.Option
	prefixes  []string

	mu     sync.RWMutex
	status Status
	wg     sync.WaitGroup
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore sets where reports are kept (default: in memory).
func WithStore(store ports.ReportStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker sets the rebuild lock (default: in process).
func WithLocker(locker ports.BuildLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

// WithMarker sets the last-build marker.
func WithMarker(marker ports.Marker) Option {
	return func(e *Engine) {
		e.marker = marker
		e.buildOpts = append(e.buildOpts, build.WithMarker(marker))
	}
}

// WithRenderer sets the rasterizer.
func WithRenderer(renderer ports.Renderer) Option {
	return func(e *Engine) {
		e.buildOpts = append(e.buildOpts, build.WithRenderer(renderer))
	}
}

// WithPublisher sets where images are published after a build.
func WithPublisher(publisher ports.Publisher) Option {
	return func(e *Engine) {
		e.buildOpts = append(e.buildOpts, build.WithPublisher(publisher))
	}
}

// WithRoot sets the title reachability is measured from.
func WithRoot(title string) Option {
	return func(e *Engine) {
		e.buildOpts = append(e.buildOpts, build.WithRoot(title))
	}
}

// WithTemplate replaces the diagram program drawn for every page.
func WithTemplate(template string) Option {
	return func(e *Engine) {
		e.buildOpts = append(e.buildOpts, build.WithTemplate(template))
	}
}

// WithConcurrency bounds simultaneous page fetches.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.buildOpts = append(e.buildOpts, build.WithConcurrency(n))
	}
}

// WithAllowedPrefixes sets the texts graphviz and html items may start with.
func WithAllowedPrefixes(prefixes ...string) Option {
	return func(e *Engine) {
		e.prefixes = prefixes
	}
}

// New creates an engine building the site behind client into writer.
func New(client ports.SiteClient, writer ports.DiagramWriter, opts ...Option) *Engine {
	e := &Engine{
		logger:  logging.NewNop(),
		lockTTL: DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.locker == nil {
		e.locker = memory.NewLocker()
	}
	e.status = Status{Site: client.Site(), Step: "idle"}

	buildOpts := append([]build.Option{
		build.WithLogger(e.logger),
		build.WithLifecycleHooks(e.wrapHooks()),
	}, e.buildOpts...)
	if e.prefixes != nil {
		buildOpts = append(buildOpts, build.WithChecker(validator.NewChecker(
			validator.WithPrefixes(e.prefixes...),
			validator.WithLogger(e.logger),
		)))
	}
	e.cycle = build.NewCycle(client, writer, buildOpts...)
	return e
}

// Site returns the site being built.
func (e *Engine) Site() string {
	return e.cycle.Site()
}

// Rebuild runs a build and waits for it. It fails with
// domain.ErrBuildInProgress if another build holds the lock.
func (e *Engine) Rebuild(ctx context.Context) (*domain.Report, error) {
	unlock, err := e.locker.Lock(ctx, BuildLockKey, e.lockTTL)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, unlock)
}

// Trigger starts a build in the background and returns once the lock is held.
// It fails with domain.ErrBuildInProgress if another build holds the lock.
// The build outlives ctx's cancellation.
func (e *Engine) Trigger(ctx context.Context) error {
	unlock, err := e.locker.Lock(ctx, BuildLockKey, e.lockTTL)
	if err != nil {
		return err
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		_, _ = e.run(context.WithoutCancel(ctx), unlock)
	}()
	return nil
}

// Wait blocks until background builds started by Trigger have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) run(ctx context.Context, unlock ports.UnlockFunc) (*domain.Report, error) {
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("failed to release build lock", "error", err)
		}
	}()

	report, err := e.cycle.Run(ctx)
	if saveErr := e.store.Save(ctx, report); saveErr != nil {
		e.logger.Error("failed to save report", "error", saveErr)
		if err == nil {
			err = fmt.Errorf("failed to save report: %w", saveErr)
		}
	}
	return report, err
}

// Report returns the report of the last build, or domain.ErrNoReport.
func (e *Engine) Report(ctx context.Context) (*domain.Report, error) {
	report, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNoReport
	}
	return report, nil
}

// Dot returns the DOT text the last build wrote for slug.
func (e *Engine) Dot(ctx context.Context, slug string) (string, error) {
	report, err := e.Report(ctx)
	if err != nil {
		return "", err
	}
	dot, ok := report.Dots[slug]
	if !ok {
		return "", fmt.Errorf("%s: %w", slug, domain.ErrNoDiagram)
	}
	return dot, nil
}

// Compile fetches the site and compiles the diagram of slug without
// writing or rendering anything.
func (e *Engine) Compile(ctx context.Context, slug string) (string, error) {
	return e.cycle.Compile(ctx, slug)
}

// Check fetches the site and reports missing, unreachable and troubled pages.
func (e *Engine) Check(ctx context.Context) (validator.Result, error) {
	return e.cycle.Check(ctx)
}

// Status returns the current build state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	status := e.status
	e.mu.RUnlock()

	if e.marker != nil {
		if last, err := e.marker.Last(); err == nil {
			status.LastBuild = last
		}
	}
	return status
}

// wrapHooks records progress into the status before calling user hooks.
func (e *Engine) wrapHooks() domain.LifecycleHooks {
	user := e.hooks
	return domain.LifecycleHooks{
		OnCycleStart: func(ctx context.Context, ev *domain.CycleEvent) {
			e.mu.Lock()
			e.status.Running = true
			e.status.Step = "starting"
			e.status.StartedAt = ev.Timestamp
			e.status.Error = ""
			e.mu.Unlock()
			if user.OnCycleStart != nil {
				user.OnCycleStart(ctx, ev)
			}
		},
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			e.mu.Lock()
			e.status.Step = ev.Message
			e.mu.Unlock()
			if user.OnStep != nil {
				user.OnStep(ctx, ev)
			}
		},
		OnDiagram: user.OnDiagram,
		OnCycleEnd: func(ctx context.Context, ev *domain.CycleEvent) {
			e.mu.Lock()
			e.status.Running = false
			e.status.FinishedAt = ev.Timestamp
			if ev.Err != nil {
				e.status.Step = "failed"
				e.status.Error = ev.Err.Error()
			} else {
				e.status.Step = "complete"
			}
			e.mu.Unlock()
			if user.OnCycleEnd != nil {
				user.OnCycleEnd(ctx, ev)
			}
		},
	}
}
