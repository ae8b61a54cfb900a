// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/coordinator"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.trai.ch/kiln/internal/engine/tasks"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds the graceful shutdown of the dev server.
const ShutdownTimeout = 5 * time.Second

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	toolchains   ports.ToolchainFactory
	store        ports.AssetStore
	server       ports.DevServer
	tracer       ports.Tracer
	watcher      ports.Watcher
	logger       ports.Logger
	watchOpts    []coordinator.Option
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	toolchains ports.ToolchainFactory,
	store ports.AssetStore,
	server ports.DevServer,
	tracer ports.Tracer,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		toolchains:   toolchains,
		store:        store,
		server:       server,
		tracer:       tracer,
		watcher:      watcher,
		logger:       log,
	}
}

// WithCoordinatorOptions configures the watch coordinator.
// This is primarily used for testing to shorten the debounce window.
func (a *App) WithCoordinatorOptions(opts ...coordinator.Option) *App {
	a.watchOpts = append(a.watchOpts, opts...)
	return a
}

// Options configures every entry point.
type Options struct {
	// ConfigFile is an explicit kiln.yaml. Empty means discovery from the working directory.
	ConfigFile string
}

// WatchOptions configures the Watch entry point.
type WatchOptions struct {
	Options
	// Host overrides the configured server host when non-empty.
	Host string
	// Port overrides the configured server port when OverridePort is set.
	Port         int
	OverridePort bool
}

// SetJSONLogging switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogging(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// Build cleans the output root, then runs every category task in parallel.
func (a *App) Build(ctx context.Context, opts Options) error {
	return a.run(ctx, opts, domain.NewBuildGraph(domain.Categories...))
}

// RunTask runs a single task by name: clean or one of the category tasks.
func (a *App) RunTask(ctx context.Context, name string, opts Options) error {
	if name != domain.CleanTaskName {
		if _, err := domain.CategoryForTask(name); err != nil {
			return err
		}
	}
	return a.run(ctx, opts, domain.NewTaskGraph(name))
}

// Clean removes the output root.
func (a *App) Clean(ctx context.Context, opts Options) error {
	return a.RunTask(ctx, domain.CleanTaskName, opts)
}

func (a *App) run(ctx context.Context, opts Options, graph *domain.Graph) error {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}

	runner, closeTools, err := a.newRunner(cfg)
	if err != nil {
		return err
	}
	defer closeTools()

	return a.execute(ctx, runner, graph)
}

// Watch builds once, then serves the output root and rebuilds categories as
// their sources change until ctx is cancelled.
//
//nolint:cyclop // orchestration function
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	cfg, err := a.loadConfig(opts.Options)
	if err != nil {
		return err
	}
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.OverridePort {
		if opts.Port < 0 || opts.Port > 65535 {
			return zerr.With(domain.ErrInvalidPort, "port", opts.Port)
		}
		cfg.Server.Port = opts.Port
	}

	// Rebuild logs of a long-running session are stamped with the time of day.
	if l, ok := a.logger.(interface{ SetTimestamps(bool) }); ok {
		l.SetTimestamps(true)
	}

	runner, closeTools, err := a.newRunner(cfg)
	if err != nil {
		return err
	}
	defer closeTools()

	// A failed initial build is reported but does not end the session.
	if err := a.execute(ctx, runner, domain.NewBuildGraph(domain.Categories...)); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		a.logger.Error(err)
	}

	dist := cfg.Registry.OutputRoot()
	addr, err := a.server.Start(ctx, dist, net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)))
	if err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("serving %s at http://%s", dist, addr))

	coord, err := coordinator.New(cfg.Registry, a.watcher, a.logger, func(ctx context.Context, c domain.Category) error {
		return a.execute(ctx, runner, domain.NewTaskGraph(c.TaskName()))
	}, a.watchOpts...)
	if err != nil {
		_ = a.server.Shutdown(context.WithoutCancel(ctx))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return coord.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) loadConfig(opts Options) (*domain.Config, error) {
	if opts.ConfigFile != "" {
		return a.configLoader.LoadFile(opts.ConfigFile)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	return a.configLoader.Load(cwd)
}

func (a *App) newRunner(cfg *domain.Config) (*tasks.Runner, func(), error) {
	tools, err := a.toolchains.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	closeTools := func() {
		if tools.Close == nil {
			return
		}
		if err := tools.Close(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to stop toolchain: %v", err))
		}
	}

	return tasks.NewRunner(cfg, a.store, tools, a.server), closeTools, nil
}

func (a *App) execute(ctx context.Context, runner *tasks.Runner, graph *domain.Graph) error {
	sched := scheduler.NewScheduler(runner, a.tracer)
	if err := sched.Run(ctx, graph, runtime.NumCPU()); err != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, err)
	}
	return nil
}

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}
