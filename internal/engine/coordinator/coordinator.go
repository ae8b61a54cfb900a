// Package coordinator rebuilds asset categories when their sources change.
package coordinator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/kiln/internal/adapters/fs" //nolint:depguard // glob syntax is shared with the asset store
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultWindow is the debounce window applied to each category.
const DefaultWindow = 50 * time.Millisecond

// RunFunc rebuilds one category.
type RunFunc func(ctx context.Context, c domain.Category) error

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWindow overrides the debounce window.
func WithWindow(d time.Duration) Option {
	return func(c *Coordinator) {
		c.window = d
	}
}

type watchTarget struct {
	category domain.Category
	matcher  *fs.Matcher
}

// Coordinator maps file system events onto category rebuilds. Rebuilds of one
// category never overlap: triggers arriving during a run collapse into a
// single follow-up run.
type Coordinator struct {
	registry *domain.Registry
	watcher  ports.Watcher
	logger   ports.Logger
	run      RunFunc
	window   time.Duration
	targets  []watchTarget
}

// New creates a Coordinator for the watch globs of registry.
func New(registry *domain.Registry, watcher ports.Watcher, logger ports.Logger, run RunFunc, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		registry: registry,
		watcher:  watcher,
		logger:   logger,
		run:      run,
		window:   DefaultWindow,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, cat := range domain.Categories {
		m, err := fs.CompileGlob(registry.Entry(cat).WatchGlob)
		if err != nil {
			return nil, zerr.With(err, "category", string(cat))
		}
		c.targets = append(c.targets, watchTarget{category: cat, matcher: m})
	}

	return c, nil
}

// Run watches the source root until ctx is cancelled. Rebuild failures are
// logged and never end the subscription.
func (c *Coordinator) Run(ctx context.Context) error {
	root := c.registry.SourceRoot()
	if err := c.watcher.Start(ctx, root); err != nil {
		return err
	}

	runners := make(map[domain.Category]*categoryRunner, len(c.targets))
	debouncers := make(map[domain.Category]*Debouncer, len(c.targets))
	var wg sync.WaitGroup
	for _, t := range c.targets {
		r := &categoryRunner{ctx: ctx, category: t.category, run: c.run, logger: c.logger, wg: &wg}
		runners[t.category] = r
		debouncers[t.category] = NewDebouncer(c.window, func(paths []string) {
			c.logger.Info(describeChange(t.category, paths))
			r.trigger()
		})
	}

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = c.watcher.Stop()
		case <-stopped:
		}
	}()

	dist := c.registry.OutputRoot()
	for ev := range c.watcher.Events() {
		// Outputs written below the source root must not trigger rebuilds.
		if within(ev.Path, dist) {
			continue
		}
		rel, err := filepath.Rel(root, ev.Path)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, t := range c.targets {
			if t.matcher.Match(rel) {
				debouncers[t.category].Add(rel)
			}
		}
	}
	close(stopped)

	for cat, d := range debouncers {
		d.Stop()
		runners[cat].close()
	}
	wg.Wait()

	return c.watcher.Stop()
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && (rel == "." || filepath.IsLocal(rel))
}

func describeChange(c domain.Category, paths []string) string {
	if len(paths) == 1 {
		return fmt.Sprintf("%s changed, rebuilding %s", paths[0], c.TaskName())
	}
	return fmt.Sprintf("%s and %d more changed, rebuilding %s", paths[0], len(paths)-1, c.TaskName())
}

// categoryRunner serializes the rebuilds of one category.
type categoryRunner struct {
	ctx      context.Context
	category domain.Category
	run      RunFunc
	logger   ports.Logger
	wg       *sync.WaitGroup

	mu      sync.Mutex
	running bool
	pending bool
	closed  bool
}

// trigger starts a rebuild, or marks one pending when a rebuild is running.
func (r *categoryRunner) trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if r.running {
		r.pending = true
		return
	}
	r.running = true
	r.wg.Add(1)
	go r.loop()
}

func (r *categoryRunner) loop() {
	defer r.wg.Done()

	for {
		if err := r.run(r.ctx, r.category); err != nil && r.ctx.Err() == nil {
			r.logger.Error(err)
		}

		r.mu.Lock()
		if !r.pending || r.closed || r.ctx.Err() != nil {
			r.running = false
			r.pending = false
			r.mu.Unlock()
			return
		}
		r.pending = false
		r.mu.Unlock()
	}
}

func (r *categoryRunner) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}
