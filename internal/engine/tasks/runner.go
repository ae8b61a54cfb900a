// Package tasks implements the transform and clean tasks of the build graph.
package tasks

import (
	"context"
	"errors"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Runner)(nil)

// Runner implements ports.Executor for the clean task and the category
// transform tasks.
type Runner struct {
	cfg      *domain.Config
	store    ports.AssetStore
	tools    *ports.Toolchain
	reloader ports.Reloader
}

// NewRunner creates a Runner. Reloader may be nil when nobody listens for
// reload notifications.
func NewRunner(cfg *domain.Config, store ports.AssetStore, tools *ports.Toolchain, reloader ports.Reloader) *Runner {
	return &Runner{cfg: cfg, store: store, tools: tools, reloader: reloader}
}

// Execute runs task and records the number of written files on span.
func (r *Runner) Execute(ctx context.Context, task *domain.Task, span ports.Span) error {
	if task.Name == domain.CleanTaskName {
		return r.Clean()
	}

	c, err := domain.CategoryForTask(task.Name)
	if err != nil {
		return zerr.With(domain.ErrTaskNotFound, "task", task.Name)
	}

	written, err := r.Transform(ctx, c)
	if span != nil {
		span.SetAttribute(domain.SpanFilesAttribute, len(written))
	}
	return err
}

// Transform reads the sources of c, runs them through the category chain and
// writes the results below the category output directory. Files that fail are
// skipped; their errors are joined into the returned error. Every written
// output is announced to the reloader.
func (r *Runner) Transform(ctx context.Context, c domain.Category) ([]string, error) {
	reg := r.cfg.Registry
	entry := reg.Entry(c)

	sources, err := r.store.Read(reg.SourceRoot(), reg.BaseDir(c), entry.SourceGlob)
	if err != nil {
		return nil, err
	}

	outputs, errs := pipeline.Run(ctx, sources, r.chain(c)...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		if !errors.Is(errs, ctxErr) {
			errs = errors.Join(errs, ctxErr)
		}
		return nil, errs
	}

	written, err := r.emit(c, outputs)
	errs = errors.Join(errs, err)
	r.notify(ctx, c, written)

	return written, errs
}

func (r *Runner) emit(c domain.Category, outputs []domain.Asset) ([]string, error) {
	dir := r.cfg.Registry.OutputDir(c)

	var (
		written []string
		errs    error
	)
	for _, a := range outputs {
		if _, err := r.store.Write(dir, a); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		written = append(written, a.Path)
	}
	return written, errs
}

func (r *Runner) notify(ctx context.Context, c domain.Category, written []string) {
	if r.reloader == nil || len(written) == 0 {
		return
	}

	kind := domain.ReloadKindFor(c)
	events := make([]domain.ReloadEvent, len(written))
	for i, rel := range written {
		events[i] = domain.ReloadEvent{Kind: kind, Path: r.cfg.Registry.URLPath(c, rel)}
	}
	r.reloader.Reload(ctx, events)
}
