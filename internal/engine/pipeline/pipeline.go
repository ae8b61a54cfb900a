// Package pipeline runs assets through an ordered list of transformation stages.
package pipeline

import (
	"context"
	"errors"

	"go.trai.ch/kiln/internal/core/domain"
)

// Stage transforms a batch of assets. It returns the assets that survived
// together with the errors of the ones that did not.
type Stage func(ctx context.Context, in []domain.Asset) ([]domain.Asset, error)

// Each returns a Stage applying fn to every asset on its own. A failing asset
// is dropped and its error recorded; the others continue.
func Each(fn func(ctx context.Context, a domain.Asset) ([]domain.Asset, error)) Stage {
	return func(ctx context.Context, in []domain.Asset) ([]domain.Asset, error) {
		var (
			out  = make([]domain.Asset, 0, len(in))
			errs error
		)
		for _, a := range in {
			if err := ctx.Err(); err != nil {
				return out, errors.Join(errs, err)
			}
			res, err := fn(ctx, a)
			if err != nil {
				errs = errors.Join(errs, err)
				continue
			}
			out = append(out, res...)
		}
		return out, errs
	}
}

// Map returns a Stage replacing the contents of every asset with fn's result.
func Map(fn func(a domain.Asset) ([]byte, error)) Stage {
	return Each(func(_ context.Context, a domain.Asset) ([]domain.Asset, error) {
		b, err := fn(a)
		if err != nil {
			return nil, err
		}
		return []domain.Asset{a.WithContents(b)}, nil
	})
}

// Filter returns a Stage keeping the assets keep accepts.
func Filter(keep func(a domain.Asset) bool) Stage {
	return func(_ context.Context, in []domain.Asset) ([]domain.Asset, error) {
		out := make([]domain.Asset, 0, len(in))
		for _, a := range in {
			if keep(a) {
				out = append(out, a)
			}
		}
		return out, nil
	}
}

// Reduce returns a Stage handing the whole batch to fn. An empty batch is
// passed through without calling fn.
func Reduce(fn func(ctx context.Context, in []domain.Asset) ([]domain.Asset, error)) Stage {
	return func(ctx context.Context, in []domain.Asset) ([]domain.Asset, error) {
		if len(in) == 0 {
			return nil, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}
}

// Run passes in through every stage in order. Errors of all stages are joined;
// survivors of a partially failed stage still reach the next one.
func Run(ctx context.Context, in []domain.Asset, stages ...Stage) ([]domain.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs error
	for _, stage := range stages {
		out, err := stage(ctx, in)
		errs = errors.Join(errs, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			if !errors.Is(errs, ctxErr) {
				errs = errors.Join(errs, ctxErr)
			}
			return nil, errs
		}
		in = out
	}
	return in, errs
}
