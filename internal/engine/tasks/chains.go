package tasks

import (
	"context"
	"path"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/pipeline"
)

// chain returns the stages of category c. Markup and fonts are copied as is.
func (r *Runner) chain(c domain.Category) []pipeline.Stage {
	switch c {
	case domain.CategoryStyle:
		return []pipeline.Stage{
			pipeline.Filter(notPartial),
			pipeline.Each(r.style),
		}
	case domain.CategoryScript:
		return []pipeline.Stage{
			pipeline.Reduce(r.tools.Scripts.Bundle),
		}
	case domain.CategoryImage:
		return []pipeline.Stage{
			pipeline.Map(r.tools.Images.Optimize),
		}
	default:
		return nil
	}
}

// notPartial drops Sass partials, which are only compiled through imports.
func notPartial(a domain.Asset) bool {
	return !strings.HasPrefix(path.Base(a.Path), "_")
}

// style compiles one stylesheet into its expanded and minified copies.
func (r *Runner) style(ctx context.Context, src domain.Asset) ([]domain.Asset, error) {
	css := r.tools.CSS
	name := src.Path

	out, err := r.tools.Styles.Compile(ctx, src)
	if err != nil {
		return nil, err
	}
	if out, err = css.GroupMedia(out, name); err != nil {
		return nil, err
	}
	if out, err = css.Prefix(out, name); err != nil {
		return nil, err
	}
	if out, err = css.Beautify(out, name); err != nil {
		return nil, err
	}

	minified, err := css.Minify(out, name)
	if err != nil {
		return nil, err
	}

	expanded := src.WithExt(".css").WithContents(out)
	return []domain.Asset{
		expanded,
		expanded.WithSuffix(r.minSuffix()).WithContents(minified),
	}, nil
}

func (r *Runner) minSuffix() string {
	if r.cfg.Styles.MinSuffix == "" {
		return domain.DefaultMinSuffix
	}
	return r.cfg.Styles.MinSuffix
}
