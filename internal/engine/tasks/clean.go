package tasks

import (
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Clean removes the output root. It refuses when the output root is, or
// contains, the source root or the workspace root.
func (r *Runner) Clean() error {
	reg := r.cfg.Registry
	if err := CheckCleanTarget(reg.OutputRoot(), reg.SourceRoot(), r.cfg.Root); err != nil {
		return err
	}
	return r.store.RemoveAll(reg.OutputRoot())
}

// CheckCleanTarget reports whether dist may be deleted without touching src or root.
func CheckCleanTarget(dist, src, root string) error {
	distAbs, err := filepath.Abs(dist)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "dir", dist)
	}

	for _, protected := range []string{src, root} {
		if protected == "" {
			continue
		}
		abs, err := filepath.Abs(protected)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "dir", protected)
		}
		if within(abs, distAbs) {
			return zerr.With(zerr.With(domain.ErrUnsafeClean, "dir", distAbs), "protected", abs)
		}
	}
	return nil
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && filepath.IsLocal(rel)
}
