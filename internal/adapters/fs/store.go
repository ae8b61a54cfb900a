package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AssetStore = (*Store)(nil)

// Store implements ports.AssetStore on the local filesystem.
type Store struct {
	walker *Walker
}

// NewStore creates a new Store.
func NewStore(walker *Walker) *Store {
	return &Store{walker: walker}
}

// Read loads every file below base whose path relative to root matches pattern.
// Files are returned in lexical order with paths relative to base.
func (s *Store) Read(root, base, pattern string) ([]domain.Asset, error) {
	matcher, err := CompileGlob(pattern)
	if err != nil {
		return nil, err
	}

	var assets []domain.Asset
	for path, walkErr := range s.walker.WalkFiles(base) {
		if walkErr != nil {
			return nil, zerr.With(zerr.Wrap(walkErr, domain.ErrSourceScanFailed.Error()), "dir", base)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil || !matcher.Match(filepath.ToSlash(rel)) {
			continue
		}

		contents, err := os.ReadFile(path) //nolint:gosec // path comes from walking the source root
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFileReadFailed.Error()), "path", path)
		}

		assetPath, err := filepath.Rel(base, path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceScanFailed.Error()), "path", path)
		}

		assets = append(assets, domain.Asset{
			Path:     filepath.ToSlash(assetPath),
			Source:   path,
			Contents: contents,
		})
	}

	return assets, nil
}

// Write stores asset below dir, creating parent directories as needed.
func (s *Store) Write(dir string, asset domain.Asset) (string, error) {
	rel := filepath.FromSlash(asset.Path)
	if !filepath.IsLocal(rel) {
		return "", zerr.With(domain.ErrOutputPathOutsideRoot, "path", asset.Path)
	}

	target := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", target)
	}

	if err := os.WriteFile(target, asset.Contents, domain.FilePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", target)
	}

	return target, nil
}

// RemoveAll deletes dir and everything below it.
func (s *Store) RemoveAll(dir string) error {
	if _, err := os.Lstat(dir); isNotExist(err) {
		return nil
	}

	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCleanFailed.Error()), "dir", dir)
	}
	return nil
}
