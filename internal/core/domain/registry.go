package domain

import (
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// PathEntry maps a category to its source glob, watch glob and output directory.
// Globs use forward slashes and are relative to the source root. OutputDir is
// relative to the output root.
type PathEntry struct {
	Category   Category
	SourceGlob string
	WatchGlob  string
	OutputDir  string
}

// Base returns the static directory prefix of the source glob. Outputs keep
// their path relative to this directory.
func (e PathEntry) Base() string {
	return GlobBase(e.SourceGlob)
}

// GlobBase returns the leading directory segments of pattern that contain no
// glob metacharacters.
func GlobBase(pattern string) string {
	segments := strings.Split(path.Clean(pattern), "/")
	var base []string
	for _, seg := range segments[:len(segments)-1] {
		if strings.ContainsAny(seg, "*?[{") {
			break
		}
		base = append(base, seg)
	}
	if len(base) == 0 {
		return ""
	}
	return path.Join(base...)
}

// Registry is the fixed category-to-paths configuration shared by every component.
// It is built once at startup and never mutated.
type Registry struct {
	srcRoot  string
	distRoot string
	entries  map[Category]PathEntry
}

// NewRegistry validates the entries and returns a Registry rooted at srcRoot and distRoot.
// Every category must have exactly one entry.
func NewRegistry(srcRoot, distRoot string, entries []PathEntry) (*Registry, error) {
	r := &Registry{
		srcRoot:  filepath.Clean(srcRoot),
		distRoot: filepath.Clean(distRoot),
		entries:  make(map[Category]PathEntry, len(entries)),
	}

	for _, e := range entries {
		if !e.Category.Valid() {
			return nil, zerr.With(ErrUnknownCategory, "category", string(e.Category))
		}
		if _, exists := r.entries[e.Category]; exists {
			return nil, zerr.With(ErrDuplicatePathEntry, "category", string(e.Category))
		}
		if e.SourceGlob == "" {
			return nil, zerr.With(ErrEmptyGlob, "category", string(e.Category))
		}
		if e.WatchGlob == "" {
			e.WatchGlob = e.SourceGlob
		}
		if !isLocal(e.OutputDir) {
			return nil, zerr.With(zerr.With(ErrOutputPathOutsideRoot, "category", string(e.Category)), "output", e.OutputDir)
		}
		r.entries[e.Category] = e
	}

	for _, c := range Categories {
		if _, ok := r.entries[c]; !ok {
			return nil, zerr.With(ErrMissingPathEntry, "category", string(c))
		}
	}

	return r, nil
}

func isLocal(p string) bool {
	if p == "" || p == "." {
		return true
	}
	return filepath.IsLocal(filepath.FromSlash(p))
}

// SourceRoot returns the absolute or working-directory relative source root.
func (r *Registry) SourceRoot() string {
	return r.srcRoot
}

// OutputRoot returns the root directory every category writes beneath.
func (r *Registry) OutputRoot() string {
	return r.distRoot
}

// Entry returns the path entry of c.
func (r *Registry) Entry(c Category) PathEntry {
	return r.entries[c]
}

// OutputDir returns the filesystem directory c writes into.
func (r *Registry) OutputDir(c Category) string {
	return filepath.Join(r.distRoot, filepath.FromSlash(r.entries[c].OutputDir))
}

// BaseDir returns the filesystem directory matching starts from for c.
func (r *Registry) BaseDir(c Category) string {
	return filepath.Join(r.srcRoot, filepath.FromSlash(r.entries[c].Base()))
}

// URLPath returns the server path of an output file written by c.
func (r *Registry) URLPath(c Category, rel string) string {
	return "/" + path.Join(filepath.ToSlash(r.entries[c].OutputDir), rel)
}
