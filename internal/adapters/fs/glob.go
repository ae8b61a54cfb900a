package fs

import (
	"strings"

	"github.com/gobwas/glob"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

const globstarSlash = "**/"

// Matcher matches slash-separated paths against a glob pattern. `*` stops at
// `/`, `**` crosses directories and `**/` also matches no directory at all.
type Matcher struct {
	pattern  string
	variants []glob.Glob
}

// CompileGlob compiles pattern into a Matcher.
func CompileGlob(pattern string) (*Matcher, error) {
	if pattern == "" {
		return nil, domain.ErrEmptyGlob
	}

	m := &Matcher{pattern: pattern}
	for _, variant := range expandGlobstar(pattern) {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidGlob.Error()), "pattern", pattern)
		}
		m.variants = append(m.variants, g)
	}

	return m, nil
}

// Match reports whether rel matches the pattern.
func (m *Matcher) Match(rel string) bool {
	for _, g := range m.variants {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// String returns the source pattern.
func (m *Matcher) String() string {
	return m.pattern
}

// expandGlobstar returns pattern with every `**/` both kept and dropped.
func expandGlobstar(pattern string) []string {
	idx := strings.Index(pattern, globstarSlash)
	if idx < 0 {
		return []string{pattern}
	}

	// Only a whole path segment is a globstar.
	if idx > 0 && pattern[idx-1] != '/' {
		prefix := pattern[:idx+len(globstarSlash)]
		var out []string
		for _, rest := range expandGlobstar(pattern[idx+len(globstarSlash):]) {
			out = append(out, prefix+rest)
		}
		return out
	}

	head := pattern[:idx]
	var out []string
	for _, rest := range expandGlobstar(pattern[idx+len(globstarSlash):]) {
		out = append(out, head+globstarSlash+rest, head+rest)
	}
	return out
}
