package fs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestCompileGlob_Match(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*.html", "index.html", true},
		{"*.html", "pages/about.html", false},
		{"**/*.html", "index.html", true},
		{"**/*.html", "pages/deep/about.html", true},
		{"assets/scss/*.scss", "assets/scss/main.scss", true},
		{"assets/scss/*.scss", "assets/scss/partials/_vars.scss", false},
		{"assets/scss/**/*.scss", "assets/scss/partials/_vars.scss", true},
		{"assets/images/**/*.{png,svg}", "assets/images/x.png", true},
		{"assets/images/**/*.{png,svg}", "assets/images/icons/a/b.svg", true},
		{"assets/images/**/*.{png,svg}", "assets/images/x.jpg", false},
		{"assets/fonts/**/*.{woff,woff2}", "assets/fonts/inter/inter.woff2", true},
		{"assets/js/?.js", "assets/js/a.js", true},
		{"assets/js/[ab].js", "assets/js/c.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.path, func(t *testing.T) {
			m, err := fs.CompileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.path))
			assert.Equal(t, tt.pattern, m.String())
		})
	}
}

func TestCompileGlob_Errors(t *testing.T) {
	_, err := fs.CompileGlob("")
	require.ErrorIs(t, err, domain.ErrEmptyGlob)

	_, err = fs.CompileGlob("assets/[z-a].png")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid glob pattern")
}
