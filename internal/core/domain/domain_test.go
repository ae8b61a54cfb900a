package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestCategory_TaskNames(t *testing.T) {
	tests := []struct {
		category domain.Category
		task     string
	}{
		{domain.CategoryMarkup, "html"},
		{domain.CategoryStyle, "css"},
		{domain.CategoryScript, "js"},
		{domain.CategoryImage, "images"},
		{domain.CategoryFont, "fonts"},
	}

	for _, tt := range tests {
		t.Run(tt.task, func(t *testing.T) {
			assert.Equal(t, tt.task, tt.category.TaskName())

			c, err := domain.CategoryForTask(tt.task)
			require.NoError(t, err)
			assert.Equal(t, tt.category, c)
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := domain.ParseCategory("style")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryStyle, c)

	c, err = domain.ParseCategory("images")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryImage, c)

	_, err = domain.ParseCategory("video")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown asset category")
}

func TestGlobBase(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"*.html", ""},
		{"**/*.html", ""},
		{"assets/scss/*.scss", "assets/scss"},
		{"assets/images/**/*.{png,svg}", "assets/images"},
		{"assets/fonts/**/*.{eot,woff}", "assets/fonts"},
		{"index.html", ""},
		{"assets/{a,b}/x.js", "assets"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.GlobBase(tt.pattern))
		})
	}
}

func TestNewRegistry(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		r, err := domain.NewRegistry("src", "dist", domain.DefaultPathEntries())
		require.NoError(t, err)

		assert.Equal(t, "dist", r.OutputDir(domain.CategoryMarkup))
		assert.Equal(t, filepath.Join("dist", "assets", "css"), r.OutputDir(domain.CategoryStyle))
		assert.Equal(t, filepath.Join("src", "assets", "images"), r.BaseDir(domain.CategoryImage))
		assert.Equal(t, "src", r.BaseDir(domain.CategoryMarkup))
		assert.Equal(t, "/assets/css/main.css", r.URLPath(domain.CategoryStyle, "main.css"))
		assert.Equal(t, "/index.html", r.URLPath(domain.CategoryMarkup, "index.html"))
	})

	t.Run("missing category", func(t *testing.T) {
		entries := domain.DefaultPathEntries()[1:]
		_, err := domain.NewRegistry("src", "dist", entries)
		require.Error(t, err)
		assert.ErrorContains(t, err, "missing path entry")
	})

	t.Run("duplicate category", func(t *testing.T) {
		entries := append(domain.DefaultPathEntries(), domain.PathEntry{
			Category:   domain.CategoryFont,
			SourceGlob: "fonts/*",
		})
		_, err := domain.NewRegistry("src", "dist", entries)
		require.Error(t, err)
		assert.ErrorContains(t, err, "duplicate path entry")
	})

	t.Run("output escapes root", func(t *testing.T) {
		entries := domain.DefaultPathEntries()
		entries[0].OutputDir = "../elsewhere"
		_, err := domain.NewRegistry("src", "dist", entries)
		require.Error(t, err)
		assert.ErrorContains(t, err, "outside output root")
	})

	t.Run("watch glob defaults to source glob", func(t *testing.T) {
		entries := domain.DefaultPathEntries()
		entries[4].WatchGlob = ""
		r, err := domain.NewRegistry("src", "dist", entries)
		require.NoError(t, err)
		assert.Equal(t, entries[4].SourceGlob, r.Entry(domain.CategoryFont).WatchGlob)
	})
}

func TestAsset_Renames(t *testing.T) {
	a := domain.Asset{Path: "pages/main.scss"}

	assert.Equal(t, "pages/main.css", a.WithExt(".css").Path)
	assert.Equal(t, "pages/main.min.css", a.WithExt(".css").WithSuffix(".min").Path)
	assert.Equal(t, ".scss", a.Ext())
	assert.Equal(t, "pages/main.scss", a.Path, "renames must not mutate the original")
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := domain.DefaultConfig("/work")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/work", "src"), cfg.Registry.SourceRoot())
	assert.Equal(t, filepath.Join("/work", "dist"), cfg.Registry.OutputRoot())
	assert.Equal(t, domain.DefaultPort, cfg.Server.Port)
	assert.Equal(t, ".min", cfg.Styles.MinSuffix)
	assert.Equal(t, "main.min.js", cfg.Scripts.Bundle)
	assert.Equal(t, 80, cfg.Images.JPEGQuality)
	assert.NotEmpty(t, cfg.Browsers)
}

func TestReloadKindFor(t *testing.T) {
	assert.Equal(t, domain.ReloadCSS, domain.ReloadKindFor(domain.CategoryStyle))
	for _, c := range []domain.Category{domain.CategoryMarkup, domain.CategoryScript, domain.CategoryImage, domain.CategoryFont} {
		assert.Equal(t, domain.ReloadPage, domain.ReloadKindFor(c))
	}
}
