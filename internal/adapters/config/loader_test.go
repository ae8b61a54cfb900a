package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	return config.NewLoader(mockLogger), mockLogger
}

func TestLoader_Load_Defaults(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()

	cfg, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, filepath.Join(root, "src"), cfg.Registry.SourceRoot())
	assert.Equal(t, filepath.Join(root, "dist"), cfg.Registry.OutputRoot())
	assert.Equal(t, filepath.Join(root, "dist", "assets", "css"), cfg.Registry.OutputDir(domain.CategoryStyle))
	assert.Equal(t, domain.DefaultBrowsers(), cfg.Browsers)
	assert.Equal(t, 80, cfg.Images.JPEGQuality)
	assert.Equal(t, "main.min.js", cfg.Scripts.Bundle)
	assert.False(t, cfg.Scripts.Minify)
	assert.Equal(t, domain.DefaultPort, cfg.Server.Port)
}

func TestLoader_Load_DiscoversParentConfig(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, "src: site\ndist: public\n")

	nested := filepath.Join(root, "site", "assets")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	cfg, err := loader.Load(nested)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.Root)
	assert.Equal(t, filepath.Join(root, "site"), cfg.Registry.SourceRoot())
	assert.Equal(t, filepath.Join(root, "public"), cfg.Registry.OutputRoot())
}

func TestLoader_LoadFile_Overrides(t *testing.T) {
	loader, mockLogger := newLoader(t)
	mockLogger.EXPECT().Warn("ignoring unknown browser 'netscape' in kiln.yaml")

	root := t.TempDir()
	path := createFile(t, root, domain.ConfigFileName, `
paths:
  css:
    src: styles/*.scss
    watch: styles/**/*.scss
    dest: css
  markup:
    dest: ""
browsers:
  chrome: 120
  safari: "15.4"
  netscape: 4
styles:
  minSuffix: ".compressed"
  indent: 2
  sassBinary: /opt/dart-sass/sass
scripts:
  bundle: app.js
  minify: true
  sourcemap: true
images:
  jpegQuality: 70
server:
  host: 0.0.0.0
  port: 8080
`)

	cfg, err := loader.LoadFile(path)
	require.NoError(t, err)

	style := cfg.Registry.Entry(domain.CategoryStyle)
	assert.Equal(t, "styles/*.scss", style.SourceGlob)
	assert.Equal(t, "styles/**/*.scss", style.WatchGlob)
	assert.Equal(t, "css", style.OutputDir)
	assert.Equal(t, "styles", style.Base())

	assert.Equal(t, []domain.Browser{
		{Name: "chrome", Version: "120"},
		{Name: "safari", Version: "15.4"},
	}, cfg.Browsers)

	assert.Equal(t, domain.StyleOptions{MinSuffix: ".compressed", Indent: 2, SassBinary: "/opt/dart-sass/sass"}, cfg.Styles)
	assert.Equal(t, domain.ScriptOptions{Bundle: "app.js", Minify: true, SourceMap: true}, cfg.Scripts)
	assert.Equal(t, 70, cfg.Images.JPEGQuality)
	assert.Equal(t, domain.ServerOptions{Host: "0.0.0.0", Port: 8080}, cfg.Server)
}

func TestLoader_LoadFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown category",
			content: "paths:\n  videos:\n    src: '*.mp4'\n",
			wantErr: "unknown asset category",
		},
		{
			name:    "output outside root",
			content: "paths:\n  js:\n    dest: ../outside\n",
			wantErr: "output path is outside output root",
		},
		{
			name:    "invalid glob",
			content: "paths:\n  images:\n    src: 'assets/[z-a].png'\n",
			wantErr: "invalid glob pattern",
		},
		{
			name:    "port out of range",
			content: "server:\n  port: 70000\n",
			wantErr: "invalid server port",
		},
		{
			name:    "jpeg quality out of range",
			content: "images:\n  jpegQuality: 0\n",
			wantErr: "invalid jpeg quality",
		},
		{
			name:    "malformed yaml",
			content: "paths: [\n",
			wantErr: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			path := createFile(t, t.TempDir(), domain.ConfigFileName, tt.content)

			_, err := loader.LoadFile(path)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoader_LoadFile_Missing(t *testing.T) {
	loader, _ := newLoader(t)

	_, err := loader.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read config file")
}
