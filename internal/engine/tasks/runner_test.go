package tasks_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/tasks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	root     string
	cfg      *domain.Config
	styles   *mocks.MockStyleCompiler
	css      *mocks.MockCSSTransformer
	scripts  *mocks.MockScriptBundler
	images   *mocks.MockImageOptimizer
	reloader *mocks.MockReloader
	span     *mocks.MockSpan
	runner   *tasks.Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	cfg, err := domain.DefaultConfig(root)
	require.NoError(t, err)

	f := &fixture{
		root:     root,
		cfg:      cfg,
		styles:   mocks.NewMockStyleCompiler(ctrl),
		css:      mocks.NewMockCSSTransformer(ctrl),
		scripts:  mocks.NewMockScriptBundler(ctrl),
		images:   mocks.NewMockImageOptimizer(ctrl),
		reloader: mocks.NewMockReloader(ctrl),
		span:     mocks.NewMockSpan(ctrl),
	}
	tools := &ports.Toolchain{Styles: f.styles, CSS: f.css, Scripts: f.scripts, Images: f.images}
	f.runner = tasks.NewRunner(cfg, fs.NewStore(fs.NewWalker()), tools, f.reloader)
	return f
}

func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

func (f *fixture) execute(ctx context.Context, name string) error {
	return f.runner.Execute(ctx, &domain.Task{Name: name}, f.span)
}

func TestExecute_MarkupIsCopiedVerbatim(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/index.html", "<p>hi</p>")
	f.write(t, "src/about.html", "<p>about</p>\n")

	f.span.EXPECT().SetAttribute(domain.SpanFilesAttribute, 2)
	f.reloader.EXPECT().Reload(gomock.Any(), []domain.ReloadEvent{
		{Kind: domain.ReloadPage, Path: "/about.html"},
		{Kind: domain.ReloadPage, Path: "/index.html"},
	})

	require.NoError(t, f.execute(t.Context(), "html"))
	assert.Equal(t, "<p>hi</p>", f.read(t, "dist/index.html"))
	assert.Equal(t, "<p>about</p>\n", f.read(t, "dist/about.html"))
}

func TestExecute_FontsKeepDirectoryStructure(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/assets/fonts/inter/inter.woff2", "\x00woff2")
	f.write(t, "src/assets/fonts/readme.txt", "ignored")

	f.span.EXPECT().SetAttribute(domain.SpanFilesAttribute, 1)
	f.reloader.EXPECT().Reload(gomock.Any(), []domain.ReloadEvent{
		{Kind: domain.ReloadPage, Path: "/assets/fonts/inter/inter.woff2"},
	})

	require.NoError(t, f.execute(t.Context(), "fonts"))
	assert.Equal(t, "\x00woff2", f.read(t, "dist/assets/fonts/inter/inter.woff2"))
	assert.NoFileExists(t, filepath.Join(f.root, "dist/assets/fonts/readme.txt"))
}

func TestExecute_Styles(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/assets/scss/_vars.scss", "$c: red;")
	f.write(t, "src/assets/scss/main.scss", "@use 'vars'; .a{.b{color:vars.$c}}")

	f.styles.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, src domain.Asset) ([]byte, error) {
			assert.Equal(t, "main.scss", src.Path)
			return []byte(".a .b {\n  color: red;\n}"), nil
		})
	f.css.EXPECT().GroupMedia(gomock.Any(), "main.scss").DoAndReturn(func(b []byte, _ string) ([]byte, error) { return b, nil })
	f.css.EXPECT().Prefix(gomock.Any(), "main.scss").DoAndReturn(func(b []byte, _ string) ([]byte, error) { return b, nil })
	f.css.EXPECT().Beautify(gomock.Any(), "main.scss").Return([]byte(".a .b {\n    color: red;\n}\n"), nil)
	f.css.EXPECT().Minify([]byte(".a .b {\n    color: red;\n}\n"), "main.scss").Return([]byte(".a .b{color:red}"), nil)

	f.span.EXPECT().SetAttribute(domain.SpanFilesAttribute, 2)
	f.reloader.EXPECT().Reload(gomock.Any(), []domain.ReloadEvent{
		{Kind: domain.ReloadCSS, Path: "/assets/css/main.css"},
		{Kind: domain.ReloadCSS, Path: "/assets/css/main.min.css"},
	})

	require.NoError(t, f.execute(t.Context(), "css"))
	assert.Equal(t, ".a .b {\n    color: red;\n}\n", f.read(t, "dist/assets/css/main.css"))
	assert.Equal(t, ".a .b{color:red}", f.read(t, "dist/assets/css/main.min.css"))
	assert.NoFileExists(t, filepath.Join(f.root, "dist/assets/css/_vars.css"))
}

func TestExecute_StyleFailureSkipsOnlyThatFile(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/assets/scss/broken.scss", ".a{")
	f.write(t, "src/assets/scss/main.scss", ".a{color:red}")

	errCompile := errors.New("expected \"}\"")
	f.styles.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, src domain.Asset) ([]byte, error) {
			if src.Path == "broken.scss" {
				return nil, errCompile
			}
			return []byte(".a{color:red}"), nil
		}).Times(2)
	identity := func(b []byte, _ string) ([]byte, error) { return b, nil }
	f.css.EXPECT().GroupMedia(gomock.Any(), "main.scss").DoAndReturn(identity)
	f.css.EXPECT().Prefix(gomock.Any(), "main.scss").DoAndReturn(identity)
	f.css.EXPECT().Beautify(gomock.Any(), "main.scss").DoAndReturn(identity)
	f.css.EXPECT().Minify(gomock.Any(), "main.scss").DoAndReturn(identity)

	f.span.EXPECT().SetAttribute(domain.SpanFilesAttribute, 2)
	f.reloader.EXPECT().Reload(gomock.Any(), gomock.Len(2))

	err := f.execute(t.Context(), "css")
	require.ErrorIs(t, err, errCompile)
	assert.FileExists(t, filepath.Join(f.root, "dist/assets/css/main.css"))
	assert.NoFileExists(t, filepath.Join(f.root, "dist/assets/css/broken.css"))
}

func TestExecute_ScriptsAreBundledOnce(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/assets/js/app.js", "import './lib/util.js';")
	f.write(t, "src/assets/js/menu.js", "console.log('menu');")
	f.write(t, "src/assets/js/lib/util.js", "export const x = 1;")

	f.scripts.EXPECT().Bundle(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entries []domain.Asset) ([]domain.Asset, error) {
			require.Len(t, entries, 2, "only top-level entries are bundled")
			assert.Equal(t, "app.js", entries[0].Path)
			assert.Equal(t, "menu.js", entries[1].Path)
			return []domain.Asset{{Path: "main.min.js", Contents: []byte("(()=>{})();")}}, nil
		})

	f.span.EXPECT().SetAttribute(domain.SpanFilesAttribute, 1)
	f.reloader.EXPECT().Reload(gomock.Any(), []domain.ReloadEvent{
		{Kind: domain.ReloadPage, Path: "/assets/js/main.min.js"},
	})

	require.NoError(t, f.execute(t.Context(), "js"))
	assert.Equal(t, "(()=>{})();", f.read(t, "dist/assets/js/main.min.js"))
}

func TestExecute_Images(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/assets/images/icons/logo.png", "png-bytes")
	f.write(t, "src/assets/images/photo.jpg", "corrupt")
	f.write(t, "src/assets/images/notes.txt", "not an image")

	f.images.EXPECT().Optimize(gomock.Any()).DoAndReturn(func(a domain.Asset) ([]byte, error) {
		if a.Path == "photo.jpg" {
			return nil, domain.ErrImageOptimizeFailed
		}
		return []byte("small"), nil
	}).Times(2)

	f.span.EXPECT().SetAttribute(domain.SpanFilesAttribute, 1)
	f.reloader.EXPECT().Reload(gomock.Any(), []domain.ReloadEvent{
		{Kind: domain.ReloadPage, Path: "/assets/images/icons/logo.png"},
	})

	err := f.execute(t.Context(), "images")
	require.ErrorIs(t, err, domain.ErrImageOptimizeFailed)
	assert.Equal(t, "small", f.read(t, "dist/assets/images/icons/logo.png"))
	assert.NoFileExists(t, filepath.Join(f.root, "dist/assets/images/photo.jpg"))
}

func TestExecute_EmptySourceTree(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"html", "css", "js", "images", "fonts"} {
		f.span.EXPECT().SetAttribute(domain.SpanFilesAttribute, 0)
		require.NoError(t, f.execute(t.Context(), name), name)
	}
	assert.NoDirExists(t, filepath.Join(f.root, "dist"))
}

func TestExecute_UnknownTask(t *testing.T) {
	f := newFixture(t)

	err := f.execute(t.Context(), "deploy")
	assert.ErrorContains(t, err, "task not found")
}

func TestExecute_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/index.html", "<p>hi</p>")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	f.span.EXPECT().SetAttribute(domain.SpanFilesAttribute, 0)
	err := f.execute(ctx, "html")
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(f.root, "dist/index.html"))
}

func TestRunner_WithoutReloader(t *testing.T) {
	root := t.TempDir()
	cfg, err := domain.DefaultConfig(root)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "index.html"), []byte("x"), domain.FilePerm))

	runner := tasks.NewRunner(cfg, fs.NewStore(fs.NewWalker()), &ports.Toolchain{}, nil)
	written, err := runner.Transform(t.Context(), domain.CategoryMarkup)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html"}, written)
}
