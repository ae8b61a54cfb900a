package app_test

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/coordinator"
	"go.uber.org/mock/gomock"
)

type fakeWatcher struct {
	events chan ports.WatchEvent
	once   sync.Once
}

func (w *fakeWatcher) Start(context.Context, string) error { return nil }

func (w *fakeWatcher) Stop() error {
	w.once.Do(func() { close(w.events) })
	return nil
}

func (w *fakeWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range w.events {
			if !yield(ev) {
				return
			}
		}
	}
}

type fixture struct {
	root    string
	cfg     *domain.Config
	loader  *mocks.MockConfigLoader
	factory *mocks.MockToolchainFactory
	styles  *mocks.MockStyleCompiler
	images  *mocks.MockImageOptimizer
	tools   *ports.Toolchain
	server  *mocks.MockDevServer
	logger  *mocks.MockLogger
	watcher *fakeWatcher
	closed  int
	app     *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	root := t.TempDir()
	cfg, err := domain.DefaultConfig(root)
	require.NoError(t, err)

	f := &fixture{
		root:    root,
		cfg:     cfg,
		loader:  mocks.NewMockConfigLoader(ctrl),
		factory: mocks.NewMockToolchainFactory(ctrl),
		styles:  mocks.NewMockStyleCompiler(ctrl),
		images:  mocks.NewMockImageOptimizer(ctrl),
		server:  mocks.NewMockDevServer(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
		watcher: &fakeWatcher{events: make(chan ports.WatchEvent)},
	}
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.tools = &ports.Toolchain{
		Styles:  f.styles,
		CSS:     mocks.NewMockCSSTransformer(ctrl),
		Scripts: mocks.NewMockScriptBundler(ctrl),
		Images:  f.images,
		Close: func() error {
			f.closed++
			return nil
		},
	}

	f.app = app.New(
		f.loader,
		f.factory,
		fs.NewStore(fs.NewWalker()),
		f.server,
		telemetry.NewNoOpTracer(),
		f.watcher,
		f.logger,
	).WithCoordinatorOptions(coordinator.WithWindow(10 * time.Millisecond))
	return f
}

func (f *fixture) expectConfig() {
	f.loader.EXPECT().Load(gomock.Any()).Return(f.cfg, nil)
}

func (f *fixture) expectToolchain() {
	f.factory.EXPECT().New(f.cfg).Return(f.tools, nil)
}

func (f *fixture) write(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestApp_Build(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/index.html", "<p>hi</p>")
	f.write(t, "src/assets/fonts/inter.woff2", "font")
	f.write(t, "dist/stale.txt", "old")

	f.expectConfig()
	f.expectToolchain()
	f.server.EXPECT().Reload(gomock.Any(), gomock.Any()).Times(2)

	require.NoError(t, f.app.Build(t.Context(), app.Options{}))

	assert.Equal(t, "<p>hi</p>", f.read(t, "dist/index.html"))
	assert.Equal(t, "font", f.read(t, "dist/assets/fonts/inter.woff2"))
	assert.NoFileExists(t, filepath.Join(f.root, "dist", "stale.txt"))
	assert.Equal(t, 1, f.closed)
}

func TestApp_Build_EmptySource(t *testing.T) {
	f := newFixture(t)
	f.expectConfig()
	f.expectToolchain()

	require.NoError(t, f.app.Build(t.Context(), app.Options{}))
	assert.NoDirExists(t, filepath.Join(f.root, "dist", "assets"))
}

func TestApp_Build_ConfigFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.root, "site", "kiln.yaml")
	f.loader.EXPECT().LoadFile(path).Return(f.cfg, nil)
	f.expectToolchain()

	require.NoError(t, f.app.Build(t.Context(), app.Options{ConfigFile: path}))
}

func TestApp_Build_ConfigError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load(gomock.Any()).Return(nil, domain.ErrConfigParseFailed)

	err := f.app.Build(t.Context(), app.Options{})
	require.ErrorIs(t, err, domain.ErrConfigParseFailed)
}

func TestApp_Build_ToolchainError(t *testing.T) {
	f := newFixture(t)
	f.expectConfig()
	f.factory.EXPECT().New(f.cfg).Return(nil, errors.New("sass not found"))

	err := f.app.Build(t.Context(), app.Options{})
	require.ErrorContains(t, err, "sass not found")
}

func TestApp_Build_TaskFailure(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/index.html", "<p>hi</p>")
	f.write(t, "src/assets/scss/main.scss", ".a{")

	f.expectConfig()
	f.expectToolchain()
	f.styles.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(nil, errors.New("expected \"}\""))
	f.server.EXPECT().Reload(gomock.Any(), gomock.Any())

	err := f.app.Build(t.Context(), app.Options{})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.ErrorContains(t, err, "expected \"}\"")

	// Other categories still complete.
	assert.Equal(t, "<p>hi</p>", f.read(t, "dist/index.html"))
	assert.Equal(t, 1, f.closed)
}

func TestApp_RunTask(t *testing.T) {
	f := newFixture(t)
	f.write(t, "src/index.html", "<p>hi</p>")
	f.write(t, "src/assets/fonts/inter.woff2", "font")

	f.expectConfig()
	f.expectToolchain()
	f.server.EXPECT().Reload(gomock.Any(), []domain.ReloadEvent{{Kind: domain.ReloadPage, Path: "/index.html"}})

	require.NoError(t, f.app.RunTask(t.Context(), "html", app.Options{}))

	assert.FileExists(t, filepath.Join(f.root, "dist", "index.html"))
	assert.NoFileExists(t, filepath.Join(f.root, "dist", "assets", "fonts", "inter.woff2"))
}

func TestApp_RunTask_Unknown(t *testing.T) {
	f := newFixture(t)

	err := f.app.RunTask(t.Context(), "deploy", app.Options{})
	require.ErrorContains(t, err, "task not found")
}

func TestApp_Clean(t *testing.T) {
	f := newFixture(t)
	f.write(t, "dist/index.html", "<p>hi</p>")

	f.expectConfig()
	f.expectToolchain()

	require.NoError(t, f.app.Clean(t.Context(), app.Options{}))
	assert.NoDirExists(t, filepath.Join(f.root, "dist"))
}

func TestApp_Watch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "src/index.html", "<p>hi</p>")

		f.expectConfig()
		f.expectToolchain()
		dist := filepath.Join(f.root, "dist")
		f.server.EXPECT().Start(gomock.Any(), dist, "localhost:3000").Return("127.0.0.1:3000", nil)
		f.server.EXPECT().Reload(gomock.Any(), []domain.ReloadEvent{{Kind: domain.ReloadPage, Path: "/index.html"}}).Times(2)
		f.server.EXPECT().Shutdown(gomock.Any()).Return(nil)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- f.app.Watch(ctx, app.WatchOptions{}) }()
		synctest.Wait()

		assert.Equal(t, "<p>hi</p>", f.read(t, "dist/index.html"))

		f.write(t, "src/index.html", "<p>bye</p>")
		f.watcher.events <- ports.WatchEvent{Path: filepath.Join(f.root, "src", "index.html"), Operation: ports.OpWrite}
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, "<p>bye</p>", f.read(t, "dist/index.html"))

		cancel()
		require.NoError(t, <-done)
		assert.Equal(t, 1, f.closed)
	})
}

func TestApp_Watch_NewImageRunsOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)

		f.expectConfig()
		f.expectToolchain()
		f.server.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).Return("127.0.0.1:3000", nil)
		f.images.EXPECT().Optimize(gomock.Any()).Return([]byte("small"), nil).Times(1)
		f.server.EXPECT().Reload(gomock.Any(), []domain.ReloadEvent{
			{Kind: domain.ReloadPage, Path: "/assets/images/x.png"},
		}).Times(1)
		f.server.EXPECT().Shutdown(gomock.Any()).Return(nil)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- f.app.Watch(ctx, app.WatchOptions{}) }()
		synctest.Wait()

		f.write(t, "src/assets/images/x.png", "png")
		path := filepath.Join(f.root, "src", "assets", "images", "x.png")
		f.watcher.events <- ports.WatchEvent{Path: path, Operation: ports.OpCreate}
		f.watcher.events <- ports.WatchEvent{Path: path, Operation: ports.OpWrite}
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, "small", f.read(t, "dist/assets/images/x.png"))

		cancel()
		require.NoError(t, <-done)
	})
}

func TestApp_Watch_Overrides(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.expectConfig()
		f.expectToolchain()
		f.server.EXPECT().Start(gomock.Any(), gomock.Any(), "0.0.0.0:0").Return("0.0.0.0:41234", nil)
		f.server.EXPECT().Shutdown(gomock.Any()).Return(nil)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			done <- f.app.Watch(ctx, app.WatchOptions{Host: "0.0.0.0", Port: 0, OverridePort: true})
		}()
		synctest.Wait()

		cancel()
		require.NoError(t, <-done)
	})
}

func TestApp_Watch_BindFailure(t *testing.T) {
	f := newFixture(t)
	f.expectConfig()
	f.expectToolchain()
	f.server.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).Return("", domain.ErrServerBindFailed)

	err := f.app.Watch(t.Context(), app.WatchOptions{})
	require.ErrorIs(t, err, domain.ErrServerBindFailed)
	assert.Equal(t, 1, f.closed)
}

func TestApp_Watch_InvalidPort(t *testing.T) {
	f := newFixture(t)
	f.expectConfig()

	err := f.app.Watch(t.Context(), app.WatchOptions{Port: 70000, OverridePort: true})
	require.ErrorContains(t, err, "invalid server port")
}

func TestApp_Watch_InitialBuildFailureKeepsWatching(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "src/assets/scss/main.scss", ".a{")

		f.expectConfig()
		f.expectToolchain()
		f.styles.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(nil, errors.New("syntax error"))
		f.logger.EXPECT().Error(gomock.Any())
		f.server.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).Return("127.0.0.1:3000", nil)
		f.server.EXPECT().Shutdown(gomock.Any()).Return(nil)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- f.app.Watch(ctx, app.WatchOptions{}) }()
		synctest.Wait()

		cancel()
		require.NoError(t, <-done)
	})
}

func TestApp_SetJSONLogging(t *testing.T) {
	f := newFixture(t)
	// Loggers without JSON support are left untouched.
	f.app.SetJSONLogging(true)
}
