// Package bundler bundles script entry modules into a single file with esbuild.
package bundler

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const entryName = "<kiln-entry>.js"

var _ ports.ScriptBundler = (*Bundler)(nil)

// Bundler implements ports.ScriptBundler.
type Bundler struct {
	opts    domain.ScriptOptions
	engines []api.Engine
}

// NewBundler creates a Bundler writing opts.Bundle for the given browsers.
func NewBundler(opts domain.ScriptOptions, browsers []domain.Browser) *Bundler {
	if opts.Bundle == "" {
		opts.Bundle = domain.DefaultBundleName
	}
	return &Bundler{opts: opts, engines: engines(browsers)}
}

// Bundle executes every entry in order inside one bundle. Without entries no
// bundle is produced. A linked source map follows the bundle when enabled.
func (b *Bundler) Bundle(ctx context.Context, entries []domain.Asset) ([]domain.Asset, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workDir, err := filepath.Abs(filepath.Dir(entries[0].Source))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrBundleFailed.Error())
	}

	var stdin strings.Builder
	for _, e := range entries {
		abs, err := filepath.Abs(e.Source)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrBundleFailed.Error()), "file", e.Path)
		}
		stdin.WriteString("import " + strconv.Quote(filepath.ToSlash(abs)) + ";\n")
	}

	opts := api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   stdin.String(),
			ResolveDir: workDir,
			Sourcefile: entryName,
			Loader:     api.LoaderJS,
		},
		AbsWorkingDir: workDir,
		Outfile:       filepath.Join(workDir, b.opts.Bundle),
		Bundle:        true,
		Write:         false,
		Format:        api.FormatIIFE,
		Platform:      api.PlatformBrowser,
		Engines:       b.engines,
		LogLevel:      api.LogLevelSilent,
	}
	if b.opts.Minify {
		opts.MinifyWhitespace = true
		opts.MinifySyntax = true
		opts.MinifyIdentifiers = true
	}
	if b.opts.SourceMap {
		opts.Sourcemap = api.SourceMapLinked
	}

	result := api.Build(opts)
	if len(result.Errors) > 0 {
		return nil, buildError(result.Errors)
	}

	out := make([]domain.Asset, 0, len(result.OutputFiles))
	for _, f := range result.OutputFiles {
		rel, err := filepath.Rel(workDir, f.Path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrBundleFailed.Error()), "file", f.Path)
		}
		out = append(out, domain.Asset{Path: filepath.ToSlash(rel), Contents: f.Contents})
	}

	// The bundle always comes first.
	for i, a := range out {
		if a.Path == b.opts.Bundle && i != 0 {
			out[0], out[i] = out[i], out[0]
		}
	}

	return out, nil
}

func buildError(msgs []api.Message) error {
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	err := zerr.Wrap(zerr.New(strings.Join(texts, "\n")), domain.ErrBundleFailed.Error())
	if loc := msgs[0].Location; loc != nil {
		err = zerr.With(zerr.With(err, "file", loc.File), "line", loc.Line)
	}
	return err
}

func engines(browsers []domain.Browser) []api.Engine {
	names := map[string]api.EngineName{
		"chrome":  api.EngineChrome,
		"edge":    api.EngineEdge,
		"firefox": api.EngineFirefox,
		"ie":      api.EngineIE,
		"ios":     api.EngineIOS,
		"opera":   api.EngineOpera,
		"safari":  api.EngineSafari,
	}
	out := make([]api.Engine, 0, len(browsers))
	for _, b := range browsers {
		if name, ok := names[b.Name]; ok {
			out = append(out, api.Engine{Name: name, Version: b.Version})
		}
	}
	return out
}
