// Package sass compiles SCSS stylesheets through the Dart Sass embedded protocol.
package sass

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const compileTimeout = 30 * time.Second

var _ ports.StyleCompiler = (*Compiler)(nil)

// Compiler implements ports.StyleCompiler. The Dart Sass process is started on
// first use and shared by later compilations until Close.
type Compiler struct {
	binary string
	logger ports.Logger

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

// NewCompiler creates a Compiler running the given Dart Sass binary.
// An empty binary looks up "sass" on PATH.
func NewCompiler(binary string, logger ports.Logger) *Compiler {
	return &Compiler{binary: binary, logger: logger}
}

// Compile compiles src as SCSS into expanded CSS. Imports resolve relative to
// the directory of src.
func (c *Compiler) Compile(ctx context.Context, src domain.Asset) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := c.start()
	if err != nil {
		return nil, err
	}

	args := godartsass.Args{
		Source:       string(src.Contents),
		OutputStyle:  godartsass.OutputStyleExpanded,
		SourceSyntax: godartsass.SourceSyntaxSCSS,
	}
	if src.Source != "" {
		if abs, absErr := filepath.Abs(src.Source); absErr == nil {
			args.URL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
			args.IncludePaths = []string{filepath.Dir(abs)}
		}
	}

	res, err := t.Execute(args)
	if err != nil {
		wrapped := zerr.Wrap(err, domain.ErrStyleCompileFailed.Error())
		var sassErr godartsass.SassError
		if errors.As(err, &sassErr) {
			wrapped = zerr.With(wrapped, "context", sassErr.Span.Context)
		}
		return nil, zerr.With(wrapped, "file", src.Path)
	}

	return []byte(res.CSS), nil
}

// Close shuts the Dart Sass process down if it was started.
func (c *Compiler) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transpiler == nil {
		return nil
	}
	err := c.transpiler.Close()
	c.transpiler = nil
	return err
}

func (c *Compiler) start() (*godartsass.Transpiler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transpiler != nil && !c.transpiler.IsShutDown() {
		return c.transpiler, nil
	}

	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: c.binary,
		Timeout:                  compileTimeout,
		LogEventHandler:          c.logEvent,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStyleCompileFailed.Error()), "binary", c.binaryName())
	}

	c.transpiler = t
	return t, nil
}

func (c *Compiler) logEvent(event godartsass.LogEvent) {
	if c.logger == nil || event.Type == godartsass.LogEventTypeDebug {
		return
	}
	c.logger.Warn("sass: " + event.Message)
}

func (c *Compiler) binaryName() string {
	if c.binary == "" {
		return domain.DefaultSassBinary
	}
	return c.binary
}
