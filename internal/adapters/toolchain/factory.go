// Package toolchain assembles the configured asset transformers.
package toolchain

import (
	"go.trai.ch/kiln/internal/adapters/bundler"
	"go.trai.ch/kiln/internal/adapters/css"
	"go.trai.ch/kiln/internal/adapters/imagemin"
	"go.trai.ch/kiln/internal/adapters/sass"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.ToolchainFactory = (*Factory)(nil)

// Factory implements ports.ToolchainFactory.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory whose transformers report warnings to logger.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// New builds a toolchain for cfg. The Sass compiler process is started on
// first use and stopped by Toolchain.Close.
func (f *Factory) New(cfg *domain.Config) (*ports.Toolchain, error) {
	if cfg == nil {
		return nil, domain.ErrMissingConfig
	}

	indent := cfg.Styles.Indent
	if indent <= 0 {
		indent = domain.DefaultIndent
	}
	compiler := sass.NewCompiler(cfg.Styles.SassBinary, f.logger)

	return &ports.Toolchain{
		Styles:  compiler,
		CSS:     css.NewTransformer(cfg.Browsers, indent),
		Scripts: bundler.NewBundler(cfg.Scripts, cfg.Browsers),
		Images:  imagemin.NewOptimizer(cfg.Images),
		Close:   compiler.Close,
	}, nil
}
