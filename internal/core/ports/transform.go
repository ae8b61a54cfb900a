package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=transform.go -destination=mocks/mock_transform.go -package=mocks

// StyleCompiler compiles a Sass source asset into plain CSS.
type StyleCompiler interface {
	Compile(ctx context.Context, src domain.Asset) ([]byte, error)
}

// CSSTransformer post-processes compiled CSS. Name identifies the stylesheet
// in errors.
type CSSTransformer interface {
	// GroupMedia merges identical @media blocks and moves them after the plain rules.
	GroupMedia(css []byte, name string) ([]byte, error)
	// Prefix adds the vendor prefixes required by the browser matrix.
	Prefix(css []byte, name string) ([]byte, error)
	// Beautify pretty-prints the stylesheet.
	Beautify(css []byte, name string) ([]byte, error)
	// Minify strips comments, collapses whitespace and drops redundant rules.
	Minify(css []byte, name string) ([]byte, error)
}

// ScriptBundler bundles entry modules and their imports into one artifact.
type ScriptBundler interface {
	// Bundle returns the bundle asset followed by any companion files such as source maps.
	Bundle(ctx context.Context, entries []domain.Asset) ([]domain.Asset, error)
}

// ImageOptimizer compresses a single image.
type ImageOptimizer interface {
	// Optimize returns the compressed bytes, or the input unchanged when
	// compression does not make it smaller or the format is not compressible.
	Optimize(asset domain.Asset) ([]byte, error)
}

// Toolchain holds the transformers configured for one project.
type Toolchain struct {
	Styles  StyleCompiler
	CSS     CSSTransformer
	Scripts ScriptBundler
	Images  ImageOptimizer
	// Close releases external processes started by the transformers.
	Close func() error
}

// ToolchainFactory builds the transformers for a loaded configuration.
type ToolchainFactory interface {
	New(cfg *domain.Config) (*Toolchain, error)
}
