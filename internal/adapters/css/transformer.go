package css

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CSSTransformer = (*Transformer)(nil)

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

// Transformer implements ports.CSSTransformer with tdewolff/parse for
// structural passes and esbuild for prefixing and minification.
type Transformer struct {
	engines []api.Engine
	indent  string
}

// NewTransformer creates a Transformer targeting browsers and indenting
// beautified output by indent spaces.
func NewTransformer(browsers []domain.Browser, indent int) *Transformer {
	engines := make([]api.Engine, 0, len(browsers))
	for _, b := range browsers {
		if name, ok := engineNames[b.Name]; ok {
			engines = append(engines, api.Engine{Name: name, Version: b.Version})
		}
	}
	return &Transformer{
		engines: engines,
		indent:  strings.Repeat(" ", max(indent, 0)),
	}
}

// GroupMedia merges identical @media blocks and moves them to the end.
func (t *Transformer) GroupMedia(css []byte, name string) ([]byte, error) {
	nodes, err := parseTree(css)
	if err != nil {
		return nil, zerr.With(err, "file", name)
	}
	return render(groupMedia(nodes), t.indent), nil
}

// Prefix adds vendor prefixes for the configured engines.
func (t *Transformer) Prefix(css []byte, name string) ([]byte, error) {
	return t.transform(css, name, false)
}

// Beautify reformats css with one declaration per line.
func (t *Transformer) Beautify(css []byte, name string) ([]byte, error) {
	nodes, err := parseTree(css)
	if err != nil {
		return nil, zerr.With(err, "file", name)
	}
	return render(nodes, t.indent), nil
}

// Minify compresses css and strips any comment esbuild kept. Numeric values
// such as z-index are never rebased.
func (t *Transformer) Minify(css []byte, name string) ([]byte, error) {
	out, err := t.transform(css, name, true)
	if err != nil {
		return nil, err
	}
	return stripComments(out), nil
}

func (t *Transformer) transform(css []byte, name string, minify bool) ([]byte, error) {
	result := api.Transform(string(css), api.TransformOptions{
		Loader:           api.LoaderCSS,
		Sourcefile:       name,
		Engines:          t.engines,
		MinifyWhitespace: minify,
		MinifySyntax:     minify,
		LegalComments:    api.LegalCommentsNone,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return nil, messagesError(result.Errors, domain.ErrStyleProcessFailed, name)
	}
	return result.Code, nil
}

// messagesError converts esbuild diagnostics into one wrapped error located
// at the first message.
func messagesError(msgs []api.Message, sentinel error, name string) error {
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	err := zerr.Wrap(zerr.New(strings.Join(texts, "\n")), sentinel.Error())
	err = zerr.With(err, "file", name)
	if loc := msgs[0].Location; loc != nil {
		err = zerr.With(err, "line", loc.Line)
	}
	return err
}
