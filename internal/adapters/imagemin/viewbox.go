package imagemin

import (
	"bytes"
	"io"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

// removeViewBox drops the viewBox attribute of the root svg element when the
// element also sets both width and height. Input that fails to lex is
// returned unchanged.
func removeViewBox(data []byte) []byte {
	// The lexer rewrites whitespace inside attribute values in place.
	l := xml.NewLexer(parse.NewInputBytes(bytes.Clone(data)))

	var (
		out   bytes.Buffer
		root  bool
		done  bool
		attrs []rootAttr
	)
	out.Grow(len(data))

	for {
		tt, raw := l.Next()
		switch tt {
		case xml.ErrorToken:
			if l.Err() != io.EOF {
				return data
			}
			return out.Bytes()
		case xml.StartTagToken:
			if !done && string(l.Text()) == "svg" {
				root = true
			}
		case xml.AttributeToken:
			if root {
				attrs = append(attrs, rootAttr{name: string(l.Text()), raw: bytes.Clone(raw)})
				continue
			}
		case xml.StartTagCloseToken, xml.StartTagCloseVoidToken:
			if root {
				writeRootAttrs(&out, attrs)
				root, done = false, true
			}
		}
		out.Write(raw)
	}
}

type rootAttr struct {
	name string
	raw  []byte
}

func writeRootAttrs(out *bytes.Buffer, attrs []rootAttr) {
	var width, height bool
	for _, a := range attrs {
		switch a.name {
		case "width":
			width = true
		case "height":
			height = true
		}
	}
	for _, a := range attrs {
		if a.name == "viewBox" && width && height {
			continue
		}
		out.Write(a.raw)
	}
}
