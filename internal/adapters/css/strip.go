package css

import (
	"bytes"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// stripComments removes every comment token and leaves all other bytes as
// they were.
func stripComments(src []byte) []byte {
	l := css.NewLexer(parse.NewInputBytes(src))

	var out bytes.Buffer
	out.Grow(len(src))
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			return out.Bytes()
		}
		if tt == css.CommentToken {
			continue
		}
		out.Write(data)
	}
}
