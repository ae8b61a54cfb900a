package css_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/css"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "between rules", in: "a{color:red}/* x */b{top:0}", want: "a{color:red}b{top:0}"},
		{name: "inside block", in: "a{/* y */color:red}", want: "a{color:red}"},
		{name: "comment-like string", in: `a{content:"/* not a comment */"}`, want: `a{content:"/* not a comment */"}`},
		{name: "no comments", in: "a{top:0}", want: "a{top:0}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(css.StripComments([]byte(tt.in))))
		})
	}
}
