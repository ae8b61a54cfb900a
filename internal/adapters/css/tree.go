// Package css post-processes compiled stylesheets: media query grouping,
// vendor prefixing, pretty-printing, minification and comment stripping.
package css

import (
	"errors"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

type nodeKind uint8

const (
	kindComment nodeKind = iota
	kindRuleset
	kindAtRule
)

// declaration is a property/value pair, or a comment when comment is set.
type declaration struct {
	property string
	value    string
	comment  string
}

// node is one top-level or nested statement of a stylesheet.
type node struct {
	kind nodeKind

	// text is the comment body or the at-rule keyword including '@'.
	text      string
	prelude   string
	selectors []string
	block     bool

	decls    []declaration
	children []*node
	raw      string
}

func (n *node) isMedia() bool {
	return n.kind == kindAtRule && n.block && n.text == "@media"
}

// parseTree parses a stylesheet into statements. Comments are kept as
// statements, and one inside a value moves before its declaration.
func parseTree(src []byte) ([]*node, error) {
	p := css.NewParser(parse.NewInputBytes(src), false)
	nested := nestedComments(src)

	var root []*node
	var stack []*node
	// pending holds the selectors of a list seen before its last one.
	var pending []css.Token

	push := func(n *node) {
		if len(stack) == 0 {
			root = append(root, n)
			return
		}
		top := stack[len(stack)-1]
		top.children = append(top.children, n)
	}

	// The parser only reports top-level comments, so nested ones are placed
	// by offset into the innermost open block.
	attach := func(end int) {
		for len(nested) > 0 && nested[0].offset < end {
			c := nested[0]
			nested = nested[1:]
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if top.kind == kindRuleset {
				top.decls = append(top.decls, declaration{comment: c.text})
				continue
			}
			top.children = append(top.children, &node{kind: kindComment, text: c.text})
		}
	}

	for {
		gt, _, data := p.Next()
		if gt != css.ErrorGrammar {
			attach(p.Offset())
		}
		switch gt {
		case css.ErrorGrammar:
			if p.HasParseError() {
				return nil, zerr.Wrap(p.Err(), domain.ErrStyleParseFailed.Error())
			}
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, zerr.Wrap(err, domain.ErrStyleParseFailed.Error())
			}
			return root, nil
		case css.CommentGrammar:
			push(&node{kind: kindComment, text: string(data)})
		case css.AtRuleGrammar:
			push(&node{kind: kindAtRule, text: string(data), prelude: renderPrelude(p.Values())})
		case css.BeginAtRuleGrammar:
			n := &node{kind: kindAtRule, text: string(data), prelude: renderPrelude(p.Values()), block: true}
			push(n)
			stack = append(stack, n)
		case css.QualifiedRuleGrammar:
			pending = append(pending, p.Values()...)
			pending = append(pending, css.Token{TokenType: css.CommaToken, Data: []byte(",")})
		case css.BeginRulesetGrammar:
			n := &node{kind: kindRuleset, selectors: renderSelectors(append(pending, p.Values()...))}
			pending = nil
			push(n)
			stack = append(stack, n)
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case css.DeclarationGrammar:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.decls = append(top.decls, declaration{property: string(data), value: renderValue(p.Values())})
			}
		case css.CustomPropertyGrammar:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				var value string
				if values := p.Values(); len(values) > 0 {
					value = strings.TrimSpace(string(values[0].Data))
				}
				top.decls = append(top.decls, declaration{property: string(data), value: value})
			}
		case css.TokenGrammar:
			// Bodies of unknown at-rules are kept verbatim.
			if len(stack) > 0 {
				stack[len(stack)-1].raw += string(data)
			}
		default:
		}
	}
}

type comment struct {
	offset int
	text   string
}

// nestedComments lists the comments inside braces in source order.
func nestedComments(src []byte) []comment {
	var comments []comment
	l := css.NewLexer(parse.NewInputBytes(src))
	offset, depth := 0, 0
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return comments
		case css.LeftBraceToken:
			depth++
		case css.RightBraceToken:
			depth--
		case css.CommentToken:
			if depth > 0 {
				comments = append(comments, comment{offset: offset, text: string(data)})
			}
		default:
		}
		offset += len(data)
	}
}

// renderValue joins declaration value tokens, spacing list separators and
// the '!' of priorities.
func renderValue(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		switch {
		case t.TokenType == css.CommaToken:
			b.WriteString(", ")
			continue
		case t.TokenType == css.DelimToken && string(t.Data) == "!":
			if b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
		}
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}

// renderPrelude joins at-rule prelude tokens, spacing separators and the
// colons of media features.
func renderPrelude(tokens []css.Token) string {
	var b strings.Builder
	depth := 0
	for _, t := range tokens {
		switch t.TokenType {
		case css.LeftParenthesisToken, css.FunctionToken:
			depth++
		case css.RightParenthesisToken:
			depth--
		case css.CommaToken:
			b.WriteString(", ")
			continue
		case css.ColonToken:
			if depth > 0 {
				b.WriteString(": ")
				continue
			}
		default:
		}
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}

// renderSelectors splits a selector list and spaces its combinators.
func renderSelectors(tokens []css.Token) []string {
	var selectors []string
	var b strings.Builder
	depth := 0

	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			selectors = append(selectors, s)
		}
		b.Reset()
	}

	for _, t := range tokens {
		switch t.TokenType {
		case css.LeftParenthesisToken, css.FunctionToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				flush()
				continue
			}
		case css.DelimToken:
			if depth == 0 && len(t.Data) == 1 && strings.ContainsRune(">+~", rune(t.Data[0])) {
				trimmed := strings.TrimRight(b.String(), " ")
				b.Reset()
				b.WriteString(trimmed)
				b.WriteString(" " + string(t.Data) + " ")
				continue
			}
		case css.WhitespaceToken:
			if strings.HasSuffix(b.String(), " ") {
				continue
			}
		default:
		}
		b.Write(t.Data)
	}
	flush()

	return selectors
}
