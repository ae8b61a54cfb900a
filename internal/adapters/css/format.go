package css

import "strings"

// render prints statements with one declaration per line and a blank line
// between statements.
func render(nodes []*node, indent string) []byte {
	var b strings.Builder
	writeNodes(&b, nodes, 0, indent)
	return []byte(b.String())
}

func writeNodes(b *strings.Builder, nodes []*node, depth int, indent string) {
	pad := strings.Repeat(indent, depth)

	for i, n := range nodes {
		if i > 0 {
			b.WriteByte('\n')
		}

		switch n.kind {
		case kindComment:
			b.WriteString(pad + n.text + "\n")
		case kindRuleset:
			b.WriteString(pad + strings.Join(n.selectors, ",\n"+pad) + " {\n")
			writeDecls(b, n.decls, pad+indent)
			b.WriteString(pad + "}\n")
		case kindAtRule:
			head := n.text
			if n.prelude != "" {
				head += " " + n.prelude
			}
			if !n.block {
				b.WriteString(pad + head + ";\n")
				continue
			}
			b.WriteString(pad + head + " {\n")
			writeDecls(b, n.decls, pad+indent)
			if len(n.decls) > 0 && len(n.children) > 0 {
				b.WriteByte('\n')
			}
			writeNodes(b, n.children, depth+1, indent)
			if raw := strings.TrimSpace(n.raw); raw != "" {
				b.WriteString(pad + indent + raw + "\n")
			}
			b.WriteString(pad + "}\n")
		}
	}
}

func writeDecls(b *strings.Builder, decls []declaration, pad string) {
	for _, d := range decls {
		if d.comment != "" {
			b.WriteString(pad + d.comment + "\n")
			continue
		}
		b.WriteString(pad + d.property + ": " + d.value + ";\n")
	}
}
