package css

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
)

const remPixels = 16

var widthFeature = regexp.MustCompile(`^(?:only\s+)?(?:screen\s+and\s+)?\((min|max)-width:\s*([\d.]+)(px|em|rem)?\)$`)

// groupMedia merges top-level @media blocks with identical queries and moves
// them after every other statement. Min-width queries come first in ascending
// order, then max-width queries in descending order, then the rest in order of
// first appearance.
func groupMedia(nodes []*node) []*node {
	var plain []*node
	var groups []*node
	byQuery := make(map[string]*node)

	for _, n := range nodes {
		if !n.isMedia() {
			plain = append(plain, n)
			continue
		}
		if g, ok := byQuery[n.prelude]; ok {
			g.children = append(g.children, n.children...)
			g.decls = append(g.decls, n.decls...)
			continue
		}
		g := &node{
			kind:     n.kind,
			text:     n.text,
			prelude:  n.prelude,
			block:    true,
			decls:    slices.Clone(n.decls),
			children: slices.Clone(n.children),
		}
		byQuery[n.prelude] = g
		groups = append(groups, g)
	}

	slices.SortStableFunc(groups, compareMedia)

	return append(plain, groups...)
}

type mediaClass uint8

const (
	mediaMinWidth mediaClass = iota
	mediaMaxWidth
	mediaOther
)

func classify(prelude string) (mediaClass, float64) {
	m := widthFeature.FindStringSubmatch(prelude)
	if m == nil {
		return mediaOther, 0
	}
	width, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return mediaOther, 0
	}
	if m[3] == "em" || m[3] == "rem" {
		width *= remPixels
	}
	if m[1] == "min" {
		return mediaMinWidth, width
	}
	return mediaMaxWidth, width
}

func compareMedia(a, b *node) int {
	classA, widthA := classify(a.prelude)
	classB, widthB := classify(b.prelude)
	if c := cmp.Compare(classA, classB); c != 0 {
		return c
	}
	switch classA {
	case mediaMinWidth:
		return cmp.Compare(widthA, widthB)
	case mediaMaxWidth:
		return cmp.Compare(widthB, widthA)
	default:
		return 0
	}
}
