package eval

import (
	"strings"

	"github.com/arrshell/arrsh/internal/tree"
)

// compareNodes orders two nodes the way the language's ordering
// primitives do: numbers compare numerically, strings compare
// case-insensitively, and any other pairing (including a type
// mismatch) counts as equal.
func compareNodes(l, r *tree.Node) int {
	if l.Kind == tree.KindNum && r.Kind == tree.KindNum {
		switch {
		case l.NumVal < r.NumVal:
			return -1
		case l.NumVal > r.NumVal:
			return 1
		default:
			return 0
		}
	}
	if l.Kind == tree.KindString && r.Kind == tree.KindString {
		return strings.Compare(strings.ToLower(l.Str), strings.ToLower(r.Str))
	}
	return 0
}

// minmax picks the lesser or greater of l and r by compareNodes,
// defaulting to (l as min, r as max) on a tie.
func minmax(isMax bool, l, r *tree.Node) *tree.Node {
	var min, max *tree.Node
	switch {
	case compareNodes(l, r) < 0:
		min, max = l, r
	case compareNodes(l, r) > 0:
		min, max = r, l
	default:
		min, max = l, r
	}
	if isMax {
		return max
	}
	return min
}
