package eval

import (
	"fmt"

	"github.com/arrshell/arrsh/internal/tree"
)

// shapeOf reports the dimensions of a (possibly ragged) array: an
// Array node's first dimension is its own length, prepended to the
// union of its elements' shapes; anything else has an empty shape.
func shapeOf(n *tree.Node) []int {
	if n.Kind != tree.KindArray {
		return nil
	}
	var shape []int
	has := false
	for _, e := range n.Elems {
		s := shapeOf(e)
		if !has {
			shape = s
			has = true
		} else {
			shape = shapeUnion(shape, s)
		}
	}
	if !has {
		shape = []int{0}
	}
	return append([]int{len(n.Elems)}, shape...)
}

// shapeUnion merges two shapes for a ragged array's elements: the
// longer shape is kept, with any dimension where the shorter shape
// names a larger size bumped up to match.
func shapeUnion(l, r []int) []int {
	max, min := l, r
	if len(r) > len(l) {
		max, min = r, l
	}
	out := append([]int(nil), max...)
	for i := range min {
		if min[i] > out[i] {
			out[i] = min[i]
		}
	}
	return out
}

// reshape builds a new nested array of the given sizes, cycling
// through vals (wrapping back to the start once exhausted). A
// negative size at some depth reverses the insertion order of that
// level's children.
func reshape(vals []*tree.Node, vind *int, sizes []int, depth int, loc tree.Location) *tree.Node {
	if len(vals) < 1 {
		return tree.NewArray(nil, loc)
	}
	if depth >= len(sizes) {
		v := vals[*vind]
		*vind++
		if *vind >= len(vals) {
			*vind = 0
		}
		return v
	}
	size := sizes[depth]
	isRev := size < 0
	n := size
	if isRev {
		n = -size
	}
	result := make([]*tree.Node, 0, n)
	for i := 0; i < n; i++ {
		v := reshape(vals, vind, sizes, depth+1, loc)
		if isRev {
			result = append([]*tree.Node{v}, result...)
		} else {
			result = append(result, v)
		}
	}
	return tree.NewArray(result, loc)
}

// setVal writes val into arr at the path named by indices, descending
// one Array layer per index; the final (empty-indices) case replaces
// *arr wholesale.
func (c *ctx) setVal(arr **tree.Node, indices []int, val *tree.Node) error {
	if len(indices) < 1 {
		*arr = val
		return nil
	}
	if (*arr).Kind != tree.KindArray {
		return c.err((*arr).Location, "Expected an array to index into but found a value.",
			fmt.Sprintf("The value was:\n%s", show(*arr)))
	}
	idx := indices[0]
	return c.setVal(&(*arr).Elems[idx], indices[1:], val)
}

// transposify walks source's full nesting, and for each leaf,
// computes its destination index by reading thisIndex at each axis
// position, then writes the leaf into dest at that index.
func (c *ctx) transposify(dest **tree.Node, source *tree.Node, axes []int, thisIndex []int) error {
	if source.Kind == tree.KindArray {
		idx := append(append([]int(nil), thisIndex...), 0)
		for _, v := range source.Elems {
			if err := c.transposify(dest, v, axes, idx); err != nil {
				return err
			}
			idx[len(idx)-1]++
		}
		return nil
	}
	resultIndex := make([]int, 0, len(axes))
	for _, a := range axes {
		if a >= len(thisIndex) {
			return c.err(source.Location, "Malformed shape.",
				fmt.Sprintf("Argument to transpose is malformed for transposition.  The value is:\n%s", show(source)))
		}
		resultIndex = append(resultIndex, thisIndex[a])
	}
	return c.setVal(dest, resultIndex, source)
}

// transpose reorders node's axes per axes (or, if nil, the reverse of
// its natural axis order — ordinary matrix transpose), building an
// empty template of the reordered shape and filling it elementwise.
func (c *ctx) transpose(axes []int, node *tree.Node) (*tree.Node, error) {
	shape := shapeOf(node)
	if axes == nil {
		axes = make([]int, len(shape))
		for i := range shape {
			axes[i] = len(shape) - 1 - i
		}
	}
	reordered := make([]int, len(axes))
	for i, a := range axes {
		if a >= len(shape) {
			return nil, c.err(node.Location, "Shape out of bounds.",
				"Transposition axes lie outside the boundaries of the shape of the given argument.")
		}
		reordered[i] = shape[a]
	}
	total := 0
	if len(reordered) > 0 {
		total = 1
		for _, s := range reordered {
			total *= s
		}
	}
	template := make([]*tree.Node, total)
	for i := range template {
		template[i] = tree.NewNum(0, node.Location)
	}
	vind := 0
	res := reshape(template, &vind, reordered, 0, node.Location)
	if err := c.transposify(&res, node, axes, nil); err != nil {
		return nil, err
	}
	return res, nil
}
