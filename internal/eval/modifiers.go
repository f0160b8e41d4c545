package eval

import (
	"fmt"
	"math"

	"github.com/arrshell/arrsh/internal/process"
	"github.com/arrshell/arrsh/internal/tree"
)

// numericMatrix is the shape of an Iterate operand once validated: a
// single positive iteration count, or an array of counts (which
// fans Iterate's result out into an array of one result per count).
type numericMatrix struct {
	isVector bool
	scalar   int
	vec      []numericMatrix
}

// numerifyVector validates an Iterate operand and converts it,
// rejecting anything that isn't an integral count or a (possibly
// nested) array of such counts.
func (c *ctx) numerifyVector(v *tree.Node) (numericMatrix, error) {
	switch {
	case v.Kind == tree.KindNum && v.NumVal > 0 && v.NumVal == math.Trunc(v.NumVal):
		return numericMatrix{scalar: int(v.NumVal)}, nil
	case v.Kind == tree.KindArray:
		vec := make([]numericMatrix, len(v.Elems))
		for i, e := range v.Elems {
			m, err := c.numerifyVector(e)
			if err != nil {
				return numericMatrix{}, err
			}
			vec[i] = m
		}
		return numericMatrix{isVector: true, vec: vec}, nil
	default:
		return numericMatrix{}, c.err(v.Location, "Invalid argument to iterate.",
			"Iterate expects an integral argument, a [possibly nested] array of such arguments, or a function which returns such an argument.")
	}
}

// modEach applies f at the rank(s) named by v: a single integer names
// the same rank on both sides; a 2-element array of integers names
// (left, right) independently.
func (c *ctx) modEach(f, v, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	cannedErr := func() error {
		return c.err(loc, "Rank expects integral numeric right argument.",
			fmt.Sprintf("The value given was:\n%s", show(v)))
	}
	if v.Kind == tree.KindNum && v.NumVal == math.Trunc(v.NumVal) {
		r := int(v.NumVal)
		return c.rankedFncall(f, larg, rarg, r, r, loc)
	}
	if v.Kind == tree.KindArray && len(v.Elems) == 2 {
		l, r := v.Elems[0], v.Elems[1]
		if l.Kind == tree.KindNum && l.NumVal == math.Trunc(l.NumVal) &&
			r.Kind == tree.KindNum && r.NumVal == math.Trunc(r.NumVal) {
			return c.rankedFncall(f, larg, rarg, int(l.NumVal), int(r.NumVal), loc)
		}
	}
	return nil, cannedErr()
}

// modReduce folds f across rarg left-to-right, seeded with its first
// element. A missing rarg skips realization entirely and calls f with
// no arguments at all; an empty rarg yields the empty array.
func (c *ctx) modReduce(f, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if rarg == nil {
		return c.callFunction(nil, f, nil, loc)
	}
	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(rarg, process.CaptureData)
	if err != nil {
		return nil, err
	}
	arr := tree.Arrayify(rv)
	if len(arr.Elems) == 0 {
		return nilarr(), nil
	}
	value := arr.Elems[0]
	for _, rhs := range arr.Elems[1:] {
		value, err = c.callFunction(value, f, rhs, loc)
		if err != nil {
			return nil, err
		}
	}
	return value, nil
}

// modScan is Reduce's running-total sibling: it returns every
// intermediate fold result instead of only the last.
func (c *ctx) modScan(f, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	arr := tree.Arrayify(rv)
	var results []*tree.Node
	for i, e := range arr.Elems {
		if i == 0 {
			results = append(results, e)
			continue
		}
		next, err := c.callFunction(results[len(results)-1], f, e, loc)
		if err != nil {
			return nil, err
		}
		results = append(results, next)
	}
	return tree.NewArray(results, loc), nil
}

// modWhere returns the indices of rarg's elements for which f (called
// monadically on each element) is truthy.
func (c *ctx) modWhere(f, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	arr := tree.Arrayify(rv)
	var res []*tree.Node
	for i, e := range arr.Elems {
		cv, err := c.callFunction(nil, f, e, loc)
		if err != nil {
			return nil, err
		}
		if isTruthy(cv) {
			res = append(res, tree.NewNum(float64(i), loc))
		}
	}
	return tree.NewArray(res, loc), nil
}

// modTable calls f against every (left, right) pair from the
// cross product of larg and rarg, returning a matrix of results.
func (c *ctx) modTable(f, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	lv, err := c.realize(unoptionize(larg), process.CaptureAll)
	if err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureAll)
	if err != nil {
		return nil, err
	}
	ls := tree.Arrayify(lv).Elems
	rs := tree.Arrayify(rv).Elems
	out := make([]*tree.Node, len(ls))
	for i, l := range ls {
		row := make([]*tree.Node, len(rs))
		for j, r := range rs {
			cv, err := c.callFunction(l, f, r, loc)
			if err != nil {
				return nil, err
			}
			row[j] = cv
		}
		out[i] = tree.NewArray(row, loc)
	}
	return tree.NewArray(out, loc), nil
}

// modSelfie calls f with its two arguments swapped, or duplicates a
// solitary argument onto both sides.
func (c *ctx) modSelfie(f, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if larg != nil {
		lv, err := c.realize(unoptionize(larg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		rv, err := c.realize(unoptionize(rarg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		return c.callFunction(rv, f, lv, loc)
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	return c.callFunction(rv, f, rv, loc)
}

// modIterate applies f to rarg repeatedly: times times (or, per
// element, if v is an array of counts), or until a fixed point is
// reached (v is the empty array).
func (c *ctx) modIterate(f, v, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	times, err := c.numerifyVector(v)
	if err != nil {
		return nil, err
	}
	isFixpoint := times.isVector && len(times.vec) == 0

	var l *tree.Node
	if larg != nil {
		if l, err = c.realize(larg, process.CaptureData); err != nil {
			return nil, err
		}
	}
	r, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}

	if isFixpoint {
		return c.fixpoint(f, l, r, loc)
	}
	return c.rankedFixpoint(f, l, r, times, loc)
}

// fixpointCap bounds how many times Iterate will retry toward a fixed
// point before giving up.
const fixpointCap = 32768

// fixpoint repeatedly applies f to v (with larg fixed) until the
// result stops changing by full structural equality, or the safety
// cap is reached.
func (c *ctx) fixpoint(f, larg, v *tree.Node, loc tree.Location) (*tree.Node, error) {
	cur := v
	for i := 0; i < fixpointCap; i++ {
		next, err := c.callFunction(larg, f, cur, loc)
		if err != nil {
			return nil, err
		}
		if tree.Equal(cur, next) {
			return next, nil
		}
		cur = next
	}
	return nil, c.err(loc, "Failed to find fixpoint.", "After iterating 2^15 times, no fixpoint was found.")
}

// rankedFixpoint applies f to rarg exactly times.scalar times (with
// larg fixed), or, when times is a vector, recurses per element and
// collects the results into an array.
func (c *ctx) rankedFixpoint(f, larg, rarg *tree.Node, times numericMatrix, loc tree.Location) (*tree.Node, error) {
	if !times.isVector {
		result := rarg
		for i := 0; i < times.scalar; i++ {
			next, err := c.callFunction(larg, f, result, loc)
			if err != nil {
				return nil, err
			}
			result = next
		}
		return result, nil
	}
	out := make([]*tree.Node, len(times.vec))
	for i, t := range times.vec {
		r, err := c.rankedFixpoint(f, larg, rarg, t, loc)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return tree.NewArray(out, rarg.Location), nil
}
