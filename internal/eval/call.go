package eval

import (
	"fmt"

	"github.com/arrshell/arrsh/internal/charset"
	"github.com/arrshell/arrsh/internal/semantics"
	"github.com/arrshell/arrsh/internal/tree"
)

// isCommand reports whether f names something that isn't one of the
// language's own primitives — and so, if it's ever applied as a bare
// function, should become a Command node rather than dispatch through
// scalarFunction.
func isCommand(f string) bool {
	return !charset.IsKnownIdent(f)
}

// callFunction is the single entry point evalApply funnels every
// application through. It first applies the fill rule: unless fn
// opts out via RespectFill, a solitary argument slides to whichever
// side FillFromRight names, regardless of which side the caller
// happened to place it on. It then dispatches on fn's own shape:
// Ident names a primitive or, failing that, an external command
// (via rankedFncall); Operator applies one of the seven modifiers;
// Apply forms a train.
func (c *ctx) callFunction(larg, fn, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	larg, rarg = c.applyFillRule(fn, larg, rarg)

	switch fn.Kind {
	case tree.KindIdent:
		isDyad := larg != nil && rarg != nil
		lr, rr := rankOfIdentFn(fn.Str, isDyad)
		return c.rankedFncall(fn, larg, rarg, lr, rr, loc)

	case tree.KindOperator:
		return c.callOperator(fn, larg, rarg, loc)

	case tree.KindApply:
		return c.callTrain(fn, larg, rarg, loc)

	default:
		return nil, c.err(loc, "Attempting to call non-callable.",
			fmt.Sprintf("The value attempting to be called was:\n%s", show(fn)))
	}
}

// applyFillRule decides whether a solitary argument should move to
// the opposite slot. When fn doesn't respect fill (RespectFill
// false), a caller who supplied only one side gets it moved onto
// whichever side FillFromRight names; a caller who supplied both (or
// neither) sides is left untouched either way.
func (c *ctx) applyFillRule(fn, larg, rarg *tree.Node) (*tree.Node, *tree.Node) {
	if semantics.RespectFill(fn, c.env) {
		return larg, rarg
	}
	if semantics.FillFromRight(fn, c.env) {
		if rarg == nil {
			return nil, larg
		}
		return larg, rarg
	}
	if larg == nil {
		return rarg, nil
	}
	return larg, rarg
}

// callTrain evaluates a train: fn is itself an Apply(ls, ff, rs).
//   - If both ls and rs are present and functional, this is a fork:
//     both sides are called against the same (larg, rarg), and their
//     results become the two arguments to ff.
//   - If ls is absent and rs is functional, this composes: rs is
//     called first against (larg, rarg), and its result becomes ff's
//     sole (right) argument.
//   - Otherwise ff is simply called with whichever of ls/larg (and
//     rs/rarg) is present, the train's own fixed side overriding the
//     caller's argument on that side.
func (c *ctx) callTrain(fn, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	ls, ff, rs := fn.Left, fn.Fn, fn.Right

	lsFn := ls != nil && semantics.IsFn(ls, c.env)
	rsFn := rs != nil && semantics.IsFn(rs, c.env)

	if lsFn && rsFn {
		lv, err := c.callFunction(larg, ls, rarg, ls.Location)
		if err != nil {
			return nil, err
		}
		rv, err := c.callFunction(larg, rs, rarg, rs.Location)
		if err != nil {
			return nil, err
		}
		return c.callFunction(lv, ff, rv, loc)
	}

	if ls == nil && rsFn {
		v, err := c.callFunction(larg, rs, rarg, rs.Location)
		if err != nil {
			return nil, err
		}
		return c.callFunction(nil, ff, v, loc)
	}

	effLeft := ls
	if effLeft == nil {
		effLeft = larg
	}
	effRight := rs
	if effRight == nil {
		effRight = rarg
	}
	return c.callFunction(effLeft, ff, effRight, loc)
}

// callOperator dispatches the seven modifier glyphs. If the
// modifier's operand is itself a function, it's called against the
// current (larg, rarg) first, and its result becomes the operand
// every modifier below actually sees — this is how e.g. a rank or an
// iteration count can be computed dynamically from the arguments
// rather than written as a literal.
func (c *ctx) callOperator(op, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	v := op.Operand
	if semantics.IsFn(v, c.env) {
		cv, err := c.callFunction(larg, v, rarg, loc)
		if err != nil {
			return nil, err
		}
		v = cv
	}
	f := op.Fn

	switch op.Op {
	case charset.Each:
		return c.modEach(f, v, larg, rarg, loc)
	case charset.Reduce:
		return c.modReduce(f, larg, rarg, loc)
	case charset.Scan:
		return c.modScan(f, larg, rarg, loc)
	case charset.Where:
		return c.modWhere(f, larg, rarg, loc)
	case charset.Iterate:
		return c.modIterate(f, v, larg, rarg, loc)
	case charset.Table:
		return c.modTable(f, larg, rarg, loc)
	case charset.Selfie:
		return c.modSelfie(f, larg, rarg, loc)
	default:
		return nil, c.err(loc, fmt.Sprintf("Unknown operator %s.", op.Op), "This is an internal error.")
	}
}

// rankedFncall normalizes fun's declared (lrank, rrank) against each
// present argument's nesting depth exactly once — a negative
// declared rank becomes fathometer(arg) - rank - 1, a concrete target
// depth — then recurses, peeling one array layer per side per call
// (decrementing the already-normalized rank by 1) until both sides
// reach rank 0, at which point fun is finally applied: scalarFunction
// if fun is a named primitive, callFunction (a generic dispatch) for
// anything else, since Each can apply a rank to an arbitrary train or
// operator, not just a primitive name.
func (c *ctx) rankedFncall(fun, larg, rarg *tree.Node, lrank, rrank int, loc tree.Location) (*tree.Node, error) {
	if lrank < 0 {
		lrank = tree.Fathometer(unoptionize(larg)) - lrank - 1
	}
	if rrank < 0 {
		rrank = tree.Fathometer(unoptionize(rarg)) - rrank - 1
	}

	switch {
	case lrank == 0 && rrank == 0:
		if fun.Kind == tree.KindIdent {
			return c.scalarFunction(fun.Str, larg, rarg, loc)
		}
		return c.callFunction(larg, fun, rarg, loc)

	case lrank == 0:
		if rarg == nil || rarg.Kind != tree.KindArray {
			return nil, c.err(loc, "Attempting to apply rankwise to nonarray.",
				fmt.Sprintf("The right rank necessitated an array, but there was instead:\n%s", show(unoptionize(rarg))))
		}
		out := make([]*tree.Node, len(rarg.Elems))
		for i, v := range rarg.Elems {
			r, err := c.rankedFncall(fun, larg, v, lrank, rrank-1, loc)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return tree.NewArray(out, loc), nil

	case rrank == 0:
		if larg == nil || larg.Kind != tree.KindArray {
			return nil, c.err(loc, "Attempting to apply rankwise to nonarray.",
				fmt.Sprintf("The left rank necessitated an array, but there was instead:\n%s", show(unoptionize(larg))))
		}
		out := make([]*tree.Node, len(larg.Elems))
		for i, v := range larg.Elems {
			r, err := c.rankedFncall(fun, v, rarg, lrank-1, rrank, loc)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return tree.NewArray(out, loc), nil

	default:
		arrErr := func() error {
			return c.err(loc, "Attempting to apply rankwise to nonarray.",
				fmt.Sprintf("The left and right ranks necessitated arrays, but the left hand side was:\n%s\nAnd the right hand side was:\n%s",
					show(unoptionize(larg)), show(unoptionize(rarg))))
		}

		if larg == nil {
			if rarg == nil || rarg.Kind != tree.KindArray {
				return nil, arrErr()
			}
			out := make([]*tree.Node, len(rarg.Elems))
			for i, v := range rarg.Elems {
				r, err := c.rankedFncall(fun, nil, v, lrank-1, rrank-1, loc)
				if err != nil {
					return nil, err
				}
				out[i] = r
			}
			return tree.NewArray(out, loc), nil
		}

		if larg.Kind != tree.KindArray || rarg == nil || rarg.Kind != tree.KindArray {
			return nil, arrErr()
		}
		if len(larg.Elems) != len(rarg.Elems) {
			return nil, c.err(loc, "Length mismatch.",
				fmt.Sprintf("While applying rankwise, the left hand side was:\n%s\nBut the right hand side was:\n%s", show(larg), show(rarg)))
		}
		out := make([]*tree.Node, len(larg.Elems))
		for i := range larg.Elems {
			r, err := c.rankedFncall(fun, larg.Elems[i], rarg.Elems[i], lrank-1, rrank-1, loc)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return tree.NewArray(out, loc), nil
	}
}

// rankOfIdentFn returns the declared (left, right) ranks for the
// identifier f given the call's arity: bare commands and the handful
// of primitives that want their whole left argument at once (cd,
// exit, pipe, list, csv, json) peel every layer on the left but not
// the right; the structural primitives that act on a whole array (#,
// ",", @) and the two tacks are rank 0 on both sides; [, :, and . take
// their right side whole; the ordering primitives (< > & ^) and iota
// are rank 0 only in the arity where they have a genuinely scalar
// meaning; everything else, including ordinary arithmetic, is
// unranked (peels every layer) on both sides.
func rankOfIdentFn(f string, isDyad bool) (int, int) {
	switch {
	case isCommand(f) || f == charset.NamedCd || f == charset.NamedExit ||
		f == charset.NamedPipe || f == charset.NamedList || f == charset.NamedCSV || f == charset.NamedJSON:
		return -1, 0
	case f == charset.ShapeLength || f == charset.Concat || f == charset.Transpose:
		return 0, 0
	case f == charset.RTack || f == charset.LTack:
		return 0, 0
	case f == charset.Index || f == charset.Take || f == charset.Rotate:
		return -1, 0
	case isDyad && f == charset.Iota:
		return 0, 0
	case !isDyad && (f == charset.Ascending || f == charset.Descending || f == charset.MinFirst || f == charset.MaxLast):
		return 0, 0
	default:
		return -1, -1
	}
}
