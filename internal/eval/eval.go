// Package eval evaluates a resolved value tree: dispatching primitive
// glyphs and named operators, forming trains out of Apply nodes,
// applying the seven modifier glyphs, and lazily synthesizing Command
// nodes for anything that isn't a recognized primitive. Actually
// running those Command nodes is internal/process's job; this package
// only ever calls process.Realize, never os/exec directly.
package eval

import (
	"github.com/arrshell/arrsh/internal/env"
	"github.com/arrshell/arrsh/internal/errors"
	"github.com/arrshell/arrsh/internal/lexer"
	"github.com/arrshell/arrsh/internal/parser"
	"github.com/arrshell/arrsh/internal/printer"
	"github.com/arrshell/arrsh/internal/process"
	"github.com/arrshell/arrsh/internal/resolver"
	"github.com/arrshell/arrsh/internal/semantics"
	"github.com/arrshell/arrsh/internal/tree"
)

// FailExternError is raised in place of a side effect (cd, exit, a
// pipe redirect, or synthesizing a Command to run) when the caller is
// previewing a line rather than actually executing it — script mode
// first evaluates each line this way and, when the preview is refused,
// evaluates that same line again with side effects enabled.
type FailExternError struct {
	Location tree.Location
}

func (e *FailExternError) Error() string {
	return "this line has a side effect that a preview does not run"
}

// ctx threads the state a single evaluation needs: the binding table,
// the line's source text and originating file (for diagnostics), and
// whether side effects are currently disallowed.
type ctx struct {
	env        *env.Env
	source     string
	file       string
	failExtern bool
}

func (c *ctx) err(loc tree.Location, message, note string) error {
	pos := lexer.Position{Line: 1, Column: loc.Col + 1}
	return errors.NewCompilerErrorSpan(pos, loc.Len, message, note, c.source, c.file)
}

// realize wraps process.Realize, translating any failure into a
// located diagnostic. Plumbing failures (pipe I/O, spawn, wait,
// missing exit code) keep their [INTERNAL] tag in the message, with
// the underlying error as the trace note; anything else (a bad
// process argument) reports as an ordinary user-facing error.
func (c *ctx) realize(n *tree.Node, mode process.CaptureMode) (*tree.Node, error) {
	v, err := process.Realize(n, mode)
	if err != nil {
		if ie, ok := err.(*process.InternalError); ok {
			note := "Trace:\n[nil]"
			if ie.Err != nil {
				note = "Trace:\n" + ie.Err.Error()
			}
			return nil, c.err(n.Location, ie.Error(), note)
		}
		return nil, c.err(n.Location, "Failed to run external command.", err.Error())
	}
	return v, nil
}

// nilarr is the value an absent argument slot stands in for: an empty
// array at the origin.
func nilarr() *tree.Node {
	return tree.NewArray(nil, tree.Location{})
}

// unoptionize substitutes nilarr() for a missing (nil) argument, so
// the rest of this package always has a non-nil Node to dereference.
func unoptionize(n *tree.Node) *tree.Node {
	if n == nil {
		return nilarr()
	}
	return n
}

// isTruthy reports whether n counts as true when used as a condition:
// every value is truthy except the number 0.
func isTruthy(n *tree.Node) bool {
	return !(n.Kind == tree.KindNum && n.NumVal == 0)
}

// show renders n for inclusion in a diagnostic message, using the
// full boxed-array display so a nested value's shape is visible
// rather than just its outermost kind.
func show(n *tree.Node) string {
	return printer.Display(n)
}

// EvalLine resolves and evaluates a single tokenized line against e,
// returning the realized result. failExtern gates side effects (cd,
// exit, pipe, and bare-command synthesis) behind a FailExternError,
// for callers previewing a script before committing to running it.
func EvalLine(toks []lexer.Token, source, file string, e *env.Env, failExtern bool) (*tree.Node, error) {
	n, err := resolveLine(toks, source, file, e)
	if err != nil {
		return nil, err
	}
	c := &ctx{env: e, source: source, file: file, failExtern: failExtern}
	evaluated, err := c.evalCommand(n)
	if err != nil {
		return nil, err
	}
	return c.realize(unoptionize(evaluated), process.CaptureNone)
}

// resolveLine parses (already-tokenized by the caller) and resolves a
// line.
func resolveLine(toks []lexer.Token, source, file string, e *env.Env) (*tree.Node, error) {
	n, err := parser.ParseCommands(toks, source, file, e)
	if err != nil {
		return nil, err
	}
	r, err := resolver.Resolve(n, e)
	if err != nil {
		if unknown, ok := err.(*resolver.UnknownIdentifierError); ok {
			pos := lexer.Position{Line: 1, Column: unknown.Location.Col + 1}
			return nil, errors.NewCompilerErrorSpan(pos, unknown.Location.Len,
				"Unknown identifier "+unknown.Name+".",
				"This identifier is neither bound in the environment, a primitive, nor an executable on PATH.",
				source, file)
		}
		return nil, err
	}
	return r, nil
}

// evalCommand is the per-node recursive evaluator: atoms and
// already-realized Commands pass through, Arrays recurse elementwise,
// Assign/AliasAssign bind into the environment (unless failExtern is
// set), and Apply/Operator dispatch into callFunction/callOperator.
func (c *ctx) evalCommand(n *tree.Node) (*tree.Node, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case tree.KindNum, tree.KindString, tree.KindSymbol, tree.KindCommand, tree.KindIdent:
		return n, nil

	case tree.KindArray:
		out := make([]*tree.Node, len(n.Elems))
		for i, e := range n.Elems {
			v, err := c.evalCommand(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return tree.NewArray(out, n.Location), nil

	case tree.KindOperator:
		operand := n.Operand
		if operand != nil && !semantics.IsFn(n.Operand, c.env) {
			v, err := c.evalCommand(n.Operand)
			if err != nil {
				return nil, err
			}
			operand = v
		}
		return tree.NewOperator(n.Fn, n.Op, operand, n.Location), nil

	case tree.KindApply:
		return c.evalApply(n)

	case tree.KindAssign:
		val, err := c.evalCommand(n.Value)
		if err != nil {
			return nil, err
		}
		if c.failExtern {
			return nil, &FailExternError{Location: n.Location}
		}
		c.env.Set(n.Str, val)
		return val, nil

	case tree.KindAliasAssign:
		if c.failExtern {
			return nil, &FailExternError{Location: n.Location}
		}
		c.env.Set(n.Str, n.Value)
		return n.Value, nil

	default:
		return n, nil
	}
}

// evalApply evaluates an Apply(left, fn, right) node. Left/right are
// left unevaluated when fn's structure is lazy (contains "pipe"
// anywhere) — pipe itself decides when its arguments get realized. The
// fn subtree gets one special case: if it is itself an Apply whose
// right side is already functional, it's a fully-formed train and is
// passed to callFunction as-is rather than recursed into again (doing
// so would evaluate the train's own arguments a second time).
func (c *ctx) evalApply(n *tree.Node) (*tree.Node, error) {
	lazy := semantics.IsLazy(n.Fn)

	var l *tree.Node
	var err error
	if n.Left != nil {
		if lazy {
			l = n.Left
		} else if l, err = c.evalCommand(n.Left); err != nil {
			return nil, err
		}
	}

	var f *tree.Node
	if n.Fn.Kind == tree.KindApply && n.Fn.Right != nil && semantics.IsFn(n.Fn.Right, c.env) {
		f = n.Fn
	} else if n.Fn.Kind == tree.KindApply {
		var fl, ff, fr *tree.Node
		if n.Fn.Left != nil {
			if fl, err = c.evalCommand(n.Fn.Left); err != nil {
				return nil, err
			}
		}
		if ff, err = c.evalCommand(n.Fn.Fn); err != nil {
			return nil, err
		}
		if n.Fn.Right != nil {
			if fr, err = c.evalCommand(n.Fn.Right); err != nil {
				return nil, err
			}
		}
		f = tree.NewApply(fl, ff, fr, n.Fn.Location)
	} else {
		if f, err = c.evalCommand(n.Fn); err != nil {
			return nil, err
		}
	}

	var r *tree.Node
	if n.Right != nil {
		if lazy {
			r = n.Right
		} else if r, err = c.evalCommand(n.Right); err != nil {
			return nil, err
		}
	}

	return c.callFunction(l, f, r, n.Location)
}
