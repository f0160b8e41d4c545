// Package semantics holds the environment-aware predicates shared by
// the parser and the evaluator: whether a subtree behaves as a
// function, whether a solitary argument should fill the left or right
// slot, and whether a subtree's evaluation can have side effects that
// must be deferred (lazy). These cut across parsing and evaluation, so
// they get their own package rather than living inside either.
package semantics

import (
	"github.com/arrshell/arrsh/internal/charset"
	"github.com/arrshell/arrsh/internal/env"
	"github.com/arrshell/arrsh/internal/tree"
)

// RespectFill reports whether a solitary argument to fn stays on the
// side where the caller wrote it (true), rather than being moved to
// the side FillFromRight names (false). Reduce/Scan/Where never respect fill (their
// right-hand operand is consumed as configuration, not an argument).
func RespectFill(n *tree.Node, e *env.Env) bool {
	switch n.Kind {
	case tree.KindOperator:
		switch n.Op {
		case charset.Reduce, charset.Scan, charset.Where:
			return false
		}
		return RespectFill(n.Fn, e)
	case tree.KindApply:
		if n.Right != nil && IsFn(n.Right, e) {
			return RespectFill(n.Right, e)
		}
		return false
	case tree.KindIdent:
		if id, ok := e.Get(n.Str); ok {
			return RespectFill(id, e)
		}
		return env.IsPathCommand(n.Str)
	default:
		return false
	}
}

// FillFromRight reports whether a solitary argument fills the right
// slot (true) or the left slot (false).
func FillFromRight(n *tree.Node, e *env.Env) bool {
	switch n.Kind {
	case tree.KindOperator:
		switch n.Op {
		case charset.Reduce, charset.Scan, charset.Where, charset.Iterate:
			return true
		}
		return FillFromRight(n.Fn, e)
	case tree.KindApply:
		if n.Right != nil && IsFn(n.Right, e) {
			return FillFromRight(n.Right, e)
		}
		return !(n.Right != nil && n.Left == nil)
	case tree.KindIdent:
		if id, ok := e.Get(n.Str); ok {
			return FillFromRight(id, e)
		}
		return true
	default:
		return true
	}
}

// IsFn reports whether n can be called as a function: a recognized
// train/operator/primitive/bound-function/PATH-command, or a partial
// application missing one side.
func IsFn(n *tree.Node, e *env.Env) bool {
	if StricterIsFn(n, e) {
		return true
	}
	if n.Kind == tree.KindApply {
		return n.Left == nil || n.Right == nil
	}
	return false
}

// StricterIsFn reports whether n is unambiguously a function: an
// Operator, a known primitive/bound-function/PATH-command Ident, or a
// train (full application with a functional right side).
func StricterIsFn(n *tree.Node, e *env.Env) bool {
	switch n.Kind {
	case tree.KindOperator:
		return true
	case tree.KindIdent:
		if charset.IsKnownIdent(n.Str) {
			return true
		}
		if v, ok := e.Get(n.Str); ok {
			return IsFn(v, e)
		}
		return env.IsPathCommand(n.Str)
	}
	return isTrain(n, e)
}

// IntrinsicallyFn reports whether n is function-shaped on its own
// terms: a modifier-derived function, a train, a PATH command, or a
// name bound to one of those. A bare primitive glyph is NOT intrinsic
// — it acts as a function only at a call site, so a run of functions
// never extends through one (everything after it is its argument).
func IntrinsicallyFn(n *tree.Node, e *env.Env) bool {
	switch n.Kind {
	case tree.KindOperator:
		return true
	case tree.KindIdent:
		if charset.IsKnownIdent(n.Str) {
			return false
		}
		if v, ok := e.Get(n.Str); ok {
			return IsFn(v, e)
		}
		return env.IsPathCommand(n.Str)
	}
	return isTrain(n, e)
}

func isTrain(n *tree.Node, e *env.Env) bool {
	if n.Kind != tree.KindApply {
		return false
	}
	if n.Left == nil && n.Right == nil {
		return isTrain(n.Fn, e)
	}
	return n.Right != nil && IsFn(n.Right, e)
}

// IsLazy reports whether n's structure contains a "pipe" primitive
// anywhere — such a subtree's arguments must not be evaluated eagerly,
// since pipe constructs a Command node lazily rather than producing a
// value. A purely structural check that needs no environment, unlike
// IsFn/RespectFill/FillFromRight; the evaluator applies it to the
// resolved tree.
func IsLazy(n *tree.Node) bool {
	switch n.Kind {
	case tree.KindOperator:
		return IsLazy(n.Fn)
	case tree.KindIdent:
		return n.Str == charset.NamedPipe
	case tree.KindApply:
		return (n.Left != nil && IsLazy(n.Left)) || IsLazy(n.Fn) || (n.Right != nil && IsLazy(n.Right))
	default:
		return false
	}
}
