// Package resolver substitutes bound identifiers into a parsed tree
// ahead of evaluation. A bare identifier is left untouched when it
// names a language primitive or an executable found on PATH — both
// are resolved lazily, at call time, rather than here.
package resolver

import (
	"fmt"

	"github.com/arrshell/arrsh/internal/charset"
	"github.com/arrshell/arrsh/internal/env"
	"github.com/arrshell/arrsh/internal/tree"
)

// UnknownIdentifierError reports a bare identifier that names neither
// a bound variable, a language primitive, nor a PATH executable.
type UnknownIdentifierError struct {
	Name     string
	Location tree.Location
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("Unknown identifier %s.", e.Name)
}

// Resolve substitutes every free Ident in n using e, returning a new
// tree with Assign/AliasAssign names left intact (the name itself is
// never looked up — only its value subtree is resolved).
func Resolve(n *tree.Node, e *env.Env) (*tree.Node, error) {
	if n == nil {
		return nil, nil
	}

	switch n.Kind {
	case tree.KindIdent:
		if charset.IsKnownIdent(n.Str) || env.IsPathCommand(n.Str) {
			return n, nil
		}
		if v, ok := e.Get(n.Str); ok {
			return v, nil
		}
		return nil, &UnknownIdentifierError{Name: n.Str, Location: n.Location}

	case tree.KindNum, tree.KindString, tree.KindSymbol, tree.KindSymbolList:
		return n, nil

	case tree.KindAssign:
		val, err := Resolve(n.Value, e)
		if err != nil {
			return nil, err
		}
		return tree.NewAssign(n.Str, val, n.Location), nil

	case tree.KindAliasAssign:
		val, err := Resolve(n.Value, e)
		if err != nil {
			return nil, err
		}
		return tree.NewAliasAssign(n.Str, val, n.Location), nil

	case tree.KindApply:
		left, err := Resolve(n.Left, e)
		if err != nil {
			return nil, err
		}
		fn, err := Resolve(n.Fn, e)
		if err != nil {
			return nil, err
		}
		right, err := Resolve(n.Right, e)
		if err != nil {
			return nil, err
		}
		return tree.NewApply(left, fn, right, n.Location), nil

	case tree.KindArray:
		elems := make([]*tree.Node, len(n.Elems))
		for i, el := range n.Elems {
			r, err := Resolve(el, e)
			if err != nil {
				return nil, err
			}
			elems[i] = r
		}
		return tree.NewArray(elems, n.Location), nil

	case tree.KindOperator:
		fn, err := Resolve(n.Fn, e)
		if err != nil {
			return nil, err
		}
		operand, err := Resolve(n.Operand, e)
		if err != nil {
			return nil, err
		}
		return tree.NewOperator(fn, n.Op, operand, n.Location), nil

	case tree.KindCommand:
		args := make([]*tree.Node, len(n.Args))
		for i, a := range n.Args {
			r, err := Resolve(a, e)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		stdin, err := Resolve(n.Stdin, e)
		if err != nil {
			return nil, err
		}
		return tree.NewCommand(n.Name, args, stdin, n.Redir, n.Location), nil

	default:
		return n, nil
	}
}
