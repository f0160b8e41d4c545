package semantics

import (
	"testing"

	"github.com/arrshell/arrsh/internal/charset"
	"github.com/arrshell/arrsh/internal/env"
	"github.com/arrshell/arrsh/internal/tree"
)

func TestStricterIsFnPrimitiveIdent(t *testing.T) {
	e := env.New()
	if !StricterIsFn(tree.NewIdent("+", tree.Location{}), e) {
		t.Error("a primitive glyph ident should be StricterIsFn")
	}
	if StricterIsFn(tree.NewNum(1, tree.Location{}), e) {
		t.Error("a number literal should not be StricterIsFn")
	}
}

func TestStricterIsFnOperatorAlwaysTrue(t *testing.T) {
	e := env.New()
	op := tree.NewOperator(tree.NewIdent("+", tree.Location{}), charset.Reduce, nil, tree.Location{})
	if !StricterIsFn(op, e) {
		t.Error("an Operator node should always be StricterIsFn")
	}
}

func TestIsFnPartialApplicationIsLooserThanStricterIsFn(t *testing.T) {
	e := env.New()
	num := tree.NewNum(1, tree.Location{})
	partial := tree.NewApply(nil, num, nil, tree.Location{})
	if StricterIsFn(partial, e) {
		t.Error("a partial application around a non-function should not be StricterIsFn")
	}
	if !IsFn(partial, e) {
		t.Error("a one-sided-missing Apply should be IsFn regardless of its Fn")
	}
}

func TestIsFnBoundVariable(t *testing.T) {
	e := env.New()
	e.Set("double", tree.NewIdent("+", tree.Location{}))
	if !IsFn(tree.NewIdent("double", tree.Location{}), e) {
		t.Error("an ident bound to a function value should be IsFn")
	}

	e.Set("n", tree.NewNum(4, tree.Location{}))
	if IsFn(tree.NewIdent("n", tree.Location{}), e) {
		t.Error("an ident bound to a number should not be IsFn")
	}
}

func TestRespectFillReduceScanWhereNeverRespectFill(t *testing.T) {
	e := env.New()
	for _, glyph := range []string{charset.Reduce, charset.Scan, charset.Where} {
		op := tree.NewOperator(tree.NewIdent("+", tree.Location{}), glyph, nil, tree.Location{})
		if RespectFill(op, e) {
			t.Errorf("glyph %q should never respect fill", glyph)
		}
	}
}

func TestFillFromRightReduceScanWhereIterateAlwaysRight(t *testing.T) {
	e := env.New()
	for _, glyph := range []string{charset.Reduce, charset.Scan, charset.Where, charset.Iterate} {
		op := tree.NewOperator(tree.NewIdent("+", tree.Location{}), glyph, nil, tree.Location{})
		if !FillFromRight(op, e) {
			t.Errorf("glyph %q should always fill from the right", glyph)
		}
	}
}

func TestIntrinsicallyFnExcludesBarePrimitives(t *testing.T) {
	e := env.New()
	if IntrinsicallyFn(tree.NewIdent("+", tree.Location{}), e) {
		t.Error("a bare primitive glyph should not be intrinsically functional")
	}
	op := tree.NewOperator(tree.NewIdent("+", tree.Location{}), charset.Reduce, nil, tree.Location{})
	if !IntrinsicallyFn(op, e) {
		t.Error("a modifier-derived function should be intrinsically functional")
	}
	e.Set("agg", op)
	if !IntrinsicallyFn(tree.NewIdent("agg", tree.Location{}), e) {
		t.Error("a name bound to a function should be intrinsically functional")
	}
}

func TestIsLazyDetectsPipePrimitiveAnywhere(t *testing.T) {
	if IsLazy(tree.NewIdent("x", tree.Location{})) {
		t.Error("a plain ident should not be lazy")
	}
	pipeIdent := tree.NewIdent(charset.NamedPipe, tree.Location{})
	if !IsLazy(pipeIdent) {
		t.Error("the pipe primitive itself should be lazy")
	}

	nested := tree.NewApply(tree.NewNum(1, tree.Location{}), tree.NewIdent("+", tree.Location{}), pipeIdent, tree.Location{})
	if !IsLazy(nested) {
		t.Error("an Apply with pipe anywhere inside should be lazy")
	}
}
