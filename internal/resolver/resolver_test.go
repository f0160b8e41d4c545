package resolver

import (
	"testing"

	"github.com/arrshell/arrsh/internal/env"
	"github.com/arrshell/arrsh/internal/tree"
)

func TestResolveNil(t *testing.T) {
	n, err := Resolve(nil, env.New())
	if err != nil || n != nil {
		t.Errorf("Resolve(nil) = (%v, %v), want (nil, nil)", n, err)
	}
}

func TestResolveLiteralsPassThrough(t *testing.T) {
	e := env.New()
	num := tree.NewNum(3, tree.Location{})
	got, err := Resolve(num, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != num {
		t.Errorf("Resolve(literal) returned a different node")
	}
}

func TestResolveBoundIdent(t *testing.T) {
	e := env.New()
	e.Set("x", tree.NewNum(7, tree.Location{}))
	got, err := Resolve(tree.NewIdent("x", tree.Location{}), e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != tree.KindNum || got.NumVal != 7 {
		t.Errorf("got %+v, want Num(7)", got)
	}
}

func TestResolveKnownPrimitiveIdentUnchanged(t *testing.T) {
	e := env.New()
	n := tree.NewIdent("+", tree.Location{})
	got, err := Resolve(n, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != n {
		t.Errorf("Resolve(primitive ident) should return the same node unresolved")
	}
}

func TestResolveUnknownIdentIsAnError(t *testing.T) {
	e := env.New()
	_, err := Resolve(tree.NewIdent("not_a_real_command_xyz123", tree.Location{}), e)
	if err == nil {
		t.Fatal("expected an unknown-identifier error")
	}
	if _, ok := err.(*UnknownIdentifierError); !ok {
		t.Errorf("got error of type %T, want *UnknownIdentifierError", err)
	}
}

func TestResolveAssignKeepsNameResolvesValue(t *testing.T) {
	e := env.New()
	e.Set("y", tree.NewNum(9, tree.Location{}))
	n := tree.NewAssign("z", tree.NewIdent("y", tree.Location{}), tree.Location{})
	got, err := Resolve(n, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != tree.KindAssign || got.Str != "z" {
		t.Fatalf("got %+v, want Assign(z, ...)", got)
	}
	if got.Value.Kind != tree.KindNum || got.Value.NumVal != 9 {
		t.Errorf("got value %+v, want Num(9)", got.Value)
	}
}

func TestResolveArrayElementwise(t *testing.T) {
	e := env.New()
	e.Set("a", tree.NewNum(1, tree.Location{}))
	e.Set("b", tree.NewNum(2, tree.Location{}))
	arr := tree.NewArray([]*tree.Node{
		tree.NewIdent("a", tree.Location{}),
		tree.NewIdent("b", tree.Location{}),
	}, tree.Location{})
	got, err := Resolve(arr, e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Elems) != 2 || got.Elems[0].NumVal != 1 || got.Elems[1].NumVal != 2 {
		t.Errorf("got %+v, want [Num(1), Num(2)]", got)
	}
}

func TestResolvePropagatesErrorFromSubtree(t *testing.T) {
	e := env.New()
	arr := tree.NewArray([]*tree.Node{
		tree.NewIdent("undefined_thing_abc", tree.Location{}),
	}, tree.Location{})
	_, err := Resolve(arr, e)
	if err == nil {
		t.Fatal("expected the unknown identifier inside the array to surface an error")
	}
}
