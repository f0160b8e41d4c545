package tree

import "testing"

func TestSameShape(t *testing.T) {
	a := NewNum(1, Location{})
	b := NewNum(2, Location{})
	c := NewString("x", Location{})
	if !SameShape(a, b) {
		t.Error("two Num nodes should have the same shape regardless of value")
	}
	if SameShape(a, c) {
		t.Error("a Num and a String node should not have the same shape")
	}
	if !SameShape(nil, nil) {
		t.Error("two nils should have the same shape")
	}
	if SameShape(a, nil) {
		t.Error("a node and nil should not have the same shape")
	}
}

func TestEqual(t *testing.T) {
	a := NewArray([]*Node{NewNum(1, Location{}), NewNum(2, Location{})}, Location{})
	b := NewArray([]*Node{NewNum(1, Location{}), NewNum(2, Location{})}, Location{})
	c := NewArray([]*Node{NewNum(1, Location{}), NewNum(3, Location{})}, Location{})
	if !Equal(a, b) {
		t.Error("structurally identical arrays should be Equal")
	}
	if Equal(a, c) {
		t.Error("arrays differing in one element should not be Equal")
	}
}

func TestEqualOperator(t *testing.T) {
	a := NewOperator(NewIdent("+", Location{}), "/", NewArray(nil, Location{}), Location{})
	b := NewOperator(NewIdent("+", Location{}), "/", NewArray(nil, Location{}), Location{})
	c := NewOperator(NewIdent("+", Location{}), "\\", NewArray(nil, Location{}), Location{})
	if !Equal(a, b) {
		t.Error("identical Operator nodes should be Equal")
	}
	if Equal(a, c) {
		t.Error("Operator nodes with different Op should not be Equal")
	}
}

func TestClonePreservesValueButNotIdentity(t *testing.T) {
	orig := NewArray([]*Node{NewNum(1, Location{}), NewString("hi", Location{})}, Location{})
	clone := orig.Clone()
	if !Equal(orig, clone) {
		t.Error("a clone should be structurally Equal to the original")
	}
	clone.Elems[0].NumVal = 99
	if orig.Elems[0].NumVal == 99 {
		t.Error("mutating the clone should not affect the original")
	}
}

func TestArrayifyWrapsNonArray(t *testing.T) {
	n := NewNum(5, Location{})
	a := Arrayify(n)
	if a.Kind != KindArray || len(a.Elems) != 1 || a.Elems[0] != n {
		t.Errorf("Arrayify(scalar) = %+v, want a one-element array wrapping it", a)
	}

	arr := NewArray([]*Node{NewNum(1, Location{})}, Location{})
	if Arrayify(arr) != arr {
		t.Error("Arrayify(array) should return the same array unchanged")
	}
}

func TestEnlistAlwaysWraps(t *testing.T) {
	arr := NewArray([]*Node{NewNum(1, Location{})}, Location{})
	wrapped := Enlist(arr)
	if wrapped.Kind != KindArray || len(wrapped.Elems) != 1 || wrapped.Elems[0] != arr {
		t.Errorf("Enlist(array) = %+v, want a fresh one-element array wrapping it", wrapped)
	}
}

func TestFathometer(t *testing.T) {
	tests := []struct {
		name string
		n    *Node
		want int
	}{
		{"scalar", NewNum(1, Location{}), 0},
		{"empty array", NewArray(nil, Location{}), 0},
		{"flat array", NewArray([]*Node{NewNum(1, Location{}), NewNum(2, Location{})}, Location{}), 1},
		{
			"nested array",
			NewArray([]*Node{
				NewNum(1, Location{}),
				NewArray([]*Node{NewNum(2, Location{})}, Location{}),
			}, Location{}),
			2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fathometer(tt.n); got != tt.want {
				t.Errorf("Fathometer(%v) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}
