package eval

import (
	"testing"

	"github.com/arrshell/arrsh/internal/env"
	"github.com/arrshell/arrsh/internal/lexer"
	"github.com/arrshell/arrsh/internal/tree"
)

// evalLine tokenizes and evaluates line against a fresh environment
// (or e, if non-nil), with side effects fully enabled.
func evalLine(t *testing.T, e *env.Env, line string) *tree.Node {
	t.Helper()
	if e == nil {
		e = env.New()
	}
	toks, err := lexer.Tokenize(line)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", line, err)
	}
	result, err := EvalLine(toks, line, "<test>", e, false)
	if err != nil {
		t.Fatalf("EvalLine(%q) error: %v", line, err)
	}
	return result
}

func wantNums(t *testing.T, n *tree.Node, want ...float64) {
	t.Helper()
	if len(want) == 1 {
		if n.Kind != tree.KindNum || n.NumVal != want[0] {
			t.Errorf("got %v, want Num(%v)", n, want[0])
		}
		return
	}
	if n.Kind != tree.KindArray || len(n.Elems) != len(want) {
		t.Fatalf("got %v, want a %d-element array", n, len(want))
	}
	for i, w := range want {
		if n.Elems[i].Kind != tree.KindNum || n.Elems[i].NumVal != w {
			t.Errorf("elem %d = %v, want Num(%v)", i, n.Elems[i], w)
		}
	}
}

func TestReduceOverPlus(t *testing.T) {
	wantNums(t, evalLine(t, nil, "+/ 1 2 3 4"), 10)
}

func TestScanOverPlus(t *testing.T) {
	wantNums(t, evalLine(t, nil, "+\\ 1 2 3"), 1, 3, 6)
}

func TestGradeAscendingDescending(t *testing.T) {
	wantNums(t, evalLine(t, nil, "< 1 4 3 0"), 3, 0, 2, 1)
	wantNums(t, evalLine(t, nil, "> 1 4 3 0"), 1, 2, 0, 3)
}

func TestRotate(t *testing.T) {
	wantNums(t, evalLine(t, nil, ". 1 2 3"), 3, 2, 1)
	wantNums(t, evalLine(t, nil, "2 . 1 2 3 4 5"), 3, 4, 5, 1, 2)
}

func TestReshapeWraps(t *testing.T) {
	n := evalLine(t, nil, "2 3 # 1 2 3 4")
	if n.Kind != tree.KindArray || len(n.Elems) != 2 {
		t.Fatalf("got %v, want a 2-element array of rows", n)
	}
	wantNums(t, n.Elems[0], 1, 2, 3)
	wantNums(t, n.Elems[1], 4, 1, 2)
}

func TestRightToLeftEvaluation(t *testing.T) {
	wantNums(t, evalLine(t, nil, "1 + 2 * 3"), 7)
}

func TestAliasAssignStoresUnevaluated(t *testing.T) {
	e := env.New()
	evalLine(t, e, "a;;3 + 4")
	wantNums(t, evalLine(t, e, "a + 1"), 8)
}

func TestWhereIndicesOfPredicate(t *testing.T) {
	n := evalLine(t, nil, "(> 5)? 1 2 6 3 10")
	wantNums(t, n, 2, 4)
}

func TestScanProducesRunningTotals(t *testing.T) {
	wantNums(t, evalLine(t, nil, "+\\ 1 2 3 4"), 1, 3, 6, 10)
}

func TestReshapeOfIota(t *testing.T) {
	n := evalLine(t, nil, "2 3 # ! 6")
	if n.Kind != tree.KindArray || len(n.Elems) != 2 {
		t.Fatalf("got %v, want a 2-element array of rows", n)
	}
	wantNums(t, n.Elems[0], 0, 1, 2)
	wantNums(t, n.Elems[1], 3, 4, 5)
}

func TestIotaProducesCountingSequence(t *testing.T) {
	wantNums(t, evalLine(t, nil, "! 5"), 0, 1, 2, 3, 4)
}

func TestJSONParsesObjectIntoKeyValueArrays(t *testing.T) {
	n := evalLine(t, nil, `json "{\"foo\":2,\"bar\":4}"`)
	if n.Kind != tree.KindArray || len(n.Elems) != 2 {
		t.Fatalf("got %v, want a 2-element [keys, values] array", n)
	}
	keys, vals := n.Elems[0], n.Elems[1]
	if keys.Kind != tree.KindArray || len(keys.Elems) != 2 {
		t.Fatalf("got keys=%v, want a 2-element array", keys)
	}
	if keys.Elems[0].Str != "foo" || keys.Elems[1].Str != "bar" {
		t.Errorf("got keys %v, want [foo, bar] in insertion order", keys.Elems)
	}
	wantNums(t, vals, 2, 4)
}

func TestFixedPointTerminates(t *testing.T) {
	wantNums(t, evalLine(t, nil, "(>100)~ 2"), 0)
}

func TestEnlistIncreasesDepthAndLength(t *testing.T) {
	n := evalLine(t, nil, ", 1 2 3")
	if n.Kind != tree.KindArray || len(n.Elems) != 1 {
		t.Fatalf("got %v, want a one-element array wrapping the operand", n)
	}
	inner := n.Elems[0]
	if inner.Kind != tree.KindArray || len(inner.Elems) != 3 {
		t.Errorf("got inner=%v, want the original 3-element array", inner)
	}
}

func TestAssignBindsIntoEnvironment(t *testing.T) {
	e := env.New()
	evalLine(t, e, "x;42")
	v, ok := e.Get("x")
	if !ok || v.NumVal != 42 {
		t.Errorf("got (%v, %v), want (Num(42), true)", v, ok)
	}
}
