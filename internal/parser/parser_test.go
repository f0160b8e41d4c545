package parser

import (
	"strings"
	"testing"

	"github.com/arrshell/arrsh/internal/env"
	"github.com/arrshell/arrsh/internal/lexer"
	"github.com/arrshell/arrsh/internal/tree"
)

func mustParse(t *testing.T, line string) *tree.Node {
	t.Helper()
	toks, err := lexer.Tokenize(line)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", line, err)
	}
	n, err := ParseCommands(toks, line, "<test>", env.New())
	if err != nil {
		t.Fatalf("ParseCommands(%q) error: %v", line, err)
	}
	return n
}

func TestParseBlankLine(t *testing.T) {
	n := mustParse(t, "")
	if n != nil {
		t.Errorf("ParseCommands(\"\") = %v, want nil", n)
	}
}

func TestParseNumber(t *testing.T) {
	n := mustParse(t, "42")
	if n.Kind != tree.KindNum || n.NumVal != 42 {
		t.Errorf("got %+v, want Num(42)", n)
	}
}

func TestParseImplicitArray(t *testing.T) {
	n := mustParse(t, "1 2 3")
	if n.Kind != tree.KindArray {
		t.Fatalf("got Kind=%v, want Array", n.Kind)
	}
	if len(n.Elems) != 3 {
		t.Fatalf("got %d elems, want 3", len(n.Elems))
	}
	for i, want := range []float64{1, 2, 3} {
		if n.Elems[i].Kind != tree.KindNum || n.Elems[i].NumVal != want {
			t.Errorf("elem %d = %+v, want Num(%v)", i, n.Elems[i], want)
		}
	}
}

func TestParseAssign(t *testing.T) {
	n := mustParse(t, "x;5")
	if n.Kind != tree.KindAssign {
		t.Fatalf("got Kind=%v, want Assign", n.Kind)
	}
	if n.Str != "x" {
		t.Errorf("got name %q, want x", n.Str)
	}
	if n.Value.Kind != tree.KindNum || n.Value.NumVal != 5 {
		t.Errorf("got value %+v, want Num(5)", n.Value)
	}
}

func TestParseAliasAssign(t *testing.T) {
	n := mustParse(t, "x;;5")
	if n.Kind != tree.KindAliasAssign {
		t.Fatalf("got Kind=%v, want AliasAssign", n.Kind)
	}
	if n.Str != "x" {
		t.Errorf("got name %q, want x", n.Str)
	}
}

func TestParseAssignRejectsNonIdentTarget(t *testing.T) {
	toks, err := lexer.Tokenize("1;5")
	if err != nil {
		t.Fatalf("unexpected tokenize error: %v", err)
	}
	_, err = ParseCommands(toks, "1;5", "<test>", env.New())
	if err == nil {
		t.Fatal("expected an error assigning to a non-identifier")
	}
	if !strings.Contains(err.Error(), "Identifier must be a valid name.") {
		t.Errorf("got error %q, want it to mention an invalid identifier", err.Error())
	}
}

func TestParseReduceTrain(t *testing.T) {
	n := mustParse(t, "+/1 2 3")
	if n.Kind != tree.KindApply {
		t.Fatalf("got Kind=%v, want Apply", n.Kind)
	}
	if n.Left != nil {
		t.Errorf("got Left=%+v, want nil", n.Left)
	}
	if n.Fn.Kind != tree.KindOperator {
		t.Fatalf("got Fn.Kind=%v, want Operator", n.Fn.Kind)
	}
	if n.Fn.Op != "/" {
		t.Errorf("got Op=%q, want /", n.Fn.Op)
	}
	if n.Fn.Fn.Kind != tree.KindIdent || n.Fn.Fn.Str != "+" {
		t.Errorf("got reduced fn %+v, want Ident(+)", n.Fn.Fn)
	}
	if n.Right == nil || n.Right.Kind != tree.KindArray || len(n.Right.Elems) != 3 {
		t.Errorf("got Right=%+v, want a 3-element array", n.Right)
	}
}

func TestParseDyadicChainsNestRightward(t *testing.T) {
	n := mustParse(t, "1 + 2 * 3")
	if n.Kind != tree.KindApply || n.Fn.Str != "+" {
		t.Fatalf("got %+v, want Apply(1, +, ...)", n)
	}
	if n.Left == nil || n.Left.NumVal != 1 {
		t.Errorf("got Left=%+v, want Num(1)", n.Left)
	}
	inner := n.Right
	if inner == nil || inner.Kind != tree.KindApply || inner.Fn.Str != "*" {
		t.Fatalf("got Right=%+v, want the nested Apply(2, *, 3)", inner)
	}
	if inner.Left.NumVal != 2 || inner.Right.NumVal != 3 {
		t.Errorf("got nested call %+v, want (2, *, 3)", inner)
	}
}

func TestParseBarePrimitiveDoesNotExtendARun(t *testing.T) {
	// The ! here begins #'s right argument, not a two-function run.
	n := mustParse(t, "2 3 # ! 6")
	if n.Kind != tree.KindApply || n.Fn.Kind != tree.KindIdent || n.Fn.Str != "#" {
		t.Fatalf("got %+v, want Apply([2 3], #, ...)", n)
	}
	inner := n.Right
	if inner == nil || inner.Kind != tree.KindApply || inner.Fn.Str != "!" {
		t.Errorf("got Right=%+v, want the nested Apply(nil, !, 6)", inner)
	}
}

func TestParseParenthesizedExpression(t *testing.T) {
	n := mustParse(t, "(1 2 3)")
	if n.Kind != tree.KindArray || len(n.Elems) != 3 {
		t.Errorf("got %+v, want a parenthesized 3-element array", n)
	}
}

func TestParseUnmatchedParenIsAnError(t *testing.T) {
	toks, err := lexer.Tokenize("(1 2")
	if err != nil {
		t.Fatalf("unexpected tokenize error: %v", err)
	}
	_, err = ParseCommands(toks, "(1 2", "<test>", env.New())
	if err == nil {
		t.Fatal("expected an unmatched-paren error")
	}
	if !strings.Contains(err.Error(), "Expecting close parenthesis.") {
		t.Errorf("got error %q, want it to mention the missing close paren", err.Error())
	}
}

func TestParsePipeIntoNonFunctionIsAnError(t *testing.T) {
	toks, err := lexer.Tokenize("1|2")
	if err != nil {
		t.Fatalf("unexpected tokenize error: %v", err)
	}
	_, err = ParseCommands(toks, "1|2", "<test>", env.New())
	if err == nil {
		t.Fatal("expected a piping-into-non-function error")
	}
	if !strings.Contains(err.Error(), "Piping into non-function.") {
		t.Errorf("got error %q, want it to mention piping into a non-function", err.Error())
	}
}

func TestParseSymbol(t *testing.T) {
	n := mustParse(t, "--verbose")
	if n.Kind != tree.KindSymbol || n.Str != "--verbose" {
		t.Errorf("got %+v, want Symbol(--verbose)", n)
	}
}

func TestParseSymbolList(t *testing.T) {
	n := mustParse(t, "-abc")
	if n.Kind != tree.KindArray {
		t.Fatalf("got Kind=%v, want Array of expanded symbols", n.Kind)
	}
	if len(n.Elems) != 3 {
		t.Fatalf("got %d elems, want 3", len(n.Elems))
	}
	for i, want := range []string{"a", "b", "c"} {
		if n.Elems[i].Kind != tree.KindSymbol || n.Elems[i].Str != "-"+want {
			t.Errorf("elem %d = %+v, want Symbol(-%s)", i, n.Elems[i], want)
		}
	}
}

func TestParseString(t *testing.T) {
	n := mustParse(t, `"hello"`)
	if n.Kind != tree.KindString || n.Str != "hello" {
		t.Errorf("got %+v, want String(hello)", n)
	}
}
