package printer

import (
	"os"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/arrshell/arrsh/internal/tree"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func withColumns(t *testing.T, value string) {
	t.Helper()
	old, had := os.LookupEnv("COLUMNS")
	if value == "" {
		os.Unsetenv("COLUMNS")
	} else {
		os.Setenv("COLUMNS", value)
	}
	t.Cleanup(func() {
		if had {
			os.Setenv("COLUMNS", old)
		} else {
			os.Unsetenv("COLUMNS")
		}
	})
}

func TestDisplayWidthASCII(t *testing.T) {
	if w := displayWidth("hello"); w != 5 {
		t.Errorf("displayWidth(\"hello\") = %d, want 5", w)
	}
}

func TestDisplayWidthWideRunes(t *testing.T) {
	if w := displayWidth("漢字"); w != 4 {
		t.Errorf("displayWidth(\"漢字\") = %d, want 4 (two wide runes)", w)
	}
}

func TestTerminalWidthDefaultsWithoutColumns(t *testing.T) {
	withColumns(t, "")
	if w := terminalWidth(); w != defaultTerminalWidth {
		t.Errorf("terminalWidth() = %d, want default %d", w, defaultTerminalWidth)
	}
}

func TestTerminalWidthHonorsColumns(t *testing.T) {
	withColumns(t, "120")
	if w := terminalWidth(); w != 120 {
		t.Errorf("terminalWidth() = %d, want 120", w)
	}
}

func TestTerminalWidthIgnoresGarbage(t *testing.T) {
	withColumns(t, "not-a-number")
	if w := terminalWidth(); w != defaultTerminalWidth {
		t.Errorf("terminalWidth() = %d, want the default fallback for a bad COLUMNS value", w)
	}
}

func TestTruncateAndDotDotDot(t *testing.T) {
	if got := truncateAndDotDotDot("short", 10); got != "short" {
		t.Errorf("got %q, want the string unchanged when under the limit", got)
	}
	if got := truncateAndDotDotDot("abcdefghij", 4); got != "abcd..." {
		t.Errorf("got %q, want %q", got, "abcd...")
	}
}

func TestTruncateNoDotDotDot(t *testing.T) {
	if got := truncateNoDotDotDot("abcdefghij", 4); got != "abcd" {
		t.Errorf("got %q, want %q", got, "abcd")
	}
}

func TestStitchPadsToTallestBlock(t *testing.T) {
	got := stitch([]string{"a", "b\nc"}, "|")
	want := "a|b\n |c"
	if got != want {
		t.Errorf("stitch(...) = %q, want %q", got, want)
	}
}

func TestDisplayNum(t *testing.T) {
	if got := Display(tree.NewNum(42, tree.Location{})); got != "42" {
		t.Errorf("Display(Num(42)) = %q, want %q", got, "42")
	}
}

func TestDisplayCommandIsAPlaceholder(t *testing.T) {
	cmd := tree.NewCommand("ls", nil, nil, tree.DefaultRedirect(), tree.Location{})
	if got := Display(cmd); got != "[PIPE]" {
		t.Errorf("Display(Command) = %q, want %q", got, "[PIPE]")
	}
}

func TestDisplaySymbolList(t *testing.T) {
	n := tree.NewSymbolList([]string{"-a", "-b", "-c"}, tree.Location{})
	if got := Display(n); got != "-abc" {
		t.Errorf("Display(SymbolList) = %q, want %q", got, "-abc")
	}
}

func TestArrayDisplayBoxesWithDepthLabel(t *testing.T) {
	withColumns(t, "")
	n := tree.NewArray([]*tree.Node{tree.NewNum(1, tree.Location{}), tree.NewNum(2, tree.Location{})}, tree.Location{})
	got := Display(n)
	want := "┌1──┐\n│1 2│\n└───┘"
	if got != want {
		t.Errorf("Display(array) =\n%s\nwant\n%s", got, want)
	}
}

func TestArrayDisplayNestedArrayHasHigherFathometerLabel(t *testing.T) {
	withColumns(t, "")
	inner := tree.NewArray([]*tree.Node{tree.NewNum(1, tree.Location{})}, tree.Location{})
	outer := tree.NewArray([]*tree.Node{inner}, tree.Location{})
	got := Display(outer)
	if !strings.HasPrefix(got, "┌2") {
		t.Errorf("Display(nested array) = %q, want it to start with the depth-2 border", got)
	}
}

func TestStringDisplayIsQuoteBoxed(t *testing.T) {
	got := stringDisplay("hi")
	if !strings.Contains(got, "\"") {
		t.Errorf("stringDisplay(%q) = %q, want it to contain an opening quote", "hi", got)
	}
	if !strings.Contains(got, "╭") || !strings.Contains(got, "╰") {
		t.Errorf("stringDisplay(%q) = %q, want box-drawing corners", "hi", got)
	}
}

func TestToTreeAtomIsDisplay(t *testing.T) {
	n := tree.NewNum(3, tree.Location{})
	if ToTree(n) != Display(n) {
		t.Errorf("ToTree(atom) should delegate to Display")
	}
}

func TestToTreeEmptyArray(t *testing.T) {
	if got := ToTree(tree.NewArray(nil, tree.Location{})); got != "()" {
		t.Errorf("ToTree(empty array) = %q, want %q", got, "()")
	}
}

func TestToTreeNilIsDiamondOSlash(t *testing.T) {
	if got := ToTree(nil); got != "ø" {
		t.Errorf("ToTree(nil) = %q, want %q", got, "ø")
	}
}

// The remaining cases render a whole Apply/Operator tree rather than a
// single atom; pinning their exact layout by hand gets unreadable fast,
// so we snapshot-test them the way the fixture runner they're modeled
// on does for its formatted output.
func TestToTreeSnapshotsTrainAndOperator(t *testing.T) {
	loc := tree.Location{}

	train := tree.NewApply(
		tree.NewIdent("+", loc),
		tree.NewIdent("-", loc),
		tree.NewApply(nil, tree.NewIdent("*", loc), tree.NewNum(3, loc), loc),
		loc,
	)
	snaps.MatchSnapshot(t, "train", ToTree(train))

	reduce := tree.NewOperator(tree.NewIdent("+", loc), "/", nil, loc)
	snaps.MatchSnapshot(t, "reduce_operator", ToTree(reduce))

	cmd := tree.NewCommand("grep", []*tree.Node{tree.NewSymbol("-n", loc)}, nil, tree.DefaultRedirect(), loc)
	snaps.MatchSnapshot(t, "command_tree", ToTree(cmd))
}

func TestArrayDisplaySnapshotsNestedHeterogeneousArray(t *testing.T) {
	withColumns(t, "")
	loc := tree.Location{}
	n := tree.NewArray([]*tree.Node{
		tree.NewNum(1, loc),
		tree.NewArray([]*tree.Node{tree.NewNum(2, loc), tree.NewNum(3, loc)}, loc),
		tree.NewString("hi", loc),
	}, loc)
	snaps.MatchSnapshot(t, "nested_heterogeneous_array", Display(n))
}
