// Package printer renders a value-tree node as a human-readable
// string: a compact tree-shape view (ToTree) for debugging a node's
// call structure, and the boxed-array view (Display) used wherever a
// value needs to show up in a diagnostic or at a REPL prompt. Kept
// narrowly scoped to that rendering job — reading a line of input and
// deciding when to invoke it belongs to cmd/arrsh, not here.
package printer

import (
	"strconv"
	"strings"

	"github.com/arrshell/arrsh/internal/charset"
	"github.com/arrshell/arrsh/internal/tree"
)

// stitch lays out n multi-line strings side by side, separated by
// betwixt, padding each to the height and width of the tallest/widest
// of the group.
func stitch(ss []string, betwixt string) string {
	maxheight := 0
	for _, s := range ss {
		if c := strings.Count(s, "\n"); c > maxheight {
			maxheight = c
		}
	}

	padded := make([][]string, len(ss))
	for i, s := range ss {
		lines := strings.Split(s, "\n")
		maxlen := 0
		for _, l := range lines {
			if w := displayWidth(l); w > maxlen {
				maxlen = w
			}
		}
		for j, l := range lines {
			lines[j] = l + strings.Repeat(" ", maxlen-displayWidth(l))
		}
		for len(lines) <= maxheight {
			lines = append(lines, strings.Repeat(" ", maxlen))
		}
		padded[i] = lines
	}

	var out strings.Builder
	for i := 0; i <= maxheight; i++ {
		for pi, lines := range padded {
			out.WriteString(lines[i])
			if pi+1 < len(padded) {
				out.WriteString(betwixt)
			}
		}
		if i < maxheight {
			out.WriteString("\n")
		}
	}
	return out.String()
}

// doTree draws a two-child box: top sits above a horizontal rule wide
// enough for lhs, with lhs and rhs stitched together beneath it.
func doTree(top, lhs, rhs string) string {
	maxwidth := 0
	for _, l := range strings.Split(lhs, "\n") {
		if w := displayWidth(l); w > maxwidth {
			maxwidth = w
		}
	}
	maxwidth++

	stitched := stitch([]string{lhs, rhs}, "  ")

	tlines := strings.Count(top, "\n") + 1
	if tlines > 1 {
		lhsBorder := "┌\n" + strings.Repeat("╎\n", tlines-2) + "└"
		rhsBorder := "┐\n" + strings.Repeat("╎\n", tlines-2) + "┘"
		top = stitch([]string{lhsBorder, top, rhsBorder}, " ")
	}

	bottom := "├" + strings.Repeat("─", maxwidth) + "┐\n" + stitched
	if tlines > 1 {
		bottom = stitch([]string{"", bottom}, "  ")
	}

	return top + "\n" + bottom
}

// doOneTree draws a single-child box: top above val, joined by a bare
// vertical connector.
func doOneTree(top, val string) string {
	return top + "\n│\n" + val
}

// truncateAndDotDotDot clips s to l display columns, marking the cut
// with a trailing ellipsis.
func truncateAndDotDotDot(s string, l int) string {
	if displayWidth(s) <= l {
		return s
	}
	r := []rune(s)
	if l > len(r) {
		l = len(r)
	}
	if l < 0 {
		l = 0
	}
	return string(r[:l]) + "..."
}

// truncateNoDotDotDot clips s to l display columns with no ellipsis.
func truncateNoDotDotDot(s string, l int) string {
	if displayWidth(s) <= l {
		return s
	}
	r := []rune(s)
	if l > len(r) {
		l = len(r)
	}
	if l < 0 {
		l = 0
	}
	return string(r[:l])
}

func orNil(n *tree.Node) string {
	if n == nil {
		return "ø"
	}
	return ToTree(n)
}

func orEmpty(n *tree.Node) *tree.Node {
	if n == nil {
		return tree.NewArray(nil, tree.Location{})
	}
	return n
}

// symbolListLetters strips each symbol's leading '-' down to its bare
// letter, the way a -abc run collapses back into one glyph string.
func symbolListLetters(symbols []string) string {
	var b strings.Builder
	for _, s := range symbols {
		b.WriteString(strings.TrimPrefix(s, "-"))
	}
	return b.String()
}

// ToTree renders n's call structure: a train or application becomes a
// two-child box with its function on top, a modifier-derived function
// becomes the same shape with the operand on the right, and a command
// becomes a box of its name over its argument array and its stdin
// chain.
func ToTree(n *tree.Node) string {
	if n == nil {
		return "ø"
	}
	switch n.Kind {
	case tree.KindIdent, tree.KindSymbol, tree.KindNum, tree.KindString:
		return Display(n)
	case tree.KindApply:
		return doTree(ToTree(n.Fn), orNil(n.Left), orNil(n.Right))
	case tree.KindAssign:
		return n.Str + charset.Assign + "\n" + ToTree(n.Value)
	case tree.KindAliasAssign:
		return n.Str + charset.Assign + charset.Assign + "\n" + ToTree(n.Value)
	case tree.KindOperator:
		return doTree(n.Op, ToTree(n.Fn), ToTree(n.Operand))
	case tree.KindCommand:
		argsNode := tree.NewArray(n.Args, n.Location)
		return doTree(n.Name, ToTree(argsNode), ToTree(orEmpty(n.Stdin)))
	case tree.KindSymbolList:
		return "-" + symbolListLetters(n.Symbols)
	case tree.KindArray:
		if len(n.Elems) == 0 {
			return "()"
		}
		parts := make([]string, len(n.Elems))
		for i, e := range n.Elems {
			if e.Kind == tree.KindArray {
				parts[i] = doOneTree("[]", ToTree(e))
			} else {
				parts[i] = ToTree(e)
			}
		}
		return stitch(parts, " ")
	default:
		return Display(n)
	}
}

// Display renders n the way a value prints at the REPL or inside an
// error message: atoms print bare, a command is a placeholder since
// it hasn't run yet, and an array gets the full box-drawn rendering
// with a depth label so nesting is visible at a glance.
func Display(n *tree.Node) string {
	if n == nil {
		return "ø"
	}
	switch n.Kind {
	case tree.KindCommand:
		return "[PIPE]"
	case tree.KindAssign:
		return n.Str + charset.Assign + "\n" + ToTree(n.Value)
	case tree.KindAliasAssign:
		return n.Str + charset.Assign + charset.Assign + "\n" + ToTree(n.Value)
	case tree.KindNum, tree.KindSymbol, tree.KindIdent:
		return n.String()
	case tree.KindString:
		return stringDisplay(n.Str)
	case tree.KindSymbolList:
		return "-" + symbolListLetters(n.Symbols)
	case tree.KindApply, tree.KindOperator:
		return ToTree(n)
	case tree.KindArray:
		return arrayDisplay(n)
	default:
		return n.String()
	}
}

// stringDisplay draws a quote-boxed rendering of a string literal,
// tabs widened to two spaces and long bodies elided past 15 lines.
func stringDisplay(s string) string {
	s = strings.ReplaceAll(s, "\t", "  ")

	lines := strings.Split(s, "\n")
	w := terminalWidth() - 7
	for i, l := range lines {
		lines[i] = truncateAndDotDotDot(l, w)
	}
	if len(lines) > 15 {
		lines = append(append([]string(nil), lines[:15]...), "...")
	}
	s = strings.Join(lines, "\n")

	numLines := strings.Count(s, "\n") + 1
	lhs := "╭\n" + strings.Repeat("│\n", numLines) + "╰"
	rhs := "╮\n" + strings.Repeat("│\n", numLines) + "╯"

	finalLines := strings.Split(s, "\n")
	maxw := 0
	for _, l := range finalLines {
		if w := displayWidth(l); w > maxw {
			maxw = w
		}
	}
	avbel := strings.Repeat("─", maxw+1)
	padded := make([]string, len(finalLines))
	for i, l := range finalLines {
		padded[i] = " " + l + " "
	}
	pads := "\"" + avbel + "\n" + strings.Join(padded, "\n") + "\n─" + avbel

	return stitch([]string{lhs, pads, rhs}, "")
}

// arrayDisplay draws the boxed rendering of an array: elements that
// render as single lines are packed side by side, elements that
// render as multi-line blocks force a line break, and the whole block
// gets a border labeled with the array's nesting depth (fathometer).
func arrayDisplay(n *tree.Node) string {
	lines := []string{""}
	for _, e := range n.Elems {
		r := Display(e)
		if strings.Contains(r, "\n") {
			if lines[len(lines)-1] == "" {
				lines = lines[:len(lines)-1]
			}
			lines = append(lines, r, "")
		} else {
			last := len(lines) - 1
			if lines[last] == "" {
				lines[last] = r
			} else {
				lines[last] = stitch([]string{lines[last], r}, " ")
			}
		}
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	inner := strings.Join(lines, "\n")

	innerLines := strings.Split(inner, "\n")
	lastIdx := len(innerLines) - 1
	w := terminalWidth() - 5
	for i, l := range innerLines {
		if i == lastIdx {
			innerLines[i] = truncateAndDotDotDot(l, w)
		} else {
			innerLines[i] = truncateNoDotDotDot(l, w)
		}
	}
	inner = strings.Join(innerLines, "\n")

	arrdepth := strconv.Itoa(tree.Fathometer(n))
	depthchars := displayWidth(arrdepth)

	innerLines = strings.Split(inner, "\n")
	maxwidth := 0
	for _, l := range innerLines {
		if w := displayWidth(l); w > maxwidth {
			maxwidth = w
		}
	}
	maxheight := len(innerLines)

	extra := 0
	if depthchars > maxwidth {
		extra = depthchars - maxwidth
	}
	if depthchars > maxwidth {
		maxwidth = depthchars
	}

	leftCol := make([]string, maxheight)
	for i := range leftCol {
		leftCol[i] = "│"
	}
	rightCol := make([]string, maxheight)
	for i := range rightCol {
		rightCol[i] = strings.Repeat(" ", extra) + "│"
	}

	body := stitch([]string{strings.Join(leftCol, "\n"), inner, strings.Join(rightCol, "\n")}, "")

	top := "┌" + arrdepth + strings.Repeat("─", maxwidth-depthchars) + "┐"
	bottom := "└" + strings.Repeat("─", depthchars) + strings.Repeat("─", maxwidth-depthchars) + "┘"

	return top + "\n" + body + "\n" + bottom
}
