package eval

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/arrshell/arrsh/internal/charset"
	"github.com/arrshell/arrsh/internal/jsonvalue"
	"github.com/arrshell/arrsh/internal/process"
	"github.com/arrshell/arrsh/internal/tree"
)

// scalarFunction applies a named primitive (a single glyph or a
// reserved multi-character name) to an already rank-stripped pair of
// arguments. Anything that isn't one of the language's own primitives
// falls through to the final case, lazily becoming a Command node —
// this is how bare words like `ls` or `git` turn into external
// processes instead of errors.
func (c *ctx) scalarFunction(name string, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	switch {
	case name == charset.NamedNum:
		return c.primNum(larg, rarg, loc)

	case isArithmetic(name):
		return c.primArithmetic(name, larg, rarg, loc)

	case name == charset.NamedCd:
		if c.failExtern {
			return nil, &FailExternError{Location: loc}
		}
		return c.primCd(larg, rarg, loc)

	case name == charset.NamedExit:
		if c.failExtern {
			return nil, &FailExternError{Location: loc}
		}
		return c.primExit(larg, rarg, loc)

	case name == charset.NamedList:
		return c.primList(larg, rarg, loc)

	case name == charset.NamedCSV:
		return c.primCSV(larg, rarg, loc)

	case name == charset.NamedJSON:
		return c.primJSON(larg, rarg, loc)

	case name == charset.LTack:
		return unoptionize(larg), nil

	case name == charset.RTack:
		return unoptionize(rarg), nil

	case name == charset.Rotate:
		return c.primRotate(larg, rarg, loc)

	case name == charset.Take:
		return c.primTake(larg, rarg, loc)

	case name == charset.Transpose:
		return c.primTranspose(larg, rarg, loc)

	case name == charset.MaxLast:
		return c.primMaxMin(true, larg, rarg, loc)

	case name == charset.MinFirst:
		return c.primMaxMin(false, larg, rarg, loc)

	case name == charset.Concat:
		return c.primConcat(larg, rarg, loc)

	case name == charset.Ascending:
		return c.primOrder(true, larg, rarg, loc)

	case name == charset.Descending:
		return c.primOrder(false, larg, rarg, loc)

	case name == charset.Index:
		return c.primIndex(larg, rarg, loc)

	case name == charset.ShapeLength:
		return c.primShapeLength(larg, rarg, loc)

	case name == charset.Equal:
		return c.primEqual(larg, rarg, loc)

	case name == charset.Iota:
		return c.primIota(larg, rarg, loc)

	case name == charset.NamedCollect:
		if _, err := c.realize(unoptionize(larg), process.CaptureAll); err != nil {
			return nil, err
		}
		return c.realize(unoptionize(rarg), process.CaptureAll)

	case name == charset.NamedPipe:
		if c.failExtern {
			return nil, &FailExternError{Location: loc}
		}
		return c.primPipe(larg, rarg, loc)

	default:
		if c.failExtern {
			return nil, &FailExternError{Location: loc}
		}
		rr := unoptionize(rarg)
		var args []*tree.Node
		if rr.Kind == tree.KindArray {
			args = rr.Elems
		} else {
			args = []*tree.Node{rr}
		}
		return tree.NewCommand(name, args, unoptionize(larg), tree.DefaultRedirect(), loc), nil
	}
}

// isArithmetic reports whether name is one of the four arithmetic glyphs.
func isArithmetic(name string) bool {
	switch name {
	case charset.Plus, charset.Minus, charset.Times, charset.Divide:
		return true
	default:
		return false
	}
}

// arithmetic applies the named arithmetic glyph to two already-numeric
// operands.
func arithmetic(name string, l, r float64) float64 {
	switch name {
	case charset.Plus:
		return l + r
	case charset.Minus:
		return l - r
	case charset.Times:
		return l * r
	case charset.Divide:
		return l / r
	default:
		panic("eval: arithmetic called with non-arithmetic glyph " + name)
	}
}

// primNum converts between a number and its decimal-string rendering.
func (c *ctx) primNum(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	switch rv.Kind {
	case tree.KindNum:
		return tree.NewString(fmt.Sprintf("%g", rv.NumVal), loc), nil
	case tree.KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(rv.Str), 64)
		if err != nil {
			return nil, c.err(loc, "Invalid candidate for numeric parsing.",
				fmt.Sprintf("The following string was given:\n%s", rv.Str))
		}
		return tree.NewNum(n, loc), nil
	default:
		return nil, c.err(loc, "Invalid candidate for numeric parsing.",
			fmt.Sprintf("The following value was given:\n%s", show(rv)))
	}
}

// primArithmetic implements +, -, *, % with their monadic special
// cases: monadic minus negates a number or explodes a string into an
// array of single-rune strings; monadic times is logical NOT.
func (c *ctx) primArithmetic(name string, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if larg == nil && name == charset.Minus && rarg != nil && rarg.Kind == tree.KindNum {
		return tree.NewNum(-rarg.NumVal, loc), nil
	}
	if larg == nil && name == charset.Minus && rarg != nil && rarg.Kind == tree.KindString {
		runes := []rune(rarg.Str)
		out := make([]*tree.Node, len(runes))
		for i, r := range runes {
			out[i] = tree.NewString(string(r), loc)
		}
		return tree.NewArray(out, loc), nil
	}
	if name == charset.Times && larg == nil && rarg != nil {
		v := 0.0
		if !isTruthy(rarg) {
			v = 1.0
		}
		return tree.NewNum(v, loc), nil
	}

	lv, err := c.realize(unoptionize(larg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	if lv.Kind == tree.KindNum && rv.Kind == tree.KindNum {
		return tree.NewNum(arithmetic(name, lv.NumVal, rv.NumVal), loc), nil
	}
	if name == charset.Plus && lv.Kind == tree.KindString && rv.Kind == tree.KindString {
		return tree.NewString(lv.Str+rv.Str, loc), nil
	}
	return nil, c.err(loc, fmt.Sprintf("Cannot perform arithmetic %s on mistyped value.", name),
		fmt.Sprintf("The left value was:\n%s\nAnd the right value was:\n%s", show(lv), show(rv)))
}

// primCd changes the process's working directory: a string names the
// target, an empty array means "up one level".
func (c *ctx) primCd(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	switch {
	case rv.Kind == tree.KindString:
		if err := os.Chdir(rv.Str); err != nil {
			return nil, c.err(loc, fmt.Sprintf("Could not open directory — %s", err), "Try `ls` to list extant directories.")
		}
		return tree.NewArray(nil, loc), nil
	case rv.Kind == tree.KindArray && len(rv.Elems) == 0:
		if err := os.Chdir(".."); err != nil {
			return nil, c.err(loc, fmt.Sprintf("Could not open directory — %s", err), "This error occurred because a higher directory could not be opened.")
		}
		return tree.NewArray(nil, loc), nil
	default:
		return nil, c.err(rv.Location, "Expected string to indicate directory.",
			fmt.Sprintf("The given value was:\n%s", show(rv)))
	}
}

// primExit terminates the process with the given exit code, or 0 for
// an empty array.
func (c *ctx) primExit(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	switch {
	case rv.Kind == tree.KindNum && rv.NumVal == math.Trunc(rv.NumVal):
		os.Exit(int(rv.NumVal))
	case rv.Kind == tree.KindArray && len(rv.Elems) == 0:
		os.Exit(0)
	}
	return nil, c.err(rv.Location, "Require number for exit code.", fmt.Sprintf("The given value was:\n%s", show(rv)))
}

// primList converts between a string and the array of lines (each
// further split on tabs into an array of fields, when there is more
// than one) that it represents.
func (c *ctx) primList(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	switch rv.Kind {
	case tree.KindString:
		lines := strings.Split(rv.Str, "\n")
		vs := make([]*tree.Node, len(lines))
		for i, line := range lines {
			fields := strings.Split(line, "\t")
			if len(fields) != 1 {
				elems := make([]*tree.Node, len(fields))
				for j, f := range fields {
					elems[j] = tree.NewString(f, loc)
				}
				vs[i] = tree.NewArray(elems, loc)
			} else {
				vs[i] = tree.NewString(fields[0], loc)
			}
		}
		if len(vs) > 0 {
			if last := vs[len(vs)-1]; last.Kind == tree.KindString && last.Str == "" {
				vs = vs[:len(vs)-1]
			}
		}
		if len(vs) != 1 {
			return tree.NewArray(vs, loc), nil
		}
		return vs[0], nil

	case tree.KindArray:
		rows := make([]string, len(rv.Elems))
		for i, e := range rv.Elems {
			if e.Kind == tree.KindArray {
				parts := make([]string, len(e.Elems))
				for j, e2 := range e.Elems {
					s, err := c.astStringify(e2, loc)
					if err != nil {
						return nil, err
					}
					parts[j] = s
				}
				rows[i] = strings.Join(parts, "\t")
			} else {
				s, err := c.astStringify(e, loc)
				if err != nil {
					return nil, err
				}
				rows[i] = s
			}
		}
		return tree.NewString(strings.Join(rows, "\n"), loc), nil

	default:
		return nil, c.err(loc, "Invalid argument to list.",
			"List either requires a string to translate to an array or an array to translate to a string.")
	}
}

// astStringify renders an atomic node as the plain text a process
// argument, CSV field, or list line would carry. It refuses anything
// non-atomic — run `list` or `json` on it first.
func (c *ctx) astStringify(n *tree.Node, loc tree.Location) (string, error) {
	switch n.Kind {
	case tree.KindString, tree.KindSymbol, tree.KindIdent:
		return n.Str, nil
	case tree.KindNum:
		return fmt.Sprintf("%g", n.NumVal), nil
	default:
		return "", c.err(loc, "Invalid item to stringify.",
			fmt.Sprintf("This item must be atomic.  Try using a conversion method first like `list` or `json`.  The given object was:\n%s", show(n)))
	}
}

// primCSV converts between a CSV document and an array of rows (each
// itself an array of fields). The delimiter is larg's first character,
// defaulting to a comma. Header rows are never treated specially —
// every row parses and round-trips as plain data.
func (c *ctx) primCSV(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	lv, err := c.realize(unoptionize(larg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	delimiter := ','
	if lv.Kind == tree.KindString && len(lv.Str) > 0 {
		delimiter = []rune(lv.Str)[0]
	}

	switch rv.Kind {
	case tree.KindString:
		r := csv.NewReader(strings.NewReader(rv.Str))
		r.Comma = delimiter
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		if err != nil {
			return nil, c.err(loc, "Failed to parse CSV.", fmt.Sprintf("The given value was:\n%s", rv.Str))
		}
		out := make([]*tree.Node, len(records))
		for i, rec := range records {
			fields := make([]*tree.Node, len(rec))
			for j, f := range rec {
				fields[j] = tree.NewString(f, loc)
			}
			out[i] = tree.NewArray(fields, loc)
		}
		return tree.NewArray(out, loc), nil

	case tree.KindArray:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Comma = delimiter
		for _, v := range rv.Elems {
			var record []string
			if v.Kind == tree.KindArray {
				for _, v2 := range v.Elems {
					s, err := c.astStringify(v2, loc)
					if err != nil {
						return nil, err
					}
					record = append(record, s)
				}
			} else {
				s, err := c.astStringify(v, loc)
				if err != nil {
					return nil, err
				}
				record = append(record, s)
			}
			if err := w.Write(record); err != nil {
				return nil, c.err(loc, "[INTERNAL] Failed to write to CSV record.", "Trace:\n"+err.Error())
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, c.err(loc, "[INTERNAL] Failed to write to CSV record.", "Trace:\n"+err.Error())
		}
		return tree.NewString(buf.String(), loc), nil

	default:
		return nil, c.err(loc, "Invalid argument to csv.",
			"CSV either requires a string to translate to an array or an array to translate to a string.")
	}
}

// primJSON converts between a JSON document and the value tree
// astFromJSONValue/jsonValueFromAST describe.
func (c *ctx) primJSON(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	switch rv.Kind {
	case tree.KindString:
		parsed, err := jsonvalue.ParseJSON(rv.Str)
		if err != nil {
			return nil, c.err(loc, "Failed to parse JSON.", fmt.Sprintf("Invalid JSON:\n%s", rv.Str))
		}
		return astFromJSONValue(parsed, loc), nil
	case tree.KindArray:
		converted, err := c.jsonValueFromAST(rv)
		if err != nil {
			return nil, err
		}
		raw, err := converted.MarshalJSON()
		if err != nil {
			return nil, c.err(loc, "Failed to stringify JSON.", err.Error())
		}
		return tree.NewString(string(raw), loc), nil
	default:
		return nil, c.err(loc, "Invalid argument to json.",
			"JSON either requires a string to translate to an array or an array to translate to a string.")
	}
}

// primRotate dyadically cycles rarg's elements by larg positions (a
// positive count moves them leftward); monadically it reverses rarg
// (passing non-arrays through untouched).
func (c *ctx) primRotate(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if larg != nil {
		lv, err := c.realize(unoptionize(larg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		rv, err := c.realize(unoptionize(rarg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		if lv.Kind != tree.KindNum || lv.NumVal != math.Trunc(lv.NumVal) {
			return nil, c.err(loc, "Invalid rotation degree.",
				fmt.Sprintf("Rotate requires an integral argument to rotate by, instead found:\n%s", show(lv)))
		}
		rotate := int(lv.NumVal)
		var elems []*tree.Node
		if rv.Kind == tree.KindArray {
			elems = rv.Elems
		} else {
			elems = []*tree.Node{rv}
		}
		n := len(elems)
		out := make([]*tree.Node, n)
		for i := 0; i < n; i++ {
			out[i] = elems[((i+rotate)%n+n)%n]
		}
		return tree.NewArray(out, loc), nil
	}

	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	if rv.Kind != tree.KindArray {
		return rv, nil
	}
	out := make([]*tree.Node, len(rv.Elems))
	for i, e := range rv.Elems {
		out[len(rv.Elems)-1-i] = e
	}
	return tree.NewArray(out, loc), nil
}

// primTake slices the first (or, for a negative count, last) larg
// elements of rarg. larg defaults to 1 when absent.
func (c *ctx) primTake(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	var lv *tree.Node
	if larg != nil {
		v, err := c.realize(larg, process.CaptureData)
		if err != nil {
			return nil, err
		}
		lv = v
	} else {
		lv = tree.NewNum(1, loc)
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	if lv.Kind != tree.KindNum || lv.NumVal != math.Trunc(lv.NumVal) {
		return nil, c.err(loc, "Invalid number to take.",
			fmt.Sprintf("Expected integral count to take, instead found:\n%s", show(lv)))
	}
	takenum := int(lv.NumVal)

	if rv.Kind != tree.KindArray {
		return rv, nil
	}
	abs := takenum
	if abs < 0 {
		abs = -abs
	}
	if abs > len(rv.Elems) {
		return nil, c.err(loc, "Index out of bounds error.",
			fmt.Sprintf("The given count to take is greater than the length of the array.  The count was:\n%s\nBut the array was:\n%s", show(lv), show(rv)))
	}
	if takenum >= 0 {
		return tree.NewArray(append([]*tree.Node(nil), rv.Elems[:takenum]...), loc), nil
	}
	start := len(rv.Elems) + takenum
	return tree.NewArray(append([]*tree.Node(nil), rv.Elems[start:]...), loc), nil
}

// primTranspose reorders rarg's axes per larg (a list of axis
// indices), or reverses them entirely when larg is absent.
func (c *ctx) primTranspose(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	var axes []int
	if larg != nil {
		lv, err := c.realize(larg, process.CaptureData)
		if err != nil {
			return nil, err
		}
		la := tree.Arrayify(lv)
		axes = make([]int, len(la.Elems))
		for i, e := range la.Elems {
			if e.Kind != tree.KindNum || e.NumVal < 0 || e.NumVal != math.Trunc(e.NumVal) {
				return nil, c.err(e.Location, "Invalid axis specifier.",
					fmt.Sprintf("Expected an integral positive numeric argument, but instead found:\n%s", show(e)))
			}
			axes[i] = int(e.NumVal)
		}
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	return c.transpose(axes, rv)
}

// primMaxMin is MaxLast/MinFirst: dyadically picks the greater/lesser
// of two values by compareNodes; monadically pops the last/first
// element off rarg (the empty array if rarg is empty; a non-array rarg
// is returned as is).
func (c *ctx) primMaxMin(isMax bool, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if larg != nil {
		lv, err := c.realize(unoptionize(larg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		rv, err := c.realize(unoptionize(rarg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		return minmax(isMax, lv, rv), nil
	}
	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	arr := tree.Arrayify(rv)
	if len(arr.Elems) == 0 {
		return tree.NewArray(nil, loc), nil
	}
	if isMax {
		return arr.Elems[len(arr.Elems)-1], nil
	}
	return arr.Elems[0], nil
}

// primConcat enlists rarg monadically; dyadically it flattens larg and
// rarg one level and appends rarg's elements after larg's.
func (c *ctx) primConcat(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	if larg == nil {
		return tree.NewArray([]*tree.Node{rv}, loc), nil
	}
	lv, err := c.realize(larg, process.CaptureData)
	if err != nil {
		return nil, err
	}
	out := append([]*tree.Node(nil), tree.Arrayify(lv).Elems...)
	out = append(out, tree.Arrayify(rv).Elems...)
	return tree.NewArray(out, loc), nil
}

// primOrder is </>: dyadically a boolean comparison (less-than for <,
// greater-than for >); monadically a grade (the permutation of rarg's
// indices that would sort it ascending for <, descending for >).
func (c *ctx) primOrder(isAscending bool, larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if larg != nil {
		lv, err := c.realize(unoptionize(larg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		rv, err := c.realize(unoptionize(rarg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		cmp := compareNodes(lv, rv)
		var truth bool
		if isAscending {
			truth = cmp < 0
		} else {
			truth = cmp > 0
		}
		v := 0.0
		if truth {
			v = 1.0
		}
		return tree.NewNum(v, loc), nil
	}

	if _, err := c.realize(unoptionize(larg), process.CaptureData); err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	arr := tree.Arrayify(rv)
	idx := make([]int, len(arr.Elems))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		cmp := compareNodes(arr.Elems[idx[a]], arr.Elems[idx[b]])
		if isAscending {
			return cmp < 0
		}
		return cmp > 0
	})
	out := make([]*tree.Node, len(idx))
	for i, v := range idx {
		out[i] = tree.NewNum(float64(v), loc)
	}
	return tree.NewArray(out, loc), nil
}

// primIndex returns rarg's larg-th element (larg must be a
// nonnegative integer within bounds).
func (c *ctx) primIndex(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	lv, err := c.realize(unoptionize(larg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	if rv.Kind != tree.KindArray {
		return nil, c.err(loc, "Expected array to index into.", fmt.Sprintf("The value supplied was instead:\n%s", show(rv)))
	}
	if lv.Kind != tree.KindNum {
		return nil, c.err(loc, "Expected numeric index.", fmt.Sprintf("The index supplied was:\n%s", show(lv)))
	}
	if lv.NumVal < 0 || lv.NumVal != math.Trunc(lv.NumVal) {
		return nil, c.err(loc, "Index must be a nonnegative integer.", fmt.Sprintf("The index supplied was: %s", show(lv)))
	}
	i := int(lv.NumVal)
	if i >= len(rv.Elems) {
		return nil, c.err(loc, "Index out of bounds.", fmt.Sprintf("The index %d is out of bounds of:\n%s", i, show(rv)))
	}
	return rv.Elems[i], nil
}

// primShapeLength is #: monadically it reports rarg's shape;
// dyadically it reshapes rarg's elements (cycled) into a template of
// the sizes named by larg.
func (c *ctx) primShapeLength(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if larg == nil {
		rv, err := c.realize(unoptionize(rarg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		shape := shapeOf(rv)
		out := make([]*tree.Node, len(shape))
		for i, n := range shape {
			out[i] = tree.NewNum(float64(n), loc)
		}
		return tree.NewArray(out, loc), nil
	}

	lv, err := c.realize(unoptionize(larg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	la := tree.Arrayify(lv)
	sizes := make([]int, len(la.Elems))
	for i, e := range la.Elems {
		if e.Kind != tree.KindNum || e.NumVal != math.Trunc(e.NumVal) {
			return nil, c.err(e.Location, "Invalid shape dimension.", fmt.Sprintf("Expected an integral size, instead found:\n%s", show(e)))
		}
		sizes[i] = int(e.NumVal)
	}
	ra := tree.Arrayify(rv)
	vals := ra.Elems
	if len(vals) < 1 {
		vals = []*tree.Node{tree.NewNum(0, loc)}
	}
	vind := 0
	return reshape(vals, &vind, sizes, 0, loc), nil
}

// primEqual reports full structural equality between larg and rarg.
func (c *ctx) primEqual(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	lv, err := c.realize(unoptionize(larg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	v := 0.0
	if tree.Equal(lv, rv) {
		v = 1.0
	}
	return tree.NewNum(v, loc), nil
}

// primIota is !: monadically it generates [0, rarg); dyadically it
// partitions rarg into groups, cutting a new group everywhere larg's
// corresponding element is falsy (and dropping that element).
func (c *ctx) primIota(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	if larg != nil {
		lv, err := c.realize(unoptionize(larg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		rv, err := c.realize(unoptionize(rarg), process.CaptureData)
		if err != nil {
			return nil, err
		}
		ls := tree.Arrayify(lv).Elems
		rs := tree.Arrayify(rv).Elems
		n := len(ls)
		if len(rs) < n {
			n = len(rs)
		}
		groups := [][]*tree.Node{nil}
		for i := 0; i < n; i++ {
			if isTruthy(ls[i]) {
				last := len(groups) - 1
				groups[last] = append(groups[last], rs[i])
			} else {
				groups = append(groups, nil)
			}
		}
		out := make([]*tree.Node, len(groups))
		for i, g := range groups {
			out[i] = tree.NewArray(g, loc)
		}
		return tree.NewArray(out, loc), nil
	}

	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}
	if rv.Kind != tree.KindNum {
		return nil, c.err(rv.Location, "Invalid argument to iota.",
			fmt.Sprintf("Iota expects a numeric argument for sequence length, but instead found:\n%s", show(rv)))
	}
	var out []*tree.Node
	for n := 0.0; n < rv.NumVal; n++ {
		out = append(out, tree.NewNum(n, loc))
	}
	return tree.NewArray(out, loc), nil
}

// primPipe is the named primitive pipe: it parses rarg's array of symbol pairs (expanding the
// --swap/--null macros first) into a Redirect policy, then evaluates
// (without running) larg and, if it resolved to a Command, rewrites
// its redirect policy rather than the default of passing both streams
// through to the terminal.
func (c *ctx) primPipe(larg, rarg *tree.Node, loc tree.Location) (*tree.Node, error) {
	rv, err := c.realize(unoptionize(rarg), process.CaptureData)
	if err != nil {
		return nil, err
	}

	pipeErr := func() error {
		return c.err(rv.Location, "Invalid arguments to pipe.",
			fmt.Sprintf("pipe expects pairs of symbols indicating rerouting.  It recieved:\n%s", show(rv)))
	}

	vs := expandPipeMacros(tree.Arrayify(rv).Elems)
	if len(vs)%2 != 0 {
		return nil, pipeErr()
	}

	redir := tree.DefaultRedirect()
	var stdoutSet, stderrSet bool
	for i := 0; i < len(vs); i += 2 {
		if vs[i].Kind != tree.KindSymbol || vs[i+1].Kind != tree.KindSymbol {
			return nil, pipeErr()
		}
		lsym, rsym := vs[i].Str, vs[i+1].Str

		var togo tree.RedirectTarget
		switch rsym {
		case "-o":
			togo = tree.ToStdout
		case "-e":
			togo = tree.ToStderr
		case "-n":
			togo = tree.ToNull
		default:
			return nil, pipeErr()
		}

		switch lsym {
		case "-o":
			if !stdoutSet || redir.Stdout == tree.ToNull {
				redir.Stdout = togo
			} else if togo != tree.ToNull && togo != redir.Stdout {
				redir.Stdout = tree.ToBoth
			}
			stdoutSet = true
		case "-e":
			if !stderrSet || redir.Stderr == tree.ToNull {
				redir.Stderr = togo
			} else if togo != tree.ToNull && togo != redir.Stderr {
				redir.Stderr = tree.ToBoth
			}
			stderrSet = true
		default:
			return nil, pipeErr()
		}
	}

	lv, err := c.evalCommand(unoptionize(larg))
	if err != nil {
		return nil, err
	}
	if lv.Kind == tree.KindCommand {
		return tree.NewCommand(lv.Name, lv.Args, lv.Stdin, redir, lv.Location), nil
	}
	return lv, nil
}

// expandPipeMacros replaces the --swap and --null convenience symbols
// with the four-symbol redirect sequences they stand for.
func expandPipeMacros(vs []*tree.Node) []*tree.Node {
	var out []*tree.Node
	for _, v := range vs {
		if v.Kind != tree.KindSymbol {
			out = append(out, v)
			continue
		}
		switch v.Str {
		case "--swap":
			out = append(out,
				tree.NewSymbol("-o", v.Location), tree.NewSymbol("-e", v.Location),
				tree.NewSymbol("-e", v.Location), tree.NewSymbol("-o", v.Location))
		case "--null":
			out = append(out,
				tree.NewSymbol("-o", v.Location), tree.NewSymbol("-n", v.Location),
				tree.NewSymbol("-e", v.Location), tree.NewSymbol("-n", v.Location))
		default:
			out = append(out, v)
		}
	}
	return out
}
