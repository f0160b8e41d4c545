// Package parser builds a value tree from a tokenized source line:
// atoms, arrays, operator (modifier) application, trains, function
// calls, and the pipe/antipipe command chain, finishing with the
// top-level assignment/alias-assignment/bare-command dispatch.
package parser

import (
	"strconv"

	"github.com/arrshell/arrsh/internal/charset"
	"github.com/arrshell/arrsh/internal/env"
	"github.com/arrshell/arrsh/internal/errors"
	"github.com/arrshell/arrsh/internal/lexer"
	"github.com/arrshell/arrsh/internal/semantics"
	"github.com/arrshell/arrsh/internal/tree"
)

// parser carries the mutable token cursor and the read-only context
// (source text, file name, environment) threaded through every parse
// function.
type parser struct {
	toks   []lexer.Token
	env    *env.Env
	source string
	file   string
}

func newErr(p *parser, col, length int, msg, note string) error {
	return errors.NewCompilerErrorSpan(toLexPos(col), length, msg, note, p.source, p.file)
}

func toLexPos(col int) lexPosition {
	return lexPosition{Line: 1, Column: col + 1}
}

// lexPosition is a type alias kept local so this file doesn't need to
// import lexer twice under two names; it is exactly lexer.Position.
type lexPosition = lexer.Position

func (p *parser) snapshot() []lexer.Token {
	cp := make([]lexer.Token, len(p.toks))
	copy(cp, p.toks)
	return cp
}

func (p *parser) restore(saved []lexer.Token) {
	p.toks = saved
}

func (p *parser) peek() (lexer.Token, bool) {
	if len(p.toks) == 0 {
		return lexer.Token{}, false
	}
	return p.toks[0], true
}

func (p *parser) pop() lexer.Token {
	t := p.toks[0]
	p.toks = p.toks[1:]
	return t
}

// parseRes pairs a parsed node with its "followed" bit (whether the
// last token consumed for it touched the next one).
type parseRes struct {
	v   *tree.Node
	isF bool
}

// ParseCommands parses one full source line into a single top-level
// node: a bare command, an Assign, or an AliasAssign. Returns (nil,
// nil) for a blank line.
func ParseCommands(toks []lexer.Token, source, file string, e *env.Env) (*tree.Node, error) {
	p := &parser{toks: toks, env: e, source: source, file: file}
	return p.parseCommands()
}

func (p *parser) parseCommands() (*tree.Node, error) {
	if len(p.toks) == 0 {
		return nil, nil
	}

	n, err := p.parseCommand()
	if err != nil {
		return nil, err
	}

	var result *tree.Node

	switch {
	case p.peekIs(charset.Assign):
		ident, ok := identOf(stripApply(n))
		if !ok {
			t, _ := p.peek()
			return nil, newErr(p, t.Col, t.Width(), "Identifier must be a valid name.",
				"A valid name consists of any alphabetic character or an underscore followed by any number of alphanumeric characters or underscores.")
		}
		tok := p.pop()
		value, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		result = tree.NewAssign(ident, value, tree.Location{Col: tok.Col, Len: tok.Width()})

	case p.peekIs(charset.AliasAssignTok):
		ident, ok := identOf(stripApply(n))
		if !ok {
			t, _ := p.peek()
			return nil, newErr(p, t.Col, t.Width(), "Identifier must be a valid name.",
				"A valid name consists of any alphabetic character or an underscore followed by any number of alphanumeric characters or underscores.")
		}
		tok := p.pop()
		value, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		result = tree.NewAliasAssign(ident, value, tree.Location{Col: tok.Col, Len: tok.Width()})

	default:
		result = n
	}

	if len(p.toks) > 0 {
		t, _ := p.peek()
		return nil, newErr(p, t.Col, t.Width(), "Expected one command per line.", "Use newline to separate commands.")
	}

	return result, nil
}

func (p *parser) peekIs(val string) bool {
	t, ok := p.peek()
	return ok && t.Val == val
}

func identOf(n *tree.Node) (string, bool) {
	if n.Kind == tree.KindIdent {
		return n.Str, true
	}
	return "", false
}

// parseCommand handles the pipe/antipipe chain: f | g pipes f into g;
// f ] g pipes g into f (operands swapped before building the Apply).
func (p *parser) parseCommand() (*tree.Node, error) {
	f, err := p.parseFcall()
	if err != nil {
		return nil, err
	}

	for {
		t, ok := p.peek()
		if !ok || (t.Val != charset.Pipe && t.Val != charset.AntiPipe) {
			break
		}
		pipeTok := p.pop()

		f2, err := p.parseFcall()
		if err != nil {
			return nil, err
		}

		if pipeTok.Val == charset.AntiPipe {
			f, f2 = f2, f
		}
		f2 = stripApply(f2)

		if !semantics.IsFn(f2, p.env) {
			col, length := f2.Location.Col, f2.Location.Len
			if length == 0 {
				col, length = pipeTok.Col, pipeTok.Width()
			}
			return nil, newErr(p, col, length, "Piping into non-function.",
				"The following occupies a functional position, but is not a function:\n\r"+f2.String())
		}

		f = tree.NewApply(f, f2, nil, tree.Location{Col: pipeTok.Col, Len: pipeTok.Width()})
	}

	return f, nil
}

// parseFcall parses an optional left array, a train (the function),
// and an optional right side, combining them into one Apply node — or
// folding the sides into an already-partial train's open slots. The
// right side is a whole nested fcall, not just an array: everything to
// the right of a function belongs to its right argument, which is what
// makes evaluation right-to-left (`1 + 2 * 3` is `1 + (2 * 3)`).
func (p *parser) parseFcall() (*tree.Node, error) {
	lvals, err := p.parseArray()
	if err != nil {
		return nil, err
	}

	if !lexer.MoreThere(p.toks) {
		if lvals != nil {
			return lvals.v, nil
		}
		return tree.NewArray(nil, tree.Location{}), nil
	}

	fun, err := p.parseTrain()
	if err != nil {
		return nil, err
	}

	var rvals *tree.Node
	if lexer.MoreThere(p.toks) {
		if rvals, err = p.parseFcall(); err != nil {
			return nil, err
		}
	}
	var lval *tree.Node
	if lvals != nil {
		lval = lvals.v
	}

	loc := fun.Location

	if fun.Kind == tree.KindApply && !(fun.Right != nil && semantics.IsFn(fun.Right, p.env)) {
		left := fun.Left
		if lval != nil {
			left = lval
		}
		right := fun.Right
		if rvals != nil {
			right = rvals
		}
		return tree.NewApply(left, fun.Fn, right, loc), nil
	}

	return tree.NewApply(lval, fun, rvals, loc), nil
}

// parseTrain parses one function, then extends it into a run when the
// following operator expressions are function-shaped on their own
// terms (modifier-bound, a train, a command on PATH) or ride the
// previous token's follow bit; a bare primitive glyph never extends a
// run, since anything after it reads as its right argument instead.
// The run folds right-to-left into 2-function compositions, wrapping
// the outermost pair as a 3-function fork when three or more joined.
func (p *parser) parseTrain() (*tree.Node, error) {
	var fns []*tree.Node
	freeRide := false

	for lexer.MoreThere(p.toks) {
		saved := p.snapshot()

		newfnRes, err := p.parseOperator()
		if err != nil {
			return nil, err
		}
		isF := newfnRes.isF
		newfn := stripApply(newfnRes.v)

		joins := semantics.IntrinsicallyFn(newfn, p.env)
		if len(fns) == 0 {
			joins = semantics.StricterIsFn(newfn, p.env)
		}
		if !joins && !((isF || freeRide) && semantics.IsFn(newfn, p.env)) {
			p.restore(saved)
			break
		}

		freeRide = isF
		fns = append(fns, newfn)
	}

	if len(fns) == 0 {
		return nil, newErr(p, 0, 0, "Expected a function.", "This is an internal error.")
	}

	var trainLeft, trainRight *tree.Node
	hasTrainSides := false
	if len(fns) >= 3 {
		trainLeft = fns[0]
		trainRight = fns[len(fns)-1]
		fns = fns[1 : len(fns)-1]
		hasTrainSides = true
	}

	result := fns[len(fns)-1]
	fns = fns[:len(fns)-1]
	for len(fns) > 0 {
		f := fns[len(fns)-1]
		fns = fns[:len(fns)-1]
		result = tree.NewApply(nil, f, result, f.Location)
	}

	if hasTrainSides {
		result = tree.NewApply(trainLeft, result, trainRight, result.Location)
	}

	return result, nil
}

// parseOperator parses a single atom, then any trailing chain of
// modifier-glyph applications (`f/`, `f\;n;`, etc.).
func (p *parser) parseOperator() (parseRes, error) {
	expr, err := p.parseAtom()
	if err != nil {
		return parseRes{}, err
	}

	for {
		t, ok := p.peek()
		if !ok || !charset.IsModifierGlyph(t.Val) {
			break
		}
		oper := p.pop()
		length := oper.Width()
		saved := p.snapshot()

		rhs, err := p.parseFcall()
		if err != nil {
			return parseRes{}, err
		}

		var lastFollowed bool
		nextTok, hasNext := p.peek()
		if !hasNext || nextTok.Val != charset.EndOperator {
			p.restore(saved)
			lastFollowed = oper.Followed
			rhs = tree.NewArray(nil, tree.Location{Col: oper.Col, Len: length})
		} else {
			lastFollowed = p.pop().Followed
		}

		expr = parseRes{
			v:   tree.NewOperator(expr.v, oper.Val, rhs, tree.Location{Col: oper.Col, Len: length}),
			isF: lastFollowed,
		}
	}

	return expr, nil
}

// parseArray greedily parses adjacent atoms into an implicit array,
// stopping as soon as the next atom is (or resolves to) a function —
// that marks the start of the train/fcall portion of the expression.
// Returns nil when nothing at all was consumed.
func (p *parser) parseArray() (*parseRes, error) {
	var exprs []parseRes
	anything := false

	for lexer.MoreThere(p.toks) {
		saved := p.snapshot()

		expr, err := p.parseAtom()
		if err != nil {
			return nil, err
		}

		if semantics.StricterIsFn(expr.v, p.env) || (semantics.IsFn(expr.v, p.env) && expr.isF) {
			p.restore(saved)
			break
		}

		if expr.v.Kind == tree.KindSymbolList {
			for i, s := range expr.v.Symbols {
				exprs = append(exprs, parseRes{
					v:   tree.NewSymbol(s, tree.Location{Col: expr.v.Location.Col + i, Len: 1}),
					isF: expr.isF,
				})
			}
		} else {
			exprs = append(exprs, expr)
		}
		anything = true
	}

	if !anything {
		return nil, nil
	}
	if len(exprs) == 0 {
		return &parseRes{v: tree.NewArray(nil, tree.Location{}), isF: false}, nil
	}
	if len(exprs) == 1 {
		return &exprs[0], nil
	}

	loc := exprs[0].v.Location
	isF := exprs[len(exprs)-1].isF
	nodes := make([]*tree.Node, len(exprs))
	for i, e := range exprs {
		nodes[i] = e.v
	}
	return &parseRes{v: tree.NewArray(nodes, loc), isF: isF}, nil
}

// parseAtom parses the smallest unit: a number, symbol, identifier,
// string, or a parenthesized command.
func (p *parser) parseAtom() (parseRes, error) {
	t, ok := p.peek()
	if !ok {
		return parseRes{}, newErr(p, 0, 0, "Unexpected EOF parsing expression.", "This is an internal error.")
	}

	switch {
	case t.IsNum():
		tok := p.pop()
		n, err := strconv.ParseFloat(tok.Val, 64)
		if err != nil {
			return parseRes{}, newErr(p, tok.Col, tok.Width(), "Invalid numeric literal.", "Found "+tok.Val+".")
		}
		return parseRes{v: tree.NewNum(n, tree.Location{Col: tok.Col, Len: tok.Width()}), isF: tok.Followed}, nil

	case t.IsSymbol():
		tok := p.pop()
		w := tok.Width()
		runes := []rune(tok.Val)
		var v *tree.Node
		if runes[1] == '-' {
			v = tree.NewSymbol(tok.Val, tree.Location{Col: tok.Col, Len: w})
		} else {
			var syms []string
			for _, c := range runes[1:] {
				syms = append(syms, "-"+string(c))
			}
			v = tree.NewSymbolList(syms, tree.Location{Col: tok.Col, Len: w})
		}
		return parseRes{v: v, isF: tok.Followed}, nil

	case t.IsID():
		tok := p.pop()
		return parseRes{v: tree.NewIdent(tok.Val, tree.Location{Col: tok.Col, Len: tok.Width()}), isF: tok.Followed}, nil

	case t.IsString():
		tok := p.pop()
		str := string([]rune(tok.Val)[1:])
		return parseRes{v: tree.NewString(str, tree.Location{Col: tok.Col, Len: tok.Width()}), isF: tok.Followed}, nil

	case t.Val == charset.OpenParen:
		openTok := p.pop()
		e, perr := p.parseCommand()
		if perr != nil {
			return parseRes{}, perr
		}
		if len(p.toks) == 0 {
			return parseRes{}, newErr(p, 0, 0, "Expecting close parenthesis.",
				"Open parenthesis found here.")
		}
		nt, _ := p.peek()
		if nt.Val != charset.CloseParen {
			return parseRes{}, newErr(p, nt.Col, nt.Width(), "Expecting close parenthesis.",
				"Open parenthesis found at column "+strconv.Itoa(openTok.Col+1)+".")
		}
		closeTok := p.pop()
		return parseRes{v: e, isF: closeTok.Followed}, nil

	default:
		return parseRes{}, newErr(p, t.Col, t.Width(), "Expected expression.", "This is an internal error.")
	}
}

// stripApply unwraps a fully-empty Apply(None, f, None) wrapper — the
// shape parseTrain produces for a lone function — back to the bare f.
func stripApply(n *tree.Node) *tree.Node {
	if n.Kind == tree.KindApply && n.Left == nil && n.Right == nil {
		return n.Fn
	}
	return n
}
