// Package lexer tokenizes a single source line of the array shell
// language into a stream of lexemes, each carrying the column of its
// first rune and a "followed" bit used by the parser to disambiguate
// partial application from ordinary juxtaposition.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/arrshell/arrsh/internal/charset"
)

// Position locates a diagnostic in the source. Line is always 1 for
// this language (a line is at most one expression), but the field is
// kept so internal/errors can share its formatting with tooling that
// does track multiple lines.
type Position struct {
	Line   int
	Column int
}

// Token is one lexeme: its literal value, the column (in runes) of its
// first character, and whether the very next rune is neither
// whitespace nor ')' nor end-of-line — the follow bit.
type Token struct {
	Val      string
	Col      int
	Followed bool
}

// Width returns the token's length in runes, used for caret spans.
func (t Token) Width() int {
	return len([]rune(t.Val))
}

// IsNum reports whether the token is a numeric literal.
func (t Token) IsNum() bool {
	r := []rune(t.Val)
	if len(r) == 0 {
		return false
	}
	if unicode.IsDigit(r[0]) {
		return true
	}
	return r[0] == '-' && len(r) > 1 && unicode.IsDigit(r[1])
}

// IsID reports whether the token is an identifier: alphabetic/underscore
// lead, or one of the language's reserved operator names.
func (t Token) IsID() bool {
	r := []rune(t.Val)
	if len(r) == 0 {
		return false
	}
	return unicode.IsLetter(r[0]) || r[0] == '_' || charset.IsKnownIdent(t.Val)
}

// IsSymbol reports whether the token is a "-name" symbol literal: at
// least two runes, leading '-', with no digit anywhere in it.
func (t Token) IsSymbol() bool {
	r := []rune(t.Val)
	if len(r) < 2 || r[0] != '-' {
		return false
	}
	for _, c := range r {
		if unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

// IsString reports whether the token is a quoted string literal.
func (t Token) IsString() bool {
	return strings.HasPrefix(t.Val, "\"")
}

// LexError is a located tokenizer failure.
type LexError struct {
	Col     int
	Len     int
	Message string
	Note    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, 1, e.Col+1)
}

func lexErr(col, length int, msg, note string) *LexError {
	return &LexError{Col: col, Len: length, Message: msg, Note: note}
}

// cursor walks a line rune-by-rune with one-rune lookahead, tracking
// the rune column of the current position.
type cursor struct {
	runes []rune
	pos   int
}

func newCursor(line string) *cursor {
	return &cursor{runes: []rune(line)}
}

func (c *cursor) peek() (rune, bool) {
	if c.pos >= len(c.runes) {
		return 0, false
	}
	return c.runes[c.pos], true
}

func (c *cursor) peekAt(n int) (rune, bool) {
	if c.pos+n >= len(c.runes) {
		return 0, false
	}
	return c.runes[c.pos+n], true
}

func (c *cursor) next() (rune, bool) {
	r, ok := c.peek()
	if ok {
		c.pos++
	}
	return r, ok
}

func isAlnum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// Tokenize converts one source line into a token stream. It stops and
// returns the first lexical error encountered.
func Tokenize(line string) ([]Token, error) {
	var toks []Token
	c := newCursor(line)

	for {
		startCol := c.pos
		ch, ok := c.next()
		if !ok {
			break
		}

		pushed := true
		switch {
		case unicode.IsDigit(ch):
			tok, err := lexNumber(c, ch, startCol)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)

		case unicode.IsLetter(ch) || ch == '_':
			tok := lexIdent(c, ch, startCol)
			toks = append(toks, tok)

		case ch == '"':
			tok, err := lexString(c, startCol)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)

		case ch == '-' && peekIsDigit(c):
			tok, err := lexNumber(c, ch, startCol)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)

		case ch == '-' && peekIsAlphaOrDash(c):
			ts := lexSymbol(c, ch, startCol)
			toks = append(toks, ts...)

		case ch == rune(charset.Assign[0]) && peekIsRune(c, rune(charset.Assign[0])):
			c.next()
			toks = append(toks, Token{Val: charset.AliasAssignTok, Col: startCol})

		case ch == rune(charset.Pipe[0]) && peekIsRune(c, rune(charset.Pipe[0])):
			// "||" starts a comment: the rest of the line is discarded.
			return toks, nil

		case isSingleCharToken(ch):
			toks = append(toks, Token{Val: string(ch), Col: startCol})

		case ch == ')':
			toks = append(toks, Token{Val: ")", Col: startCol})

		case ch == ' ' || ch == '\t':
			pushed = false
			for {
				p, ok := c.peek()
				if !ok || (p != ' ' && p != '\t') {
					break
				}
				c.next()
			}

		case ch == '\n':
			return toks, nil

		default:
			return nil, lexErr(startCol, 1, "Unknown token", "This is a typo; this symbol does not exist.")
		}

		// The follow bit is read off the cursor right here, while it
		// still points one past the token just consumed; column math
		// over the finished token list can't recover it, since string
		// values drop their quotes and collapse escapes.
		if pushed && len(toks) > 0 {
			if p, ok := c.peek(); ok && p != ')' && p != ' ' && p != '\t' && p != '\n' {
				toks[len(toks)-1].Followed = true
			}
		}
	}

	return toks, nil
}

func isSingleCharToken(ch rune) bool {
	s := string(ch)
	if charset.IsPrimitiveGlyph(s) || charset.IsModifierGlyph(s) {
		return true
	}
	switch s {
	case charset.OpenParen, charset.Assign, charset.Pipe, charset.AntiPipe:
		return true
	}
	return false
}

func peekIsDigit(c *cursor) bool {
	r, ok := c.peek()
	return ok && unicode.IsDigit(r)
}

func peekIsAlphaOrDash(c *cursor) bool {
	r, ok := c.peek()
	return ok && (unicode.IsLetter(r) || r == '-')
}

func peekIsRune(c *cursor, want rune) bool {
	r, ok := c.peek()
	return ok && r == want
}

// lexNumber consumes digits and at most one internal '.'; a trailing
// '.' not followed by a digit is left unconsumed.
func lexNumber(c *cursor, first rune, startCol int) (Token, error) {
	var sb strings.Builder
	sb.WriteRune(first)

	sawDot := false
	for {
		p, ok := c.peek()
		if !ok {
			break
		}
		if !unicode.IsDigit(p) && p != '.' {
			break
		}
		if p == '.' {
			// Only consume the dot if a digit follows it, and only once.
			n, ok2 := c.peekAt(1)
			if sawDot || !ok2 || !unicode.IsDigit(n) {
				break
			}
			sawDot = true
		}
		sb.WriteRune(p)
		c.next()
	}

	return Token{Val: sb.String(), Col: startCol}, nil
}

func lexIdent(c *cursor, first rune, startCol int) Token {
	var sb strings.Builder
	sb.WriteRune(first)

	for {
		p, ok := c.peek()
		if !ok || !(isAlnum(p) || p == '_') {
			break
		}
		sb.WriteRune(p)
		c.next()
	}

	return Token{Val: sb.String(), Col: startCol}
}

func lexString(c *cursor, startCol int) (Token, error) {
	var sb strings.Builder
	sb.WriteRune('"')
	lastCol := startCol

	for {
		p, ok := c.peek()
		if !ok {
			return Token{}, lexErr(lastCol+1, 1, "Unexpected EOF!", "While parsing a string, EOF was reached.  Expect terminating quote.")
		}
		lastCol = c.pos

		if p == '\\' {
			c.next()
			esc, ok := c.peek()
			if !ok {
				return Token{}, lexErr(lastCol+1, 1, "Unexpected EOF!", "While parsing a string escape code, EOF was reached.")
			}
			lastCol = c.pos
			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			default:
				sb.WriteRune('\\')
				sb.WriteRune(esc)
			}
			c.next()
			continue
		}

		c.next()
		if p == '"' {
			break
		}
		sb.WriteRune(p)
	}

	return Token{Val: sb.String(), Col: startCol}, nil
}

// lexSymbol consumes a "-name" or "--name" symbol token, or a lone
// "--" split into two one-character tokens.
func lexSymbol(c *cursor, first rune, startCol int) []Token {
	var sb strings.Builder
	sb.WriteRune(first)

	second, _ := c.next()
	sb.WriteRune(second)

	sawAlpha := unicode.IsLetter(second)

	for {
		p, ok := c.peek()
		if !ok {
			break
		}
		if unicode.IsLetter(p) || (sawAlpha && unicode.IsDigit(p)) {
			sb.WriteRune(p)
			if unicode.IsLetter(p) {
				sawAlpha = true
			}
			c.next()
			continue
		}
		break
	}

	str := sb.String()
	if str == "--" {
		return []Token{
			{Val: "-", Col: startCol, Followed: true},
			{Val: "-", Col: startCol + 1},
		}
	}
	return []Token{{Val: str, Col: startCol}}
}

// MoreThere reports whether the remaining token stream still has a
// token that can begin another array element: not a closing paren,
// not an assignment/alias-assignment marker, not the end-operator
// marker, not a pipe/antipipe, and not a "true operator" (modifier
// glyph) unless it is also a known primitive name.
func MoreThere(toks []Token) bool {
	if len(toks) == 0 {
		return false
	}
	v := toks[0].Val
	if v == ")" || v == charset.Assign || v == charset.AliasAssignTok || v == charset.EndOperator || v == charset.Pipe || v == charset.AntiPipe {
		return false
	}
	if charset.IsModifierGlyph(v) && !charset.IsKnownIdent(v) {
		return false
	}
	return true
}
