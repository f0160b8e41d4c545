package errors

import (
	"strings"
	"testing"

	"github.com/arrshell/arrsh/internal/lexer"
)

func TestNewCompilerErrorDefaultsToSingleCaret(t *testing.T) {
	e := NewCompilerError(lexer.Position{Line: 1, Column: 3}, "boom", "1 + 2", "<test>")
	if e.Length != 1 {
		t.Errorf("Length = %d, want 1", e.Length)
	}
}

func TestNewCompilerErrorSpanClampsToAtLeastOne(t *testing.T) {
	e := NewCompilerErrorSpan(lexer.Position{Line: 1, Column: 1}, 0, "boom", "", "x", "<test>")
	if e.Length != 1 {
		t.Errorf("Length = %d, want the zero length clamped to 1", e.Length)
	}

	e2 := NewCompilerErrorSpan(lexer.Position{Line: 1, Column: 1}, 4, "boom", "", "x", "<test>")
	if e2.Length != 4 {
		t.Errorf("Length = %d, want 4", e2.Length)
	}
}

func TestErrorIncludesMessage(t *testing.T) {
	e := NewCompilerErrorSpan(lexer.Position{Line: 1, Column: 5}, 2, "Unexpected token.", "a note", "1 + bad", "<test>")
	msg := e.Error()
	if !strings.Contains(msg, "Unexpected token.") {
		t.Errorf("Error() = %q, want it to contain the message", msg)
	}
	if !strings.Contains(msg, "a note") {
		t.Errorf("Error() = %q, want it to contain the note", msg)
	}
	if !strings.Contains(msg, "<test>") {
		t.Errorf("Error() = %q, want it to mention the file name", msg)
	}
}

func TestFormatCaretSpansTheFaultyToken(t *testing.T) {
	source := "1 + bad"
	e := NewCompilerErrorSpan(lexer.Position{Line: 1, Column: 5}, 3, "Unknown identifier.", "", source, "<test>")
	out := e.Format(false)
	lines := strings.Split(out, "\n")
	var sourceLine, caretLine string
	for i, l := range lines {
		if strings.Contains(l, source) {
			sourceLine = l
			caretLine = lines[i+1]
			break
		}
	}
	if sourceLine == "" {
		t.Fatalf("Format() = %q, want it to include the source line", out)
	}
	prefixLen := strings.Index(sourceLine, source)
	caretStart := strings.Index(caretLine, "^")
	if caretStart != prefixLen+4 {
		t.Errorf("caret starts at column %d, want %d (0-indexed column 4 plus the line-number prefix)", caretStart, prefixLen+4)
	}
	if strings.Count(caretLine, "^") != 3 {
		t.Errorf("caret width = %d, want 3", strings.Count(caretLine, "^"))
	}
}

func TestFormatWithoutFileUsesLineHeader(t *testing.T) {
	e := NewCompilerError(lexer.Position{Line: 1, Column: 1}, "boom", "x", "")
	out := e.Format(false)
	if !strings.HasPrefix(out, "Error at line") {
		t.Errorf("Format() = %q, want it to start with a line-based header when no file is set", out)
	}
}

func TestFormatColorWrapsWithANSICodes(t *testing.T) {
	e := NewCompilerErrorSpan(lexer.Position{Line: 1, Column: 1}, 1, "boom", "note", "x", "<test>")
	out := e.Format(true)
	if !strings.Contains(out, "\033[1;31m") {
		t.Errorf("Format(true) = %q, want it to contain the red caret color code", out)
	}
}
