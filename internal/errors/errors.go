// Package errors formats diagnostics with source context, line/column
// information, and a caret span pointing at the offending token.
package errors

import (
	"fmt"
	"strings"

	"github.com/arrshell/arrsh/internal/lexer"
)

// CompilerError represents a single diagnostic with position and context.
// Length is the width, in runes, of the token the caret span should
// cover; it defaults to 1 when zero so older construction sites that
// don't set it still draw a single caret.
type CompilerError struct {
	Message string
	Note    string
	Source  string
	File    string
	Pos     lexer.Position
	Length  int
}

// NewCompilerError creates a new compiler error with a single-column caret.
func NewCompilerError(pos lexer.Position, message, source, file string) *CompilerError {
	return &CompilerError{
		Pos:     pos,
		Message: message,
		Source:  source,
		File:    file,
		Length:  1,
	}
}

// NewCompilerErrorSpan creates a new compiler error whose caret spans
// `length` runes starting at pos, matching the value tree's
// Location(column, length) pairs.
func NewCompilerErrorSpan(pos lexer.Position, length int, message, note, source, file string) *CompilerError {
	if length < 1 {
		length = 1
	}
	return &CompilerError{
		Pos:     pos,
		Length:  length,
		Message: message,
		Note:    note,
		Source:  source,
		File:    file,
	}
}

func (e *CompilerError) caretWidth() int {
	if e.Length < 1 {
		return 1
	}
	return e.Length
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Format formats the error message with source context.
// If color is true, ANSI color codes are used for terminal output.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	// File and position header
	if e.File != "" {
		sb.WriteString(fmt.Sprintf("Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("Error at line %d:%d\n", e.Pos.Line, e.Pos.Column))
	}

	// Extract the relevant source line
	sourceLine := e.getSourceLine(e.Pos.Line)
	if sourceLine != "" {
		// Line number and source
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(sourceLine)
		sb.WriteString("\n")

		// Caret indicator, spanning the full faulty token.
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m") // Red bold
		}
		sb.WriteString(strings.Repeat("^", e.caretWidth()))
		if color {
			sb.WriteString("\033[0m") // Reset
		}
		sb.WriteString("\n")
	}

	// Error message
	if color {
		sb.WriteString("\033[1m") // Bold
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m") // Reset
	}

	if e.Note != "" {
		sb.WriteString("\n")
		if color {
			sb.WriteString("\033[35m") // Magenta
		}
		sb.WriteString("Note: ")
		if color {
			sb.WriteString("\033[33m") // Yellow
		}
		sb.WriteString(e.Note)
		if color {
			sb.WriteString("\033[0m") // Reset
		}
	}

	return sb.String()
}

// getSourceLine extracts a specific line from the source code.
// Lines are 1-indexed.
func (e *CompilerError) getSourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}

	return lines[lineNum-1]
}

