// Package icterrors contains the error types produced by the lexer, table
// builder and PDA driver. A SyntaxError carries enough source-position
// information to print the offending line with a cursor under the problem
// character, the way a hand-written recursive-descent parser would.
package icterrors

import (
	"fmt"

	"github.com/riverstone-labs/redhorse/types"
)

// SyntaxError is an error located at a specific line and character position
// in some source text.
type SyntaxError struct {
	sourceLine string
	source     string

	// line the error occurred on, 1-indexed. 0 means no line is associated.
	line int

	// pos is the 1-indexed character-of-line the error occurred on.
	pos int

	message string
}

// NewSyntaxError creates a SyntaxError with no associated source position.
func NewSyntaxError(msg string) SyntaxError {
	return SyntaxError{message: msg}
}

// NewSyntaxErrorFromToken creates a SyntaxError located at the position of
// tok, with tok's lexeme as the offending source text.
func NewSyntaxErrorFromToken(msg string, tok types.Token) SyntaxError {
	return SyntaxError{
		message:    msg,
		sourceLine: tok.FullLine(),
		source:     tok.Lexeme(),
		pos:        tok.LinePos(),
		line:       tok.Line(),
	}
}

func (se SyntaxError) Error() string {
	if se.line == 0 {
		return fmt.Sprintf("syntax error: %s", se.message)
	}
	return fmt.Sprintf("syntax error: around line %d, char %d: %s", se.line, se.pos, se.message)
}

// Source returns the exact source text that caused the error, or "" if none
// is associated (such as for unexpected-EOF errors).
func (se SyntaxError) Source() string {
	return se.source
}

// Line returns the 1-indexed line the error occurred on, or 0 if unset.
func (se SyntaxError) Line() int {
	return se.line
}

// Position returns the 1-indexed character position the error occurred on,
// or 0 if unset.
func (se SyntaxError) Position() int {
	return se.pos
}

// FullMessage returns the error message along with the offending source line
// and a cursor pointing at the problem character, if a line is associated.
func (se SyntaxError) FullMessage() string {
	msg := se.Error()
	if se.line != 0 {
		msg = se.SourceLineWithCursor() + "\n" + msg
	}
	return msg
}

// SourceLineWithCursor returns the offending source line followed by a
// cursor line pointing at the error position, or "" if no source line is
// associated.
func (se SyntaxError) SourceLineWithCursor() string {
	if se.sourceLine == "" {
		return ""
	}
	cursor := ""
	for i := 0; i < se.pos-1; i++ {
		cursor += " "
	}
	return se.sourceLine + "\n" + cursor + "^"
}
