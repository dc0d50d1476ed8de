package tokenizer

import (
	"errors"
	"fmt"
)

// Malformed-input sentinels. Each is always wrapped in a *ParseError that
// carries position information.
var (
	// ErrBareQuote indicates a quote character inside an unquoted field.
	ErrBareQuote = errors.New("bare quote in unquoted field")

	// ErrStrayQuote indicates text directly following a closing quote.
	ErrStrayQuote = errors.New("unexpected text after closing quote")

	// ErrUnclosedQuote indicates a quoted field left open at end of input.
	ErrUnclosedQuote = errors.New("unclosed quoted field")

	// ErrBareLineBreak indicates a raw CR or LF inside an unquoted field.
	ErrBareLineBreak = errors.New("bare line break in unquoted field")
)

// ParseError reports malformed input with position information.
// Lines count physical lines; columns are 1-indexed byte offsets into the
// line where the error occurred.
type ParseError struct {
	// StartLine is the physical line where the current record began.
	StartLine int
	// Line is the physical line where the error occurred.
	Line int
	// Column is the 1-indexed byte column of the error.
	Column int
	// Err is the underlying sentinel.
	Err error
}

// Error returns a formatted message with position information.
func (e *ParseError) Error() string {
	if e.StartLine == e.Line {
		return fmt.Sprintf("parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error on line %d (record started on line %d), column %d: %v",
		e.Line, e.StartLine, e.Column, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ParseError) Unwrap() error {
	return e.Err
}
