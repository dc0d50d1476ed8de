// Package dsv provides error types for delimited-text parsing.
package dsv

import (
	"errors"

	"github.com/shapestone/shape-dsv/internal/tokenizer"
)

// ParseError reports malformed input with position information. It is the
// error type returned by Reader.Read and the top-level parse functions for
// grammar violations; use errors.As to inspect the position and errors.Is
// against the sentinels below to classify the failure.
type ParseError = tokenizer.ParseError

// Malformed-input sentinels wrapped by *ParseError.
var (
	// ErrBareQuote indicates a quote character inside an unquoted field.
	ErrBareQuote = tokenizer.ErrBareQuote

	// ErrStrayQuote indicates text directly following a closing quote.
	ErrStrayQuote = tokenizer.ErrStrayQuote

	// ErrUnclosedQuote indicates a quoted field left open at end of input.
	ErrUnclosedQuote = tokenizer.ErrUnclosedQuote

	// ErrBareLineBreak indicates a raw CR or LF inside an unquoted field.
	ErrBareLineBreak = tokenizer.ErrBareLineBreak
)

// ErrNotSeekable is returned by Reader.Rewind when the underlying source
// does not implement io.Seeker.
var ErrNotSeekable = errors.New("dsv: source does not support rewind")

// OptionsError represents an invalid option configuration. All option
// problems are reported at construction time, never during reads.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "dsv: invalid " + e.Field + ": " + e.Message
}
