// Package dsv provides configurable options for delimited-text parsing and
// writing.
package dsv

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RowSepAuto requests row-separator auto-discovery: the reader peeks ahead
// in the source for the first line-ending sequence and adopts it. See
// resolveRowSep for the exact rules.
const RowSepAuto = "auto"

// Options configures parsing and writing behavior. The option set is
// closed: every field is validated at construction and invalid values are
// reported immediately via OptionsError, never lazily during reads.
type Options struct {
	// ColSep is the literal column separator. Any non-empty string.
	// Default: ","
	ColSep string

	// RowSep is the literal row separator, or RowSepAuto to discover the
	// first line-ending sequence in the input. Writers resolve RowSepAuto
	// to the platform default.
	// Default: RowSepAuto
	RowSep string

	// Quote is the quote character.
	// Default: '"'
	Quote rune

	// Headers controls header-row semantics:
	//   - nil or false: no header handling
	//   - true: the first record is consumed as headers
	//   - []string: used directly as headers, no record is consumed
	//   - string: split by ColSep into header names
	// Default: nil
	Headers any

	// ReturnHeaders, when headers are active, also emits the header row
	// itself as the first yielded Row, flagged as a header row, instead of
	// silently consuming it.
	// Default: false
	ReturnHeaders bool

	// SkipBlanks suppresses zero-field (blank-line) records from
	// iteration.
	// Default: false
	SkipBlanks bool

	// Converters lists converters applied to data-row fields, in order.
	// Each entry is a registered name (string) or a Converter /
	// FieldConverter value.
	// Default: none
	Converters []any

	// HeaderConverters lists converters applied only to header values.
	// Default: none
	HeaderConverters []any

	// ForceQuotes makes the writer quote every non-absent field.
	// Default: false
	ForceQuotes bool

	// WriteHeaders makes the writer emit the configured header row before
	// the first record. Requires Headers to be a literal []string or
	// string.
	// Default: false
	WriteHeaders bool

	// Registry resolves Converters names. Nil uses DefaultConverters.
	Registry *Registry

	// HeaderRegistry resolves HeaderConverters names. Nil uses
	// DefaultHeaderConverters.
	HeaderRegistry *Registry
}

// DefaultOptions returns the default configuration: comma columns,
// auto-discovered rows, double-quote quoting, no headers, no converters.
func DefaultOptions() Options {
	return Options{
		ColSep: ",",
		RowSep: RowSepAuto,
		Quote:  '"',
	}
}

// normalized fills zero values with defaults so that the zero Options is
// usable as-is.
func (o Options) normalized() Options {
	if o.ColSep == "" {
		o.ColSep = ","
	}
	if o.RowSep == "" {
		o.RowSep = RowSepAuto
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	if o.Registry == nil {
		o.Registry = DefaultConverters
	}
	if o.HeaderRegistry == nil {
		o.HeaderRegistry = DefaultHeaderConverters
	}
	return o
}

// Validate checks the full option set, including converter-name
// resolution, and returns an *OptionsError for the first problem found.
func (o Options) Validate() error {
	n := o.normalized()

	if !validQuote(n.Quote) {
		return &OptionsError{Field: "Quote", Message: "invalid quote character"}
	}
	if strings.ContainsRune(n.ColSep, n.Quote) {
		return &OptionsError{Field: "ColSep", Message: "column separator contains the quote character"}
	}
	if n.RowSep != RowSepAuto && n.RowSep != "" && strings.ContainsRune(n.RowSep, n.Quote) {
		return &OptionsError{Field: "RowSep", Message: "row separator contains the quote character"}
	}

	switch h := n.Headers.(type) {
	case nil, bool, []string:
	case string:
		if h == "" {
			return &OptionsError{Field: "Headers", Message: "header string is empty"}
		}
	default:
		return &OptionsError{Field: "Headers", Message: fmt.Sprintf("unsupported type %T", h)}
	}

	if n.WriteHeaders {
		switch n.Headers.(type) {
		case []string, string:
		default:
			return &OptionsError{Field: "WriteHeaders", Message: "requires literal headers"}
		}
	}

	if _, err := newPipeline(n.Converters, n.Registry, "Converters"); err != nil {
		return err
	}
	if _, err := newPipeline(n.HeaderConverters, n.HeaderRegistry, "HeaderConverters"); err != nil {
		return err
	}
	return nil
}

// headerNames returns the literal header names carried by the Headers
// option, or nil when headers come from the first record (or are off).
func (o Options) headerNames() []string {
	switch h := o.Headers.(type) {
	case []string:
		return h
	case string:
		return strings.Split(h, o.ColSep)
	default:
		return nil
	}
}

// headersRequested reports whether any header handling was configured.
func (o Options) headersRequested() bool {
	switch h := o.Headers.(type) {
	case nil:
		return false
	case bool:
		return h
	default:
		return true
	}
}

// validQuote reports whether r can serve as the quote character.
func validQuote(r rune) bool {
	return r != 0 && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
