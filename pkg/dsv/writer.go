// Package dsv provides the buffered record writer.
package dsv

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Writer renders records into delimited text, one physical line per
// record, with minimal-but-correct quoting: a field is quoted exactly when
// its text is empty or contains the column separator, the quote character,
// or a raw CR/LF. An absent (nil) field renders as nothing at all, keeping
// the written form parseable back into the same record.
//
// Writes are buffered; call Flush before inspecting the destination.
type Writer struct {
	dst *bufio.Writer

	opts    Options
	colSep  string
	rowSep  string
	quote   rune
	headers []string

	wroteHeaders bool
	err          error
}

// NewWriter creates a Writer over dst. A RowSep of auto resolves to the
// platform default line terminator. Returns an *OptionsError for invalid
// options.
func NewWriter(dst io.Writer, opts Options) (*Writer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.normalized()

	rowSep := opts.RowSep
	if rowSep == RowSepAuto {
		rowSep = defaultRowSep()
	}

	var headers []string
	if opts.WriteHeaders {
		headers = opts.headerNames()
	}

	return &Writer{
		dst:     bufio.NewWriter(dst),
		opts:    opts,
		colSep:  opts.ColSep,
		rowSep:  rowSep,
		quote:   opts.Quote,
		headers: headers,
	}, nil
}

// Write renders one record: each field serialized, joined with the column
// separator, terminated with the row separator. Under WriteHeaders the
// configured header record is emitted before the first write.
func (w *Writer) Write(fields []any) error {
	if w.err != nil {
		return w.err
	}
	if len(w.headers) > 0 && !w.wroteHeaders {
		w.wroteHeaders = true
		record := make([]any, len(w.headers))
		for i, h := range w.headers {
			record[i] = h
		}
		if err := w.writeRecord(record); err != nil {
			return err
		}
	}
	return w.writeRecord(fields)
}

// WriteRow writes a Row's values in pair order.
func (w *Writer) WriteRow(row *Row) error {
	return w.Write(row.Values())
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(records [][]any) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered data to the destination.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	return w.err
}

func (w *Writer) writeRecord(fields []any) error {
	for i, field := range fields {
		if i > 0 {
			if _, err := w.dst.WriteString(w.colSep); err != nil {
				w.err = err
				return err
			}
		}
		if err := w.writeField(field); err != nil {
			w.err = err
			return err
		}
	}
	if _, err := w.dst.WriteString(w.rowSep); err != nil {
		w.err = err
		return err
	}
	return nil
}

func (w *Writer) writeField(field any) error {
	if field == nil {
		return nil
	}
	text := fieldText(field)
	if !w.opts.ForceQuotes && !w.needsQuote(text) {
		_, err := w.dst.WriteString(text)
		return err
	}

	if _, err := w.dst.WriteRune(w.quote); err != nil {
		return err
	}
	qs := string(w.quote)
	start := 0
	for {
		j := strings.Index(text[start:], qs)
		if j < 0 {
			break
		}
		if _, err := w.dst.WriteString(text[start : start+j+len(qs)]); err != nil {
			return err
		}
		if _, err := w.dst.WriteString(qs); err != nil {
			return err
		}
		start += j + len(qs)
	}
	if _, err := w.dst.WriteString(text[start:]); err != nil {
		return err
	}
	_, err := w.dst.WriteRune(w.quote)
	return err
}

// needsQuote implements the serialization contract: quote exactly when the
// text is empty, or contains the column separator, the quote character, or
// a raw CR/LF.
func (w *Writer) needsQuote(text string) bool {
	return text == "" ||
		strings.Contains(text, w.colSep) ||
		strings.ContainsRune(text, w.quote) ||
		strings.ContainsAny(text, "\r\n")
}

// fieldText coerces a non-nil field to its textual representation.
func fieldText(field any) string {
	switch v := field.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
