// Package tokenizer assembles logical records from delimiter-separated text.
//
// A logical record is one row of fields. It usually corresponds to a single
// physical line, but a quoted field may embed raw line breaks, in which case
// the record spans several physical lines and the tokenizer keeps appending
// lines until the record's grammar is complete.
//
// The tokenizer works on resolved separators: the column separator and row
// separator are literal strings of any length, fixed at construction.
// Separator discovery happens before the tokenizer exists.
package tokenizer

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"
)

// Field is one raw field of a record, before any conversion.
//
// Three states are distinguished:
//   - Null: nothing appeared between separators (an absent field)
//   - Quoted with empty Text: an explicit empty quoted field
//   - otherwise: the field's unescaped text
type Field struct {
	Text   string
	Quoted bool
	Null   bool
}

// Tokenizer reads logical records from a buffered source.
type Tokenizer struct {
	src    *bufio.Reader
	colSep string
	rowSep string
	quote  rune

	line int // physical lines consumed so far
	eof  bool
}

// New creates a Tokenizer over src with the given resolved separators and
// quote character. The row separator must already be a literal; callers
// resolve "auto" before constructing the tokenizer.
func New(src *bufio.Reader, colSep, rowSep string, quote rune) *Tokenizer {
	return &Tokenizer{
		src:    src,
		colSep: colSep,
		rowSep: rowSep,
		quote:  quote,
	}
}

// Reset points the tokenizer at a fresh source and clears all progress
// state. Used when the owning stream rewinds.
func (t *Tokenizer) Reset(src *bufio.Reader) {
	t.src = src
	t.line = 0
	t.eof = false
}

// Line returns the number of physical lines consumed so far.
func (t *Tokenizer) Line() int {
	return t.line
}

// ReadRecord assembles and returns the next logical record.
//
// It returns io.EOF when the source is exhausted (idempotently), or a
// *ParseError if the input violates the field grammar. A blank physical
// line yields an empty, zero-field record rather than a record containing
// one absent field.
func (t *Tokenizer) ReadRecord() ([]Field, error) {
	if t.eof {
		return nil, io.EOF
	}

	startLine := t.line + 1
	var buf []byte
	for {
		line, err := t.readLine()
		if err != nil && err != io.EOF {
			return nil, err
		}
		atEOF := err == io.EOF
		if len(line) == 0 && atEOF && len(buf) == 0 {
			t.eof = true
			return nil, io.EOF
		}
		if len(line) > 0 {
			t.line++
			buf = append(buf, line...)
		}

		// Strip exactly one trailing row separator. The separator may be
		// multi-character, so suffix trimming, never blind truncation.
		work := strings.TrimSuffix(string(buf), t.rowSep)
		if work == "" {
			return []Field{}, nil
		}

		fields, complete, err := t.match(work, startLine)
		if err != nil {
			return nil, err
		}
		if complete {
			return fields, nil
		}
		if atEOF {
			t.eof = true
			return nil, t.errAt(work, len(work), startLine, ErrUnclosedQuote)
		}
		// An unterminated quoted field spans into the next physical line.
		// Append it and re-match the accumulated buffer from the start.
	}
}

// readLine reads one physical line, up to and including the row separator.
// At end of input the final (possibly unterminated) line is returned along
// with io.EOF.
func (t *Tokenizer) readLine() ([]byte, error) {
	last := t.rowSep[len(t.rowSep)-1]
	var line []byte
	for {
		chunk, err := t.src.ReadBytes(last)
		line = append(line, chunk...)
		if err != nil {
			return line, err
		}
		if bytes.HasSuffix(line, []byte(t.rowSep)) {
			return line, nil
		}
	}
}

// match runs the field grammar over the working copy of the accumulated
// buffer. It returns the fields and complete=true when the buffer parses
// fully, complete=false when a quoted field is still open (more input is
// needed), or an error for locally decidable malformed input.
func (t *Tokenizer) match(work string, startLine int) ([]Field, bool, error) {
	fields := []Field{}
	i := 0
	for i < len(work) {
		// A bare column separator yields an absent field.
		if strings.HasPrefix(work[i:], t.colSep) {
			fields = append(fields, Field{Null: true})
			i += len(t.colSep)
			if i == len(work) {
				fields = append(fields, Field{Null: true})
				return fields, true, nil
			}
			continue
		}

		if r, _ := utf8.DecodeRuneInString(work[i:]); r == t.quote {
			text, next, ok := t.quotedField(work, i)
			if !ok {
				return nil, false, nil
			}
			fields = append(fields, Field{Text: text, Quoted: true})
			i = next
			if i == len(work) {
				return fields, true, nil
			}
			if !strings.HasPrefix(work[i:], t.colSep) {
				return nil, false, t.errAt(work, i, startLine, ErrStrayQuote)
			}
			i += len(t.colSep)
			if i == len(work) {
				fields = append(fields, Field{Null: true})
				return fields, true, nil
			}
			continue
		}

		// Unquoted: a maximal run up to the next column separator. Raw
		// quotes and raw line breaks are rejected here without reading any
		// further input.
		seg := work[i:]
		end := strings.Index(seg, t.colSep)
		if end >= 0 {
			seg = seg[:end]
		}
		if j := strings.IndexRune(seg, t.quote); j >= 0 {
			return nil, false, t.errAt(work, i+j, startLine, ErrBareQuote)
		}
		if j := strings.IndexAny(seg, "\r\n"); j >= 0 {
			return nil, false, t.errAt(work, i+j, startLine, ErrBareLineBreak)
		}
		fields = append(fields, Field{Text: seg})
		if end < 0 {
			return fields, true, nil
		}
		i += end + len(t.colSep)
		if i == len(work) {
			fields = append(fields, Field{Null: true})
			return fields, true, nil
		}
	}
	return fields, true, nil
}

// quotedField scans a quoted field starting at the opening quote. Doubled
// quotes unescape to a single quote. ok is false when no closing quote has
// appeared yet in the buffer.
func (t *Tokenizer) quotedField(work string, start int) (text string, next int, ok bool) {
	qlen := utf8.RuneLen(t.quote)
	var b strings.Builder
	i := start + qlen
	for {
		j := strings.IndexRune(work[i:], t.quote)
		if j < 0 {
			return "", 0, false
		}
		b.WriteString(work[i : i+j])
		k := i + j + qlen
		if k < len(work) {
			if r, _ := utf8.DecodeRuneInString(work[k:]); r == t.quote {
				b.WriteRune(t.quote)
				i = k + qlen
				continue
			}
		}
		return b.String(), k, true
	}
}

// errAt builds a positioned ParseError for an offset into the working copy.
func (t *Tokenizer) errAt(work string, pos int, startLine int, err error) error {
	before := work[:pos]
	line := startLine + strings.Count(before, "\n")
	col := pos - (strings.LastIndex(before, "\n") + 1) + 1
	return &ParseError{
		StartLine: startLine,
		Line:      line,
		Column:    col,
		Err:       err,
	}
}
