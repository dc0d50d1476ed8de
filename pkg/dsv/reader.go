// Package dsv provides the streaming record reader.
package dsv

import (
	"bufio"
	"io"

	"github.com/shapestone/shape-dsv/internal/tokenizer"
)

// Reader reads logical records from delimited text one at a time.
//
// A Reader owns its resolved separators and converter pipelines; separators
// are resolved once at construction (including row-separator discovery when
// RowSep is auto) and are immutable afterwards. Records are produced
// strictly on demand: no more input is buffered than the current record
// needs.
//
// Example:
//
//	r, err := dsv.NewReader(file, dsv.Options{Headers: true})
//	if err != nil {
//	    // invalid options
//	}
//	for {
//	    row, err := r.Read()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // malformed input
//	    }
//	    name := row.Field("name")
//	    _ = name
//	}
type Reader struct {
	src    io.Reader
	seeker io.Seeker // nil when src cannot rewind
	br     *bufio.Reader
	tok    *tokenizer.Tokenizer

	opts       Options
	colSep     string
	rowSep     string
	conv       *Pipeline
	headerConv *Pipeline

	headers    []any
	headerDone bool
	pending    *Row // header row awaiting emission under ReturnHeaders
	line       int  // logical records read so far
}

// NewReader creates a Reader over src. Options are validated and the row
// separator is resolved before the first read; discovery peeks ahead
// without consuming data. Returns an *OptionsError for invalid options.
func NewReader(src io.Reader, opts Options) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.normalized()

	conv, err := newPipeline(opts.Converters, opts.Registry, "Converters")
	if err != nil {
		return nil, err
	}
	headerConv, err := newPipeline(opts.HeaderConverters, opts.HeaderRegistry, "HeaderConverters")
	if err != nil {
		return nil, err
	}

	rowSep := opts.RowSep
	var br *bufio.Reader
	if rowSep == RowSepAuto {
		rowSep, br, err = resolveRowSep(src)
		if err != nil {
			return nil, err
		}
	} else {
		br = bufio.NewReader(src)
	}

	seeker, _ := src.(io.Seeker)
	return &Reader{
		src:        src,
		seeker:     seeker,
		br:         br,
		tok:        tokenizer.New(br, opts.ColSep, rowSep, opts.Quote),
		opts:       opts,
		colSep:     opts.ColSep,
		rowSep:     rowSep,
		conv:       conv,
		headerConv: headerConv,
	}, nil
}

// ColSep returns the column separator in effect.
func (r *Reader) ColSep() string {
	return r.colSep
}

// RowSep returns the row separator in effect, after any auto-discovery.
func (r *Reader) RowSep() string {
	return r.rowSep
}

// Line returns the 1-based count of logical records read so far, including
// a consumed header record and records suppressed by SkipBlanks.
func (r *Reader) Line() int {
	return r.line
}

// Headers returns the header values in effect, or nil before the header
// record has been read (or when headers are off).
func (r *Reader) Headers() []any {
	out := make([]any, len(r.headers))
	copy(out, r.headers)
	return out
}

// Read returns the next logical record as a Row.
//
// With headers active the first call establishes them (consuming the first
// record unless literal headers were configured); under ReturnHeaders the
// header row itself is yielded first, flagged via Row.HeaderRow. Read
// returns io.EOF at exhaustion, idempotently, and a *ParseError for
// malformed input. A custom converter's error propagates unmodified.
func (r *Reader) Read() (*Row, error) {
	if !r.headerDone && r.opts.headersRequested() {
		if err := r.establishHeaders(); err != nil {
			return nil, err
		}
	}
	if r.pending != nil {
		row := r.pending
		r.pending = nil
		return row, nil
	}

	for {
		record, err := r.tok.ReadRecord()
		if err != nil {
			return nil, err
		}
		r.line++
		if len(record) == 0 && r.opts.SkipBlanks {
			continue
		}
		values, err := r.conv.Apply(rawValues(record), r.line)
		if err != nil {
			return nil, err
		}
		return NewRow(r.headers, values), nil
	}
}

// ReadAll exhausts the reader, returning every remaining row.
func (r *Reader) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// Rewind repositions the source to its start and resets the header cache
// and line count, so header detection re-runs exactly as on a fresh read.
// The separators resolved at construction stay in effect. Returns
// ErrNotSeekable when the source cannot seek.
func (r *Reader) Rewind() error {
	if r.seeker == nil {
		return ErrNotSeekable
	}
	if _, err := r.seeker.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r.br.Reset(r.src)
	r.tok.Reset(r.br)
	r.headers = nil
	r.headerDone = false
	r.pending = nil
	r.line = 0
	return nil
}

// establishHeaders resolves the Headers option: literal names are adopted
// without consuming a record, otherwise the first record is consumed and
// routed through the header pipeline. Under ReturnHeaders the header row
// is queued for emission.
func (r *Reader) establishHeaders() error {
	r.headerDone = true

	var raw []any
	if names := r.opts.headerNames(); names != nil {
		raw = make([]any, len(names))
		for i, n := range names {
			raw[i] = n
		}
	} else {
		record, err := r.tok.ReadRecord()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		r.line++
		raw = rawValues(record)
	}

	headers, err := r.headerConv.Apply(raw, r.line)
	if err != nil {
		return err
	}
	r.headers = headers

	if r.opts.ReturnHeaders {
		values := make([]any, len(headers))
		copy(values, headers)
		r.pending = newHeaderRow(headers, values)
	}
	return nil
}

// rawValues maps tokenizer fields to values: absent fields become nil,
// everything else its text.
func rawValues(record []tokenizer.Field) []any {
	values := make([]any, len(record))
	for i, f := range record {
		if f.Null {
			continue
		}
		values[i] = f.Text
	}
	return values
}
