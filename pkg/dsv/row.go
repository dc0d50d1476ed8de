// Package dsv provides the header-aware Row abstraction.
package dsv

import "reflect"

// Row wraps a header sequence and a field sequence into a dual
// positional/associative view.
//
// Headers and fields are zipped positionally. The two sequences need not
// have equal length: any position beyond the shorter sequence pairs with
// nil on the shorter side. Headers are not required to be unique; lookups
// accept a minimum index so repeated calls can walk through every
// occurrence of a duplicated header.
//
// Rows are immutable after construction.
type Row struct {
	headers   []any
	fields    []any
	headerRow bool
}

// Pair is one positional (header, value) pairing of a Row.
type Pair struct {
	Header any
	Value  any
}

// FieldSpec selects a field by header name starting at a minimum position.
// Used with Row.Fields to disambiguate duplicate headers.
type FieldSpec struct {
	Header   any
	MinIndex int
}

// NewRow creates a data Row from a header sequence and a field sequence.
func NewRow(headers, fields []any) *Row {
	return &Row{headers: headers, fields: fields}
}

// newHeaderRow creates the Row emitted for the header record itself when
// ReturnHeaders is set.
func newHeaderRow(headers, fields []any) *Row {
	return &Row{headers: headers, fields: fields, headerRow: true}
}

// HeaderRow reports whether this Row is the emitted header row.
func (r *Row) HeaderRow() bool {
	return r.headerRow
}

// FieldRow reports whether this Row carries data fields. Mutually
// exclusive with HeaderRow.
func (r *Row) FieldRow() bool {
	return !r.headerRow
}

// Len returns the number of (header, value) pairs: the longer of the two
// sequences.
func (r *Row) Len() int {
	if len(r.headers) > len(r.fields) {
		return len(r.headers)
	}
	return len(r.fields)
}

// Headers returns the header at every pair position, nil-padded when
// fields outnumber headers.
func (r *Row) Headers() []any {
	out := make([]any, r.Len())
	copy(out, r.headers)
	return out
}

// Values returns the field value at every pair position, nil-padded when
// headers outnumber fields.
func (r *Row) Values() []any {
	out := make([]any, r.Len())
	copy(out, r.fields)
	return out
}

// Field looks up a field value. An int key returns the value at that
// position (nil when out of range); any other key is matched against
// headers from position 0. Returns nil when nothing matches.
func (r *Row) Field(key any) any {
	if i, ok := key.(int); ok {
		return r.valueAt(i)
	}
	return r.FieldFrom(key, 0)
}

// FieldFrom returns the value paired with the first header equal to header
// at position minIndex or later. Repeated calls with increasing minIndex
// walk through every occurrence of a duplicated header. Returns nil when
// no occurrence remains.
func (r *Row) FieldFrom(header any, minIndex int) any {
	return r.valueAt(r.IndexFrom(header, minIndex))
}

// Fields returns field values. With no selectors it returns every value in
// pair order. Each selector is an int position, a FieldSpec, or a header
// name; the looked-up values are returned in selector order.
func (r *Row) Fields(selectors ...any) []any {
	if len(selectors) == 0 {
		return r.Values()
	}
	out := make([]any, len(selectors))
	for i, sel := range selectors {
		if spec, ok := sel.(FieldSpec); ok {
			out[i] = r.FieldFrom(spec.Header, spec.MinIndex)
			continue
		}
		out[i] = r.Field(sel)
	}
	return out
}

// Index returns the first position whose header equals header, or -1.
func (r *Row) Index(header any) int {
	return r.IndexFrom(header, 0)
}

// IndexFrom returns the first position at or after minIndex whose header
// equals header, or -1.
func (r *Row) IndexFrom(header any, minIndex int) int {
	if minIndex < 0 {
		minIndex = 0
	}
	for i := minIndex; i < len(r.headers); i++ {
		if valueEqual(r.headers[i], header) {
			return i
		}
	}
	return -1
}

// HasHeader reports whether any pair carries the given header.
func (r *Row) HasHeader(header any) bool {
	return r.Index(header) >= 0
}

// HasField reports whether any pair carries the given value. A nil value
// matches an absent field, including the padding beyond a short field
// sequence.
func (r *Row) HasField(value any) bool {
	for i := 0; i < r.Len(); i++ {
		if valueEqual(r.valueAt(i), value) {
			return true
		}
	}
	return false
}

// Each yields the (header, value) pairs in positional order until fn
// returns false.
func (r *Row) Each(fn func(header, value any) bool) {
	for i := 0; i < r.Len(); i++ {
		if !fn(r.headerAt(i), r.valueAt(i)) {
			return
		}
	}
}

// Pairs returns every (header, value) pair in positional order.
func (r *Row) Pairs() []Pair {
	out := make([]Pair, r.Len())
	for i := range out {
		out[i] = Pair{Header: r.headerAt(i), Value: r.valueAt(i)}
	}
	return out
}

// ToMap builds a map from header to value by inserting pairs in positional
// order, so the value of a later duplicate header overwrites an earlier
// one.
func (r *Row) ToMap() map[any]any {
	m := make(map[any]any, r.Len())
	for i := 0; i < r.Len(); i++ {
		m[r.headerAt(i)] = r.valueAt(i)
	}
	return m
}

func (r *Row) headerAt(i int) any {
	if i < 0 || i >= len(r.headers) {
		return nil
	}
	return r.headers[i]
}

func (r *Row) valueAt(i int) any {
	if i < 0 || i >= len(r.fields) {
		return nil
	}
	return r.fields[i]
}

// valueEqual compares header and field values without panicking on
// non-comparable converter outputs.
func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}
