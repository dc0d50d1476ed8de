// Package dsv provides a fluent Table for building and manipulating
// delimited documents in memory.
package dsv

import "strings"

// Table represents a delimited document with optional headers and data
// rows. All setter methods return *Table to enable method chaining.
//
// Example:
//
//	table := dsv.NewTable().
//		SetHeaders("name", "age").
//		AddRow("Alice", 30).
//		AddRow("Bob", 25)
//	out, _ := table.Render(dsv.Options{})
type Table struct {
	headers []any
	rows    []*Row
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{}
}

// newTable creates a Table from parsed output.
func newTable(headers []any, rows []*Row) *Table {
	return &Table{headers: headers, rows: rows}
}

// SetHeaders sets the column headers. Rows added afterwards pair with
// them. Returns the Table for chaining.
func (t *Table) SetHeaders(headers ...string) *Table {
	t.headers = make([]any, len(headers))
	for i, h := range headers {
		t.headers[i] = h
	}
	return t
}

// AddRow appends a data row. Returns the Table for chaining.
func (t *Table) AddRow(fields ...any) *Table {
	t.rows = append(t.rows, NewRow(t.headers, fields))
	return t
}

// Headers returns the column headers, or nil when none are set.
func (t *Table) Headers() []any {
	out := make([]any, len(t.headers))
	copy(out, t.headers)
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the data row at index, and whether it exists.
func (t *Table) Row(index int) (*Row, bool) {
	if index < 0 || index >= len(t.rows) {
		return nil, false
	}
	return t.rows[index], true
}

// Rows returns all data rows.
func (t *Table) Rows() []*Row {
	out := make([]*Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Each yields the data rows in order until fn returns false.
func (t *Table) Each(fn func(*Row) bool) {
	for _, row := range t.rows {
		if !fn(row) {
			return
		}
	}
}

// Column returns the value paired with header in every data row, in row
// order. Rows without the header contribute nil.
func (t *Table) Column(header any) []any {
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row.Field(header)
	}
	return out
}

// Render serializes the Table: the header record first when headers are
// set, then every data row. The Headers and WriteHeaders options are
// ignored; the Table's own headers decide.
func (t *Table) Render(opts Options) (string, error) {
	opts.Headers = nil
	opts.WriteHeaders = false

	var sb strings.Builder
	w, err := NewWriter(&sb, opts)
	if err != nil {
		return "", err
	}
	if len(t.headers) > 0 {
		if err := w.Write(t.headers); err != nil {
			return "", err
		}
	}
	for _, row := range t.rows {
		if err := w.WriteRow(row); err != nil {
			return "", err
		}
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
