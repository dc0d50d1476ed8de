// Package dsv provides streaming reading and writing of delimiter-separated
// tabular text: CSV and CSV-like dialects with arbitrary column and row
// separators.
//
// The package supports embedded separators and line breaks inside quoted
// fields, optional header-row semantics with duplicate-header
// disambiguation, row-separator auto-discovery, and an ordered,
// short-circuiting field-converter pipeline.
//
// # Absent fields
//
// An empty unquoted field parses as nil rather than the empty string,
// preserving the distinction between "field absent" (nothing between
// separators) and "field present but empty" (an explicit ""). Writers
// reproduce the distinction: nil renders as nothing, the empty string
// renders quoted.
//
// # Reading
//
// Reader yields one logical record per call, assembling records that span
// physical lines when quoted fields embed line breaks:
//
//	r, err := dsv.NewReader(file, dsv.Options{Headers: true, Converters: []any{"numeric"}})
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
//	    fmt.Println(row.Field("name"), row.Field("age"))
//	}
//
// Scanner wraps the same loop in bufio.Scanner style, and Parse loads a
// whole document into a Table.
//
// # Writing
//
// Writer is the exact inverse of the reader's grammar: any field the
// reader accepts round-trips through the writer and back unchanged.
//
//	w, _ := dsv.NewWriter(file, dsv.Options{})
//	w.Write([]any{"Alice", 30})
//	w.Flush()
//
// # Thread safety
//
// Each Reader, Writer, Scanner and Table owns its state and is not safe
// for concurrent use. The package-level converter registries are
// process-wide and unsynchronized; serialize concurrent registration.
package dsv

import (
	"io"
	"strings"
)

// Parse reads a complete document from input into a Table. Header
// handling follows opts; with headers active the Table's rows resolve
// fields by name.
//
// Example:
//
//	table, err := dsv.Parse("name,age\nAlice,30\nBob,25\n", dsv.Options{Headers: true})
//	row, _ := table.Row(0)
//	row.Field("name") // "Alice"
func Parse(input string, opts Options) (*Table, error) {
	r, err := NewReader(strings.NewReader(input), opts)
	if err != nil {
		return nil, err
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return newTable(r.Headers(), rows), nil
}

// ParseLine parses the first logical record of input and returns its field
// values. Returns nil for empty input.
//
// Example:
//
//	fields, _ := dsv.ParseLine(`a,"b,c",`+"\n", dsv.Options{})
//	// fields: []any{"a", "b,c", nil}
func ParseLine(line string, opts Options) ([]any, error) {
	r, err := NewReader(strings.NewReader(line), opts)
	if err != nil {
		return nil, err
	}
	row, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Values(), nil
}

// GenerateLine serializes one record into a single terminated line.
//
// Example:
//
//	line, _ := dsv.GenerateLine([]any{"a", "b,c", nil}, dsv.Options{RowSep: "\n"})
//	// line: "a,\"b,c\",\n"
func GenerateLine(fields []any, opts Options) (string, error) {
	return Generate([][]any{fields}, opts)
}

// Generate serializes multiple records into delimited text.
func Generate(records [][]any, opts Options) (string, error) {
	var sb strings.Builder
	w, err := NewWriter(&sb, opts)
	if err != nil {
		return "", err
	}
	if err := w.WriteAll(records); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Validate checks that input parses fully under opts. It returns nil for
// valid input and the first *ParseError otherwise.
//
//	if err := dsv.Validate(input, dsv.Options{}); err != nil {
//	    fmt.Println("invalid:", err)
//	}
func Validate(input string, opts Options) error {
	r, err := NewReader(strings.NewReader(input), opts)
	if err != nil {
		return err
	}
	for {
		if _, err := r.Read(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
