package dsv

import "io"

// Scanner provides a bufio.Scanner-style loop over a Reader.
//
// Example:
//
//	scanner, err := dsv.NewScanner(file, dsv.Options{Headers: true})
//	if err != nil {
//	    // invalid options
//	}
//	for scanner.Scan() {
//	    row := scanner.Row()
//	    // process row
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	reader *Reader
	row    *Row
	err    error
}

// NewScanner creates a Scanner reading delimited text from src.
func NewScanner(src io.Reader, opts Options) (*Scanner, error) {
	reader, err := NewReader(src, opts)
	if err != nil {
		return nil, err
	}
	return &Scanner{reader: reader}, nil
}

// Scan advances to the next row. It returns false at end of input or on
// error; after a false return, Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	row, err := s.reader.Read()
	if err == io.EOF {
		return false
	}
	if err != nil {
		s.err = err
		return false
	}
	s.row = row
	return true
}

// Row returns the current row. Only valid after Scan returns true.
func (s *Scanner) Row() *Row {
	return s.row
}

// Err returns the error that stopped scanning, or nil at clean end of
// input.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns the header values in effect once the first Scan has
// established them.
func (s *Scanner) Headers() []any {
	return s.reader.Headers()
}

// Reader returns the underlying Reader, for Rewind and separator
// inspection.
func (s *Scanner) Reader() *Reader {
	return s.reader
}
