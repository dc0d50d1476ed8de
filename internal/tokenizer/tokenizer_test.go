package tokenizer

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestTokenizer(input, colSep, rowSep string) *Tokenizer {
	return New(bufio.NewReader(strings.NewReader(input)), colSep, rowSep, '"')
}

func text(s string) Field   { return Field{Text: s} }
func quoted(s string) Field { return Field{Text: s, Quoted: true} }
func null() Field           { return Field{Null: true} }

// TestReadRecord tests record assembly across dialects.
func TestReadRecord(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		colSep string
		rowSep string
		want   [][]Field
	}{
		{
			name:   "simple records",
			input:  "a,b,c\n1,2,3\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{text("a"), text("b"), text("c")}, {text("1"), text("2"), text("3")}},
		},
		{
			name:   "no trailing terminator",
			input:  "a,b",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{text("a"), text("b")}},
		},
		{
			name:   "bare separators yield absent fields",
			input:  ",,,\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{null(), null(), null(), null()}},
		},
		{
			name:   "leading and trailing absent fields",
			input:  ",a,\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{null(), text("a"), null()}},
		},
		{
			name:   "empty quoted fields stay empty strings",
			input:  `"",""` + "\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{quoted(""), quoted("")}},
		},
		{
			name:   "quoted field with embedded separator",
			input:  `a,"b,c",d` + "\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{text("a"), quoted("b,c"), text("d")}},
		},
		{
			name:   "doubled quotes unescape",
			input:  `"he said ""hi"""` + "\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{quoted(`he said "hi"`)}},
		},
		{
			name:   "quoted field spans physical lines",
			input:  "a,\"b\nc\",d\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{text("a"), quoted("b\nc"), text("d")}},
		},
		{
			name:   "quoted field spans several physical lines",
			input:  "\"x\n\ny\"\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{quoted("x\n\ny")}},
		},
		{
			name:   "blank line is a zero-field record",
			input:  "a\n\nb\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{text("a")}, {}, {text("b")}},
		},
		{
			name:   "crlf row separator",
			input:  "a,b\r\nc,d\r\n",
			colSep: ",",
			rowSep: "\r\n",
			want:   [][]Field{{text("a"), text("b")}, {text("c"), text("d")}},
		},
		{
			name:   "cr row separator",
			input:  "a\rb\r",
			colSep: ",",
			rowSep: "\r",
			want:   [][]Field{{text("a")}, {text("b")}},
		},
		{
			name:   "embedded crlf inside quotes",
			input:  "\"a\r\nb\",c\r\n",
			colSep: ",",
			rowSep: "\r\n",
			want:   [][]Field{{quoted("a\r\nb"), text("c")}},
		},
		{
			name:   "multi-character column separator",
			input:  "a||b||\n",
			colSep: "||",
			rowSep: "\n",
			want:   [][]Field{{text("a"), text("b"), null()}},
		},
		{
			name:   "multi-character row separator",
			input:  "a;b<>c;d<>",
			colSep: ";",
			rowSep: "<>",
			want:   [][]Field{{text("a"), text("b")}, {text("c"), text("d")}},
		},
		{
			name:   "tab separated",
			input:  "a\tb\t\tc\n",
			colSep: "\t",
			rowSep: "\n",
			want:   [][]Field{{text("a"), text("b"), null(), text("c")}},
		},
		{
			name:   "field value containing the row separator text when quoted",
			input:  "\"a\nb\"\n",
			colSep: ",",
			rowSep: "\n",
			want:   [][]Field{{quoted("a\nb")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestTokenizer(tt.input, tt.colSep, tt.rowSep)
			for i, want := range tt.want {
				got, err := tok.ReadRecord()
				if err != nil {
					t.Fatalf("record %d: ReadRecord() error = %v", i, err)
				}
				if len(got) != len(want) {
					t.Fatalf("record %d: got %d fields %v, want %d", i, len(got), got, len(want))
				}
				for j := range want {
					if got[j] != want[j] {
						t.Errorf("record %d field %d = %+v, want %+v", i, j, got[j], want[j])
					}
				}
			}
			if _, err := tok.ReadRecord(); err != io.EOF {
				t.Errorf("after last record: err = %v, want io.EOF", err)
			}
			// EOF must be idempotent.
			if _, err := tok.ReadRecord(); err != io.EOF {
				t.Errorf("repeated read at EOF: err = %v, want io.EOF", err)
			}
		})
	}
}

// TestReadRecordErrors tests fail-fast malformed-input detection.
func TestReadRecordErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		rowSep string
		want   error
	}{
		{
			name:   "bare quote in unquoted field",
			input:  "a\"b,c\n",
			rowSep: "\n",
			want:   ErrBareQuote,
		},
		{
			name:   "quote opening mid-field",
			input:  "ab\"cd\"\n",
			rowSep: "\n",
			want:   ErrBareQuote,
		},
		{
			name:   "text after closing quote",
			input:  "\"a\"x,b\n",
			rowSep: "\n",
			want:   ErrStrayQuote,
		},
		{
			name:   "unclosed quote at end of input",
			input:  "\"abc",
			rowSep: "\n",
			want:   ErrUnclosedQuote,
		},
		{
			name:   "unclosed quote spanning lines",
			input:  "\"a\nb\nc",
			rowSep: "\n",
			want:   ErrUnclosedQuote,
		},
		{
			name:   "bare line feed inside unquoted field",
			input:  "a\nb\r\n",
			rowSep: "\r\n",
			want:   ErrBareLineBreak,
		},
		{
			name:   "bare carriage return inside unquoted field",
			input:  "a\rb\n",
			rowSep: "\n",
			want:   ErrBareLineBreak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestTokenizer(tt.input, ",", tt.rowSep)
			_, err := tok.ReadRecord()
			if err == nil {
				t.Fatal("ReadRecord() succeeded, want error")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("ReadRecord() error = %v, want %v", err, tt.want)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %v is not a *ParseError", err)
			}
			if perr.Line < 1 || perr.Column < 1 {
				t.Errorf("ParseError position = line %d column %d, want 1-indexed", perr.Line, perr.Column)
			}
		})
	}
}

// TestParseErrorMessage pins the two message shapes.
func TestParseErrorMessage(t *testing.T) {
	same := &ParseError{StartLine: 2, Line: 2, Column: 5, Err: ErrBareQuote}
	if got, want := same.Error(), "parse error on line 2, column 5: bare quote in unquoted field"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	spanned := &ParseError{StartLine: 1, Line: 3, Column: 1, Err: ErrUnclosedQuote}
	if !strings.Contains(spanned.Error(), "record started on line 1") {
		t.Errorf("Error() = %q, want start-line context", spanned.Error())
	}
}

// countingReader counts bytes handed to the consumer.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// TestFailFastBoundedRead verifies that a malformed first line is rejected
// without buffering the large trailing payload.
func TestFailFastBoundedRead(t *testing.T) {
	payload := strings.Repeat("x,y,z\n", 1<<17) // ~768 KiB of valid trailing data
	cr := &countingReader{r: strings.NewReader("a\"b,c\n" + payload)}
	tok := New(bufio.NewReader(cr), ",", "\n", '"')

	if _, err := tok.ReadRecord(); !errors.Is(err, ErrBareQuote) {
		t.Fatalf("ReadRecord() error = %v, want %v", err, ErrBareQuote)
	}
	if cr.n > 1<<13 {
		t.Errorf("read %d bytes before failing, want a small constant multiple of one line", cr.n)
	}
}

// TestLineCounting verifies physical-line accounting across multi-line
// records.
func TestLineCounting(t *testing.T) {
	tok := newTestTokenizer("a\n\"b\nc\"\nd\n", ",", "\n")
	for i := 0; i < 3; i++ {
		if _, err := tok.ReadRecord(); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if got := tok.Line(); got != 4 {
		t.Errorf("Line() = %d, want 4 physical lines", got)
	}
}

// TestReset verifies rewind support.
func TestReset(t *testing.T) {
	tok := newTestTokenizer("a\nb\n", ",", "\n")
	if _, err := tok.ReadRecord(); err != nil {
		t.Fatal(err)
	}
	if _, err := tok.ReadRecord(); err != nil {
		t.Fatal(err)
	}
	if _, err := tok.ReadRecord(); err != io.EOF {
		t.Fatalf("err = %v, want io.EOF", err)
	}

	tok.Reset(bufio.NewReader(strings.NewReader("a\nb\n")))
	got, err := tok.ReadRecord()
	if err != nil {
		t.Fatalf("after Reset: %v", err)
	}
	if len(got) != 1 || got[0] != text("a") {
		t.Errorf("after Reset: record = %v, want [a]", got)
	}
	if tok.Line() != 1 {
		t.Errorf("after Reset: Line() = %d, want 1", tok.Line())
	}
}

// BenchmarkReadRecord measures the tokenizer hot path.
func BenchmarkReadRecord(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteString("alpha,beta,\"ga,mma\",delta,12345\n")
	}
	input := sb.String()

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tok := New(bufio.NewReader(strings.NewReader(input)), ",", "\n", '"')
		for {
			if _, err := tok.ReadRecord(); err == io.EOF {
				break
			} else if err != nil {
				b.Fatal(err)
			}
		}
	}
}
