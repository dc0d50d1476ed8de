// Package dsv provides separator discovery for delimited text.
package dsv

import (
	"bufio"
	"bytes"
	"io"
	"runtime"
	"strings"
)

const (
	// sniffChunk is the read-ahead step for row-separator discovery.
	sniffChunk = 1024
	// sniffWindow bounds discovery on non-seekable sources, where look-ahead
	// is limited to what the buffered reader can hold.
	sniffWindow = 1 << 16
)

// defaultRowSep returns the platform's default line terminator, used when
// discovery exhausts the source without finding one, and by writers when
// RowSep is left on auto.
func defaultRowSep() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// resolveRowSep discovers the row separator for a source whose RowSep
// option is auto, and wraps the source in the buffered reader the
// tokenizer will consume. Discovery never consumes data: seekable sources
// are read ahead and repositioned, everything else is peeked through the
// returned buffered reader.
func resolveRowSep(src io.Reader) (string, *bufio.Reader, error) {
	if s, ok := src.(io.Seeker); ok {
		sep, err := discoverRowSep(src, s)
		if err != nil {
			return "", nil, err
		}
		return sep, bufio.NewReader(src), nil
	}
	br := bufio.NewReaderSize(src, sniffWindow)
	return discoverRowSepPeek(br), br, nil
}

// discoverRowSep reads ahead in fixed-size chunks until a line-ending
// sequence appears, then restores the read position.
func discoverRowSep(r io.Reader, s io.Seeker) (string, error) {
	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", err
	}

	sep := defaultRowSep()
	var sample []byte
	chunk := make([]byte, sniffChunk)
	for {
		n, rerr := io.ReadFull(r, chunk)
		sample = append(sample, chunk[:n]...)
		if rerr != nil && rerr != io.EOF && rerr != io.ErrUnexpectedEOF {
			return "", rerr
		}
		exhausted := rerr != nil
		if found, ok := findLineEnding(sample, exhausted); ok {
			sep = found
			break
		}
		// Not found, and a lone trailing CR needs at least one more byte
		// before "\r" and "\r\n" can be told apart.
		if exhausted {
			break
		}
	}

	if _, err := s.Seek(pos, io.SeekStart); err != nil {
		return "", err
	}
	return sep, nil
}

// discoverRowSepPeek is the non-seekable variant: it peeks through the
// buffered reader in growing steps, falling back to the platform default
// when the peek window is exhausted.
func discoverRowSepPeek(br *bufio.Reader) string {
	for n := sniffChunk; ; n += sniffChunk {
		sample, err := br.Peek(n)
		exhausted := err != nil
		if found, ok := findLineEnding(sample, exhausted); ok {
			return found
		}
		if exhausted {
			return defaultRowSep()
		}
	}
}

// findLineEnding scans a sample for the earliest line-ending sequence.
// "\r\n" wins over "\r" at the same position. A lone CR at the end of the
// sample is only decidable once no more data can follow. The match is
// position-first even when the sequence sits inside what would later be
// parsed as a quoted field; line-ending style is assumed uniform.
func findLineEnding(sample []byte, exhausted bool) (string, bool) {
	i := bytes.IndexAny(sample, "\r\n")
	if i < 0 {
		return "", false
	}
	if sample[i] == '\n' {
		return "\n", true
	}
	if i+1 < len(sample) {
		if sample[i+1] == '\n' {
			return "\r\n", true
		}
		return "\r", true
	}
	if exhausted {
		return "\r", true
	}
	return "", false
}

// Sniffer detects the column separator of a sample of delimited text.
// For best results, provide at least 2-3 lines of data.
type Sniffer struct {
	sample   string
	colSep   string
	rowSep   string
	analyzed bool
}

// NewSniffer creates a Sniffer over a sample of delimited text.
func NewSniffer(sample string) *Sniffer {
	return &Sniffer{sample: sample}
}

// analyze performs dialect detection on the sample.
func (s *Sniffer) analyze() {
	if s.analyzed {
		return
	}
	if sep, ok := findLineEnding([]byte(s.sample), true); ok {
		s.rowSep = sep
	} else {
		s.rowSep = defaultRowSep()
	}
	s.colSep = s.detectColSep()
	s.analyzed = true
}

// DetectColSep returns the detected column separator. Candidates checked:
// comma, tab, semicolon, pipe.
func (s *Sniffer) DetectColSep() string {
	s.analyze()
	return s.colSep
}

// DetectRowSep returns the first line-ending sequence in the sample, or
// the platform default when none appears.
func (s *Sniffer) DetectRowSep() string {
	s.analyze()
	return s.rowSep
}

// detectColSep scores candidate separators by per-line count consistency.
func (s *Sniffer) detectColSep() string {
	if s.sample == "" {
		return ","
	}

	candidates := []string{",", "\t", ";", "|"}
	scores := make(map[string]int)

	lines := strings.Split(s.sample, "\n")
	for _, sep := range candidates {
		var counts []int
		for _, line := range lines {
			line = strings.TrimSuffix(line, "\r")
			if line == "" {
				continue
			}
			counts = append(counts, countSeparator(line, sep))
		}
		if len(counts) == 0 || counts[0] == 0 {
			continue
		}

		consistent := true
		for i := 1; i < len(counts); i++ {
			if counts[i] != counts[0] {
				consistent = false
				break
			}
		}
		if consistent {
			scores[sep] = counts[0] * 10
		} else {
			scores[sep] = counts[0]
		}
	}

	best := ","
	bestScore := 0
	for _, sep := range candidates {
		if scores[sep] > bestScore {
			best = sep
			bestScore = scores[sep]
		}
	}
	return best
}

// countSeparator counts separator occurrences outside quoted sections.
func countSeparator(line, sep string) int {
	count := 0
	inQuotes := false
	for i := 0; i < len(line); {
		if line[i] == '"' {
			inQuotes = !inQuotes
			i++
			continue
		}
		if !inQuotes && strings.HasPrefix(line[i:], sep) {
			count++
			i += len(sep)
			continue
		}
		i++
	}
	return count
}
