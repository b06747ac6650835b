package core

// streaming.go prepares CSV input for encoding/csv without buffering the file.
//
// Spreadsheet exports saved from Windows tools often begin with a UTF-8 BOM
// and occasionally contain stray Latin-1 bytes. NewCSVInput strips the BOM
// and replaces invalid bytes with '?' so the header row always parses to the
// expected column names.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewCSVInput wraps r with BOM removal and UTF-8 sanitization.
func NewCSVInput(r io.Reader) io.Reader {
	return &utf8Sanitizer{src: skipBOM(r)}
}

// skipBOM discards a leading UTF-8 byte order mark if present.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// utf8Sanitizer replaces each invalid byte with '?'. A multi-byte rune split
// across two reads is held back until the next call.
type utf8Sanitizer struct {
	src     io.Reader
	pending []byte
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	off := copy(p, s.pending)
	s.pending = s.pending[off:]
	if len(s.pending) > 0 {
		return off, nil
	}

	n, err := s.src.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}

	atEOF := err == io.EOF
	buf := p[:n]
	w := 0
	for i := 0; i < len(buf); {
		if buf[i] < utf8.RuneSelf {
			buf[w] = buf[i]
			w++
			i++
			continue
		}
		if !atEOF && !utf8.FullRune(buf[i:]) {
			s.pending = append(s.pending[:0], buf[i:]...)
			break
		}
		r, size := utf8.DecodeRune(buf[i:])
		if r == utf8.RuneError && size == 1 {
			buf[w] = '?'
			w++
			i++
			continue
		}
		copy(buf[w:], buf[i:i+size])
		w += size
		i += size
	}

	// Held-back bytes must be returned before EOF is reported.
	if w == 0 && len(s.pending) > 0 && err == nil {
		return s.Read(p)
	}
	return w, err
}
