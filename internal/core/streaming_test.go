package core

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
)

func TestNewCSVInput(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("REF_AREA_LABEL,2020")...),
			expected: "REF_AREA_LABEL,2020",
		},
		{
			name:     "file without BOM",
			input:    []byte("REF_AREA_LABEL,2020"),
			expected: "REF_AREA_LABEL,2020",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM is sanitized",
			input:    []byte{0xEF, 0xBB, 'a', 'b'},
			expected: "??ab",
		},
		{
			name:     "valid multibyte kept",
			input:    []byte("Côte d’Ivoire,12"),
			expected: "Côte d’Ivoire,12",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'U', 'S', 0x80, 'A'},
			expected: "US?A",
		},
		{
			name:     "truncated rune at EOF",
			input:    []byte{'a', 0xE2, 0x80},
			expected: "a??",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewCSVInput(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("got %q, want %q", string(got), tt.expected)
			}
		})
	}
}

func TestNewCSVInput_SplitRunes(t *testing.T) {
	input := []byte("Türkiye,Côte d’Ivoire")

	// One byte per read forces every multi-byte rune across a boundary.
	got, err := io.ReadAll(NewCSVInput(iotest.OneByteReader(bytes.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(input) {
		t.Errorf("got %q, want %q", string(got), string(input))
	}
}
