package util

import (
	"testing"
)

func TestSanitizeTranscriptText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "hello world", "hello world"},
		{"Empty", "", ""},
		{"Whitespace", "  hello  ", "hello"},
		{"NulBytes", "he\x00llo", "hello"},
		{"InvalidUTF8", "he\xffllo", "hello"},
		{"OnlyGarbage", "\x00\xff", ""},
		{"Unicode", "Müller spricht", "Müller spricht"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeTranscriptText(tc.in)
			if got != tc.want {
				t.Fatalf("SanitizeTranscriptText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
