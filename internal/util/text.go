package util

import "strings"

// SanitizeTranscriptText normalizes inbound transcript text: invalid UTF-8
// sequences and NUL bytes are stripped, surrounding whitespace removed.
func SanitizeTranscriptText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	sanitized = strings.ReplaceAll(sanitized, "\x00", "")
	return strings.TrimSpace(sanitized)
}
