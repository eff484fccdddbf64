package util

import (
	"strings"
	"unicode"
)

// CleanText drops NUL and other control characters that Postgres text columns
// and model prompts reject, keeping newlines and tabs, then trims the result.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r':
			return '\n'
		case unicode.IsControl(r) || r == unicode.ReplacementChar:
			return -1
		default:
			return r
		}
	}, s)
	return strings.TrimSpace(cleaned)
}
