// Package textutil provides small text helpers shared by the export stage
// and the CLI.
package textutil

import "strings"

// Slugify converts a title into a lowercase filesystem-safe slug. Letters and
// digits are kept, spaces and separators become single dashes, everything
// else is dropped. Returns "" when nothing safe remains.
func Slugify(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			dash = true
		}
	}
	return b.String()
}

// Truncate shortens a string to at most limit characters, replacing the tail
// with an ellipsis. Limits below 2 return the bare cut.
func Truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || len(value) <= limit {
		return value
	}
	if limit < 2 {
		return value[:limit]
	}
	return value[:limit-1] + "…"
}
