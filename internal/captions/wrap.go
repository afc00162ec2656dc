package captions

import "strings"

// wrapText breaks text into at most two display lines. Words accumulate
// greedily while they fit within maxChars; if more than two lines result, the
// line list is split at its midpoint and each half rejoined so the two lines
// stay roughly balanced. Words longer than the limit are kept whole, never
// split.
func wrapText(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= maxChars {
		return []string{text}
	}
	words := strings.Fields(text)
	var lines []string
	current := ""
	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		if len(current)+1+len(word) <= maxChars {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) <= 2 {
		return lines
	}
	mid := (len(lines) + 1) / 2
	return []string{
		strings.Join(lines[:mid], " "),
		strings.Join(lines[mid:], " "),
	}
}
