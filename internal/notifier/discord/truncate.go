package discord

import "unicode/utf8"

const ellipsis = "..."

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate shortens s to at most limit characters, ending with an ellipsis when it cut anything.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runeLen(s) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string([]rune(s)[:limit])
	}
	return string([]rune(s)[:limit-len(ellipsis)]) + ellipsis
}
