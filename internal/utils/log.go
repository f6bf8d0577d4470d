package utils

import "strings"

// TruncateForLog flattens s onto one line, collapsing whitespace runs into single
// spaces, and cuts it to limit runes with a trailing ellipsis.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	flat := strings.Join(strings.Fields(s), " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}
	return string(runes[:limit]) + "..."
}
