package tools

import "strings"

// maxQueryRunes bounds the query forwarded to backends with short query limits.
const maxQueryRunes = 300

// clampRunes clamps s to at most n runes. n <= 0 means no cap.
func clampRunes(s string, n int) (string, bool) {
	if n <= 0 {
		return s, false
	}
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}

// collapseSpace folds runs of whitespace, including newlines, into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
