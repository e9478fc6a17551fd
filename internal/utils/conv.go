package utils

import (
	"strconv"
	"strings"
)

// StringToInt converts string to int, returns def if empty or invalid
func StringToInt(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

// Truncate cuts s to at most n runes and appends an ellipsis when it cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
