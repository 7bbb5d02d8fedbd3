package service

import (
	"strconv"
	"strings"
)

// ResolveLimit parses a limit query value. Empty, non-numeric and
// non-positive values fall back to def; values above max are clamped.
func ResolveLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		n = def
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
