// Package utils provides small helpers for parsing request parameters.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as an int, returning def when s is blank or invalid.
// Surrounding whitespace is ignored.
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// AtoiClamp parses s like AtoiDefault and then clamps the result into [lo, hi].
func AtoiClamp(s string, def, lo, hi int) int {
	n := AtoiDefault(s, def)
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
