// Package utils holds tiny helpers with no domain knowledge, shared by the
// HTTP layer for parsing and bounding client-supplied numbers.
package utils

import "strconv"

// AtoiDefault parses s as an int and falls back to def when s is empty or not
// a valid integer. Handy for optional query parameters:
//
//	page := utils.AtoiDefault(c.Query("page"), 1)
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ClampInt bounds n to the inclusive range [lo, hi]. If lo > hi the bounds
// are swapped first.
func ClampInt(n, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
