// Package catalog defines course records and the in-memory store that
// indexes them by normalized course number.
package catalog

import "strings"

// Course is one catalog entry keyed by its normalized course number.
type Course struct {
	Number        string
	Title         string
	Prerequisites []string
}

// Normalize trims surrounding whitespace and uppercases a course number so
// that keys compare consistently. Idempotent; titles are never passed
// through here.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
