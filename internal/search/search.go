// Package search matches the free-text boxes against descriptions and EANs,
// ignoring case and accents.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips its diacritics ("Feijão" -> "feijao").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Match reports whether term occurs in any of fields. An empty term
// matches everything.
func Match(term string, fields ...string) bool {
	q := Fold(term)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}

// Filter keeps the items whose fields match term.
func Filter[T any](items []T, term string, fields func(T) []string) []T {
	if Fold(term) == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if Match(term, fields(it)...) {
			out = append(out, it)
		}
	}
	return out
}
