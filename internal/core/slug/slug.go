// Package slug builds URL path segments from display names.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	validPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	separators   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Make lowercases s, drops accents and joins the remaining words with dashes.
// "Coleção Verão 2025" becomes "colecao-verao-2025".
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	plain = separators.ReplaceAllString(strings.ToLower(plain), "-")
	return strings.Trim(plain, "-")
}

// Valid reports whether s is already a slug.
func Valid(s string) bool {
	return validPattern.MatchString(s)
}
