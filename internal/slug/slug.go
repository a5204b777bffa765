// Package slug derives URL slugs from category names.
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
	// nonWord matches anything that is not a letter, digit, separator or whitespace
	nonWord = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	// separators collapses whitespace, underscores and hyphen runs into one hyphen
	separators = regexp.MustCompile(`[\s_-]+`)
)

// Make converts a display name into a slug: "Men's Rings!!" → "mens-rings".
// The result contains only lowercase ASCII letters, digits and single hyphens.
func Make(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		result = strings.TrimSpace(name)
	}

	// \s only matches ASCII whitespace
	result = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, result)

	result = strings.ToLower(result)
	result = nonWord.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Valid reports whether s already has slug shape
func Valid(s string) bool {
	if s == "" || s[0] == '-' || s[len(s)-1] == '-' || strings.Contains(s, "--") {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	return true
}
