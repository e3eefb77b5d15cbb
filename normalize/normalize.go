// Package normalize provides the canonical text folding used to compare names, categories
// and identifiers across sources.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var re_separators = regexp.MustCompile(`['\-:]`)
var re_disallowed = regexp.MustCompile(`[^a-z0-9 ]`)
var re_whitespace = regexp.MustCompile(`\s+`)
var re_slug = regexp.MustCompile(`[^a-z0-9]+`)

// Text returns the normalized form of 'v': accents removed, lowercased, punctuation
// replaced by spaces and whitespace collapsed. Text is idempotent and never fails;
// nil and empty values yield "".
func Text(v any) string {

	s := fold(v)

	s = re_separators.ReplaceAllString(s, " ")
	s = re_disallowed.ReplaceAllString(s, " ")
	s = re_whitespace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// Slug returns the identifier-safe form of 'v': accents removed, lowercased and every run
// of characters outside [a-z0-9] replaced by a single underscore.
func Slug(v any) string {

	s := strings.TrimSpace(fold(v))
	s = re_slug.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}

// StripAccents removes combining marks from 's' leaving its case untouched.
func StripAccents(s string) string {

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

	out, _, err := transform.String(t, s)

	if err != nil {
		return s
	}

	return out
}

func fold(v any) string {

	var s string

	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprintf("%v", t)
	}

	return strings.ToLower(StripAccents(s))
}
