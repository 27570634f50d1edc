// Package textnorm normalizes titles and free text for matching.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// RemoveAccents strips diacritical marks ("Léon" -> "leon") using NFD
// decomposition.
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases and strips accents. Used before any text comparison so
// that matching is accent- and case-insensitive.
func Fold(s string) string {
	return RemoveAccents(strings.ToLower(s))
}

// CleanTitle normalizes a title for similarity matching: lowercase, accents
// removed, punctuation normalized, leading articles stripped per
// colon-separated part, whitespace collapsed.
func CleanTitle(title string) string {
	s := Fold(title)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", " ")

	// Handle subtitles (e.g. "Leon: The Professional") part by part
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func stripLeadingArticle(s string) string {
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, article) {
			return s[len(article):]
		}
	}
	return s
}
