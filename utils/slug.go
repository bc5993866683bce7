package utils

import (
	"strings"
)

// isSlugSpace reports whether r is whitespace as JavaScript's \s defines it.
// Unlike unicode.IsSpace it excludes U+0085 and includes U+FEFF.
func isSlugSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

// Slugify lower-cases title, collapses every run of whitespace into a single
// hyphen and truncates the result to maxLength runes. Leading and trailing
// whitespace become hyphens as well; nothing else is stripped.
func Slugify(title string, maxLength int) string {
	var b strings.Builder
	b.Grow(len(title))

	inSpace := false
	for _, r := range strings.ToLower(title) {
		if isSlugSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}

	slug := b.String()
	if maxLength > 0 {
		runes := []rune(slug)
		if len(runes) > maxLength {
			slug = string(runes[:maxLength])
		}
	}
	return slug
}
