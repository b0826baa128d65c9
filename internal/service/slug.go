package service

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases the title, strips diacritics and replaces every run of
// non-alphanumeric characters with a single dash.
func Slugify(title string) string {
	decomposed := norm.NFD.String(strings.ToLower(title))

	var b strings.Builder
	b.Grow(len(decomposed))
	lastDash := true
	for _, r := range decomposed {
		switch {
		case unicode.IsMark(r):
			// combining marks left over from NFD decomposition
		case r == 'đ':
			b.WriteByte('d')
			lastDash = false
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// SlugForID appends the blog's numeric ID to the slugified title. The ID is
// stable across renames, so two blogs never collide on slug even when their
// titles match.
func SlugForID(title string, id uint) string {
	base := Slugify(title)
	if base == "" {
		return fmt.Sprintf("blog-%d", id)
	}
	return fmt.Sprintf("%s-%d", base, id)
}
