package ticketing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLength is the longest slug produced. Discord allows 100 characters per channel name and the owner ID may be
// appended.
const maxSlugLength = 80

// Slugify turns text into a string that is safe to use in a channel name. Accents are decomposed and dropped along
// with any other non ASCII character, runs of whitespace become a single underscore and anything outside
// [a-z0-9_-] is removed. Slugify is idempotent.
func Slugify(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, text)
	if err != nil {
		ascii = text
	}

	ascii = strings.Join(strings.Fields(strings.ToLower(ascii)), "_")

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return slug
}
