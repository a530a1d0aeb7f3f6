// Package lookup holds the pure pieces of the phone lookup path: query
// normalization and the bounded result cache.
package lookup

import (
	"strings"

	"golang.org/x/text/width"
)

// countryPrefix is trimmed from numbers longer than a national number.
const (
	countryPrefix  = "91"
	nationalDigits = 10
)

// Normalize reduces a raw phone query to its digit sequence. Full-width
// digits are folded to ASCII first; every other non-digit is dropped. When
// more than ten digits remain and they start with 91, the prefix is removed
// once. A bare ten-digit number is never trimmed, even if it starts with 91.
//
// ok is false when no digits remain; such a query cannot match anything.
func Normalize(raw string) (key string, ok bool) {
	folded := width.Fold.String(raw)

	var b strings.Builder
	b.Grow(len(folded))
	for i := 0; i < len(folded); i++ {
		if c := folded[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	digits := b.String()

	if len(digits) > nationalDigits && strings.HasPrefix(digits, countryPrefix) {
		digits = digits[len(countryPrefix):]
	}
	return digits, digits != ""
}
