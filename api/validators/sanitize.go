package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims the input, folds runs of whitespace into one space,
// drops control characters and caps the result at maxLen runes. A
// non-positive maxLen disables the cap.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))
	space := false
	runes := 0
	for _, r := range strings.TrimSpace(input) {
		if maxLen > 0 && runes >= maxLen {
			break
		}
		switch {
		case unicode.IsSpace(r):
			if space {
				continue
			}
			space = true
			r = ' '
		case unicode.IsControl(r):
			continue
		default:
			space = false
		}
		b.WriteRune(r)
		runes++
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}
