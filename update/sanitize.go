package update

import (
	"strings"
	"unicode/utf8"
)

// MaxInputLength bounds the text handed to the responder
const MaxInputLength = 1000

// Sanitize drops control characters except newlines and tabs,
// then keeps at most limit runes.
func Sanitize(text string, limit int) string {
	var b strings.Builder
	b.Grow(len(text))
	n := 0
	for _, r := range text {
		if n == limit {
			break
		}
		if r == utf8.RuneError || (r < 32 && r != '\n' && r != '\r' && r != '\t') || r == 127 {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}
