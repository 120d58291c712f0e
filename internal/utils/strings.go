package utils

import (
	"strings"
	"unicode"
)

// Slug lower-cases s and joins its alphanumeric runs with "-".
// "Nice Côte d'Azur (NCE)" becomes "nice-côte-d-azur-nce".
func Slug(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
