/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rank

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a card name into the ranking service's URL slug:
// "Atraxa, Praetors' Voice" becomes "atraxa-praetors-voice".
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))

	pendingDash := false
	for _, r := range folded {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r != '-' && unicode.IsPunct(r):
			// dropped, so "Praetors'" stays one word
		default:
			pendingDash = true
		}
	}

	return b.String()
}
