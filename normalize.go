package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison key of a counterparty name.
//
// The key is upper case, has no diacritics, and has single spaces between
// words. Dots and commas are dropped so that "Acme S.A." and "ACME SA" share
// the same key. Every name comparison in this package goes through Normalize.
func Normalize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	stripped = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',':
			return -1
		}
		return r
	}, stripped)
	return strings.Join(strings.Fields(strings.ToUpper(stripped)), " ")
}
