package application

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// normalizeLabel folds a header cell to its comparable form: NFC, Russian
// lower case, collapsed inner spaces, trimmed.
func normalizeLabel(s string) string {
	s = norm.NFC.String(s)
	s = cases.Lower(language.Russian).String(s)
	return strings.Join(strings.Fields(s), " ")
}

// monthLabel strips digits from a month header so "Март 2025" reads "март".
func monthLabel(s string) string {
	return normalizeLabel(strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s))
}
