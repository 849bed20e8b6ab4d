// pkg/cleaner/operations.go
package cleaner

import (
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// dateLayouts are tried in order: day/month/year, year/day/month, year/month/day, month/day/year.
// Day and month accept one or two digits; the year needs four.
var dateLayouts = []string{
	"2/1/2006",
	"2006/2/1",
	"2006/1/2",
	"1/2/2006",
}

// parenthesizedName matches "(" letters or whitespace ")" anywhere in a value
var parenthesizedName = regexp.MustCompile(`\([A-Za-z` + unicodeSpaceClass + `]+\)`)

// IsExempt reports whether text must be left untouched by cleaning
func IsExempt(text string) bool {
	return IsDate(text) || ContainsParenthesizedName(text)
}

// IsDate reports whether the whole text is a valid calendar date in one of the recognised layouts
func IsDate(text string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, text); err == nil {
			return true
		}
	}
	return false
}

// ContainsParenthesizedName reports whether text contains something like "(John)"
func ContainsParenthesizedName(text string) bool {
	return parenthesizedName.MatchString(text)
}

// RepairEncoding undoes UTF-8 text that was decoded as Windows-1252 ("ValÃ©rie" -> "Valérie")
// and composes the result to NFC. Text that does not round-trip is only normalised.
func RepairEncoding(text string) string {
	if isASCII(text) {
		return text
	}

	repaired := text
	// Encoders keep state, so each call gets its own
	if raw, err := charmap.Windows1252.NewEncoder().String(text); err == nil {
		if raw != text && utf8.ValidString(raw) {
			repaired = raw
		}
	}

	return norm.NFC.String(repaired)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > maxBasicLatin {
			return false
		}
	}
	return true
}
