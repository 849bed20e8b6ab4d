// pkg/cleaner/classifier.go
package cleaner

import (
	"sort"
	"unicode/utf8"
)

// maxBasicLatin is the last code point of the Basic Latin block
const maxBasicLatin = 0x7F

// Classification is the outcome of evaluating a single cell value
type Classification struct {
	Special  []rune // Disallowed characters in the original text, sorted, deduplicated
	NonLatin []rune // Characters above U+007F in the original text, sorted, deduplicated
	Cleaned  string // Replacement value; equal to the input when exempt
	Modified bool   // Cleaned != input
	Exempt   bool   // Input is a date or contains a parenthesized name
}

// Flagged reports whether the value contains special or non-Latin characters
func (c Classification) Flagged() bool {
	return len(c.Special) > 0 || len(c.NonLatin) > 0
}

// ClassifyAndClean detects special and non-Latin characters in text and computes
// its cleaned form. Dates and texts containing a parenthesized name are exempt
// from cleaning as a whole; detection still runs on them for reporting.
func ClassifyAndClean(text string, policy *Policy) Classification {
	result := Classification{
		Special:  policy.specialRunes(text),
		NonLatin: nonLatinRunes(text),
	}

	if IsExempt(text) {
		result.Cleaned = text
		result.Exempt = true
		return result
	}

	result.Cleaned = policy.Clean(text)
	result.Modified = result.Cleaned != text
	return result
}

// specialRunes returns the distinct disallowed runes of text in code point order
func (p *Policy) specialRunes(text string) []rune {
	matches := p.special.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	set := make(map[rune]struct{}, len(matches))
	for _, m := range matches {
		r, _ := utf8.DecodeRuneInString(text[m[0]:m[1]])
		set[r] = struct{}{}
	}
	return sortedRunes(set)
}

// nonLatinRunes returns the distinct runes of text outside Basic Latin in code point order
func nonLatinRunes(text string) []rune {
	var set map[rune]struct{}
	for _, r := range text {
		if r <= maxBasicLatin {
			continue
		}
		if set == nil {
			set = make(map[rune]struct{})
		}
		set[r] = struct{}{}
	}
	return sortedRunes(set)
}

func sortedRunes(set map[rune]struct{}) []rune {
	if len(set) == 0 {
		return nil
	}
	runes := make([]rune, 0, len(set))
	for r := range set {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return runes
}
