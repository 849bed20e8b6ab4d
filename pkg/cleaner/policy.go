// pkg/cleaner/policy.go
package cleaner

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyReplacementKey is returned when a replacement mapping has an empty source
var ErrEmptyReplacementKey = errors.New("replacement mapping source cannot be empty")

// classMetaChars must be escaped to be taken literally inside a character class
const classMetaChars = `\]^-[`

// unicodeSpaceClass is the body of a class matching every Unicode whitespace rune.
// RE2's \s only covers [\t\n\f\r ].
const unicodeSpaceClass = `\s\x{0B}\x{85}\x{1C}-\x{1F}\p{Z}`

// Replacement is a literal substring substitution applied before cleaning
type Replacement struct {
	From string
	To   string
}

// PolicyOptions describes an allowed-character policy before compilation
type PolicyOptions struct {
	// AllowedAccents holds characters that are always valid. Every rune of
	// every entry is added to the allowed set.
	AllowedAccents []string
	// AllowedRanges holds regexp character-class fragments such as "a-zA-Z0-9" or `\s`
	AllowedRanges []string
	// Replacements are applied in order, each as a literal ReplaceAll
	Replacements []Replacement
	// RepairEncoding repairs Windows-1252 mojibake and composes to NFC before replacements
	RepairEncoding bool
}

// Policy is a compiled cleaning policy. It is immutable and safe for concurrent use.
type Policy struct {
	special        *regexp.Regexp
	replacements   []Replacement
	repairEncoding bool
	pattern        string
}

// NewPolicy compiles the options into a Policy
func NewPolicy(opts PolicyOptions) (*Policy, error) {
	for _, r := range opts.Replacements {
		if r.From == "" {
			return nil, ErrEmptyReplacementKey
		}
	}

	pattern := buildSpecialPattern(opts.AllowedRanges, opts.AllowedAccents)
	special, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid allowed character class %q: %w", pattern, err)
	}

	replacements := make([]Replacement, len(opts.Replacements))
	copy(replacements, opts.Replacements)

	return &Policy{
		special:        special,
		replacements:   replacements,
		repairEncoding: opts.RepairEncoding,
		pattern:        pattern,
	}, nil
}

// MustPolicy is like NewPolicy but panics on error
func MustPolicy(opts PolicyOptions) *Policy {
	p, err := NewPolicy(opts)
	if err != nil {
		panic(err)
	}
	return p
}

// Pattern returns the regular expression matching one disallowed character
func (p *Policy) Pattern() string {
	return p.pattern
}

// Allowed reports whether r belongs to the effective allowed set
func (p *Policy) Allowed(r rune) bool {
	return !p.special.MatchString(string(r))
}

// Clean applies encoding repair, the replacement mappings and the deletion of
// disallowed characters. Exemptions are not considered here.
func (p *Policy) Clean(text string) string {
	if p.repairEncoding {
		text = RepairEncoding(text)
	}
	for _, r := range p.replacements {
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return p.special.ReplaceAllLiteralString(text, "")
}

// Classify evaluates text against this policy
func (p *Policy) Classify(text string) Classification {
	return ClassifyAndClean(text, p)
}

// buildSpecialPattern builds a class matching any rune outside the allowed set.
// With nothing allowed every rune is special.
func buildSpecialPattern(ranges, accents []string) string {
	var b strings.Builder
	for _, fragment := range ranges {
		b.WriteString(expandSpaceClass(fragment))
	}
	for _, accent := range accents {
		for _, r := range accent {
			if strings.ContainsRune(classMetaChars, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return `(?s).`
	}
	return "[^" + b.String() + "]"
}

// expandSpaceClass replaces each \s in a class fragment with unicodeSpaceClass.
// Other escapes, including an escaped backslash, are copied unchanged.
func expandSpaceClass(fragment string) string {
	if !strings.Contains(fragment, `\s`) {
		return fragment
	}

	var b strings.Builder
	for i := 0; i < len(fragment); i++ {
		if fragment[i] != '\\' || i+1 == len(fragment) {
			b.WriteByte(fragment[i])
			continue
		}
		if fragment[i+1] == 's' {
			b.WriteString(unicodeSpaceClass)
		} else {
			b.WriteByte(fragment[i])
			b.WriteByte(fragment[i+1])
		}
		i++
	}
	return b.String()
}
