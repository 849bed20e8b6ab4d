// pkg/cleaner/defaults.go
package cleaner

// defaultAccentLetters are the Latin-1 letters accepted by default
const defaultAccentLetters = "àáâãäåæçèéêëìíîïðñòóôõöøùúûüýþÿÀÁÂÃÄÅÆÇÈÉÊËÌÍÎÏÐÑÒÓÔÕÖØÙÚÛÜÝÞß"

// DefaultAllowedAccents returns the built-in accent list, one character per entry,
// followed by the punctuation accepted in names: . - '
func DefaultAllowedAccents() []string {
	accents := make([]string, 0, len(defaultAccentLetters)+3)
	for _, r := range defaultAccentLetters {
		accents = append(accents, string(r))
	}
	return append(accents, ".", "-", "'")
}

// DefaultAllowedRanges returns letters, digits and whitespace
func DefaultAllowedRanges() []string {
	return []string{"a-zA-Z0-9", `\s`}
}

// DefaultReplacements folds typographic punctuation and ligatures that are
// not in the default accent list. Accepted accents are left untouched.
func DefaultReplacements() []Replacement {
	return []Replacement{
		{From: "’", To: "'"},
		{From: "‘", To: "'"},
		{From: "–", To: "-"},
		{From: "—", To: "-"},
		{From: "œ", To: "oe"},
		{From: "Œ", To: "OE"},
	}
}

// DefaultPolicyOptions returns the built-in policy
func DefaultPolicyOptions() PolicyOptions {
	return PolicyOptions{
		AllowedAccents: DefaultAllowedAccents(),
		AllowedRanges:  DefaultAllowedRanges(),
		Replacements:   DefaultReplacements(),
	}
}

// DefaultPolicy returns the compiled built-in policy
func DefaultPolicy() *Policy {
	return MustPolicy(DefaultPolicyOptions())
}
