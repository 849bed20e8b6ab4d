package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicy_EscapesAccents(t *testing.T) {
	policy, err := NewPolicy(PolicyOptions{
		AllowedAccents: []string{"-", "]", "^", `\`, "["},
	})
	require.NoError(t, err)

	assert.Equal(t, `[^\-\]\^\\\[]`, policy.Pattern())
	for _, r := range []rune{'-', ']', '^', '\\', '['} {
		assert.True(t, policy.Allowed(r), string(r))
	}
	assert.False(t, policy.Allowed('a'))
}

func TestNewPolicy_MultiRuneAccentEntry(t *testing.T) {
	policy, err := NewPolicy(PolicyOptions{AllowedAccents: []string{"éè"}})
	require.NoError(t, err)

	assert.True(t, policy.Allowed('é'))
	assert.True(t, policy.Allowed('è'))
	assert.False(t, policy.Allowed('e'))
}

func TestNewPolicy_NothingAllowed(t *testing.T) {
	policy, err := NewPolicy(PolicyOptions{})
	require.NoError(t, err)

	assert.False(t, policy.Allowed('a'))
	assert.False(t, policy.Allowed('\n'))
	assert.Equal(t, "", policy.Clean("abc\n123"))
}

func TestNewPolicy_InvalidRange(t *testing.T) {
	_, err := NewPolicy(PolicyOptions{AllowedRanges: []string{"z-a"}})
	assert.Error(t, err)
}

func TestNewPolicy_EmptyReplacementKey(t *testing.T) {
	_, err := NewPolicy(PolicyOptions{
		AllowedRanges: DefaultAllowedRanges(),
		Replacements:  []Replacement{{From: "", To: "x"}},
	})
	assert.ErrorIs(t, err, ErrEmptyReplacementKey)
}

func TestNewPolicy_CopiesReplacements(t *testing.T) {
	opts := PolicyOptions{
		AllowedRanges: []string{"a-z"},
		Replacements:  []Replacement{{From: "a", To: "b"}},
	}
	policy := MustPolicy(opts)
	opts.Replacements[0].To = "c"

	assert.Equal(t, "b", policy.Clean("a"))
}

func TestPolicyClean_ReplacementOrder(t *testing.T) {
	tests := []struct {
		name         string
		replacements []Replacement
		input        string
		want         string
	}{
		{
			name:         "chained",
			replacements: []Replacement{{From: "ab", To: "x"}, {From: "x", To: "y"}},
			input:        "ab",
			want:         "y",
		},
		{
			name:         "reversed",
			replacements: []Replacement{{From: "x", To: "y"}, {From: "ab", To: "x"}},
			input:        "ab",
			want:         "x",
		},
		{
			name:         "literal brackets",
			replacements: []Replacement{{From: "[a]", To: "b"}},
			input:        "[a] a",
			want:         "b a",
		},
		{
			name:         "no match",
			replacements: []Replacement{{From: "zz", To: "y"}},
			input:        "abc",
			want:         "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := MustPolicy(PolicyOptions{
				AllowedRanges: []string{"a-z", `\s`},
				Replacements:  tt.replacements,
			})
			assert.Equal(t, tt.want, policy.Clean(tt.input))
		})
	}
}

func TestPolicyClean_IgnoresExemptions(t *testing.T) {
	policy := DefaultPolicy()

	assert.Equal(t, "12052024", policy.Clean("12/05/2024"))
	assert.Equal(t, "O'Connor John", policy.Clean("O’Connor (John)"))
}

func TestDefaultPolicy_Allowed(t *testing.T) {
	policy := DefaultPolicy()

	for _, r := range []rune{'a', 'Z', '0', ' ', '\t', 'é', 'Ç', 'ß', 'ÿ', '.', '-', '\''} {
		assert.True(t, policy.Allowed(r), string(r))
	}
	for _, r := range []rune{'!', '#', '/', '(', '@', '€', '日', '’', 'œ'} {
		assert.False(t, policy.Allowed(r), string(r))
	}
}

func TestExpandSpaceClass(t *testing.T) {
	assert.Equal(t, "a-z", expandSpaceClass("a-z"))
	assert.Equal(t, "a-z"+unicodeSpaceClass, expandSpaceClass(`a-z\s`))
	assert.Equal(t, `\\s\d`, expandSpaceClass(`\\s\d`))
	assert.Equal(t, `0-9\`, expandSpaceClass(`0-9\`))
}
