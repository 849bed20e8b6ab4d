package cleaner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAndClean_Examples(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("allowed accent is reported as non-Latin only", func(t *testing.T) {
		got := ClassifyAndClean("Valérie", policy)

		assert.Empty(t, got.Special)
		assert.Equal(t, []rune{'é'}, got.NonLatin)
		assert.Equal(t, "Valérie", got.Cleaned)
		assert.False(t, got.Modified)
		assert.False(t, got.Exempt)
	})

	t.Run("punctuation is removed", func(t *testing.T) {
		got := ClassifyAndClean("Café #5!", policy)

		assert.Equal(t, []rune{'!', '#'}, got.Special)
		assert.Equal(t, []rune{'é'}, got.NonLatin)
		assert.Equal(t, "Café 5", got.Cleaned)
		assert.True(t, got.Modified)
	})

	t.Run("date is exempt", func(t *testing.T) {
		got := ClassifyAndClean("12/05/2024", policy)

		assert.True(t, got.Exempt)
		assert.Equal(t, "12/05/2024", got.Cleaned)
		assert.False(t, got.Modified)
	})

	t.Run("parenthesized name is exempt", func(t *testing.T) {
		got := ClassifyAndClean("O'Connor (John)", policy)

		assert.True(t, got.Exempt)
		assert.Equal(t, "O'Connor (John)", got.Cleaned)
		assert.False(t, got.Modified)
		// Detection still runs for the report
		assert.Equal(t, []rune{'(', ')'}, got.Special)
	})

	t.Run("replacement applied before cleaning", func(t *testing.T) {
		opts := DefaultPolicyOptions()
		opts.Replacements = []Replacement{{From: "â", To: "a"}}
		custom := MustPolicy(opts)

		got := ClassifyAndClean("âme", custom)

		assert.Empty(t, got.Special)
		assert.Equal(t, []rune{'â'}, got.NonLatin)
		assert.Equal(t, "ame", got.Cleaned)
		assert.True(t, got.Modified)
	})
}

func TestClassifyAndClean_UnicodeWhitespace(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name     string
		input    string
		nonLatin []rune
		exempt   bool
	}{
		{name: "no-break space", input: "Jean\u00a0Dupont", nonLatin: []rune{'\u00a0'}},
		{name: "thin space", input: "Jean\u2009Dupont", nonLatin: []rune{'\u2009'}},
		{name: "ideographic space", input: "Jean\u3000Dupont", nonLatin: []rune{'\u3000'}},
		{name: "vertical tab", input: "a\vb"},
		{name: "file separator", input: "a\x1cb"},
		{name: "next line", input: "a\u0085b", nonLatin: []rune{'\u0085'}},
		{name: "parenthesized name with no-break space", input: "(Jean\u00a0Dupont)", nonLatin: []rune{'\u00a0'}, exempt: true},
		{name: "parenthesized name with vertical tab", input: "Smith (John\vPaul)", exempt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAndClean(tt.input, policy)

			assert.Equal(t, tt.nonLatin, got.NonLatin)
			assert.Equal(t, tt.input, got.Cleaned)
			assert.False(t, got.Modified)
			assert.Equal(t, tt.exempt, got.Exempt)
			if !tt.exempt {
				assert.Empty(t, got.Special)
			}
		})
	}
}

func TestClassifyAndClean_UnicodeWhitespaceNotAllowedWithoutRange(t *testing.T) {
	policy := MustPolicy(PolicyOptions{AllowedRanges: []string{"a-zA-Z"}})

	got := ClassifyAndClean("Jean\u00a0Dupont", policy)

	assert.Equal(t, []rune{'\u00a0'}, got.Special)
	assert.Equal(t, "JeanDupont", got.Cleaned)
}

func TestClassifyAndClean_ExemptionIsWholeCell(t *testing.T) {
	policy := DefaultPolicy()

	got := ClassifyAndClean("Smith (John) #42!", policy)

	assert.True(t, got.Exempt)
	assert.Equal(t, "Smith (John) #42!", got.Cleaned)
	assert.Equal(t, []rune{'!', '#', '(', ')'}, got.Special)
}

func TestClassifyAndClean_OnlyDisallowedCleansToEmpty(t *testing.T) {
	got := ClassifyAndClean("#!?", DefaultPolicy())

	assert.Equal(t, "", got.Cleaned)
	assert.True(t, got.Modified)
	assert.Equal(t, []rune{'!', '#', '?'}, got.Special)
}

func TestClassifyAndClean_SortedAndDeduplicated(t *testing.T) {
	got := ClassifyAndClean("ü!ä!ü#日", DefaultPolicy())

	assert.Equal(t, []rune{'!', '#', '日'}, got.Special)
	assert.Equal(t, []rune{'ä', 'ü', '日'}, got.NonLatin)
}

func TestClassifyAndClean_Pure(t *testing.T) {
	policy := DefaultPolicy()
	inputs := []string{"Café #5!", "Valérie", "12/05/2024", "日本語", "a b"}

	for _, in := range inputs {
		assert.Equal(t, ClassifyAndClean(in, policy), ClassifyAndClean(in, policy), in)
	}
}

func TestClassifyAndClean_Idempotent(t *testing.T) {
	policy := DefaultPolicy()
	inputs := []string{
		"Café #5!",
		"l’été – Œuvre",
		"日本語 text",
		"x y",
		"tab\tand\nnewline",
		"@@@",
		"Jean-Luc O'Brien",
		"price: $12.50",
	}

	for _, in := range inputs {
		require.False(t, IsExempt(in), in)

		once := ClassifyAndClean(in, policy).Cleaned
		twice := ClassifyAndClean(once, policy).Cleaned
		assert.Equal(t, once, twice, in)
	}
}

func TestClassifyAndClean_DatesExemptRegardlessOfPolicy(t *testing.T) {
	policies := map[string]*Policy{
		"default":     DefaultPolicy(),
		"nothing":     MustPolicy(PolicyOptions{}),
		"digits only": MustPolicy(PolicyOptions{AllowedRanges: []string{"0-9"}}),
	}

	for name, policy := range policies {
		for _, date := range []string{"12/05/2024", "2024/05/12", "1/2/2024"} {
			got := ClassifyAndClean(date, policy)
			assert.Equal(t, date, got.Cleaned, "%s: %s", name, date)
			assert.False(t, got.Modified, "%s: %s", name, date)
		}
	}
}

func TestClassifyAndClean_NonLatinIndependentOfPolicy(t *testing.T) {
	input := "Ça coûte 5€ — naïve"
	withAccents := DefaultPolicy()
	bare := MustPolicy(PolicyOptions{
		AllowedRanges: []string{"a-z"},
		Replacements:  []Replacement{{From: "ç", To: "c"}, {From: "Ç", To: "C"}},
	})

	assert.Equal(t,
		ClassifyAndClean(input, withAccents).NonLatin,
		ClassifyAndClean(input, bare).NonLatin)
	assert.Equal(t, []rune{'Ç', 'ï', 'û', '—', '€'}, ClassifyAndClean(input, bare).NonLatin)
}

func TestClassifyAndClean_RepairEncoding(t *testing.T) {
	opts := DefaultPolicyOptions()
	opts.RepairEncoding = true
	policy := MustPolicy(opts)

	got := ClassifyAndClean("ValÃ©rie", policy)

	assert.Equal(t, "Valérie", got.Cleaned)
	assert.True(t, got.Modified)
	assert.Equal(t, []rune{'©'}, got.Special)
	assert.Equal(t, []rune{'©', 'Ã'}, got.NonLatin)

	// Without repair the stray symbol is simply dropped
	assert.Equal(t, "ValÃrie", ClassifyAndClean("ValÃ©rie", DefaultPolicy()).Cleaned)
}

func TestClassifyAndClean_ConcurrentUse(t *testing.T) {
	policy := DefaultPolicy()
	want := ClassifyAndClean("Café #5!", policy)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, want, ClassifyAndClean("Café #5!", policy))
			}
		}()
	}
	wg.Wait()
}
