package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDate(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"12/05/2024", true},
		{"1/5/2024", true},
		{"31/12/2024", true},  // day/month/year
		{"2024/31/12", true},  // year/day/month
		{"2024/12/31", true},  // year/month/day
		{"12/31/2024", true},  // month/day/year
		{"29/02/2024", true},  // leap day
		{"29/02/2023", false}, // not a leap year
		{"31/31/2024", false},
		{"12-05-2024", false},
		{"12/05/24", false},
		{" 12/05/2024", false},
		{"12/05/2024 10:00", false},
		{"", false},
		{"hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDate(tt.input))
		})
	}
}

func TestContainsParenthesizedName(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"O'Connor (John)", true},
		{"(Mary Ann)", true},
		{"Smith (J) Jr", true},
		{"(123)", false},
		{"()", false},
		{"(Jo3n)", false},
		{"(Élodie)", false},
		{"John", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsParenthesizedName(tt.input))
		})
	}
}

func TestRepairEncoding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "ascii untouched", input: "plain text", want: "plain text"},
		{name: "mojibake", input: "ValÃ©rie", want: "Valérie"},
		{name: "already correct", input: "Valérie", want: "Valérie"},
		{name: "decomposed accent", input: "Vale\u0301rie", want: "Valérie"},
		{name: "outside windows-1252", input: "日本語", want: "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairEncoding(tt.input))
		})
	}
}
