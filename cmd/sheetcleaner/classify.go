package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/David-Botos/sheet-cleaner/pkg/cleaner"
	"github.com/David-Botos/sheet-cleaner/pkg/config"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>...",
	Short: "Show how the policy classifies and cleans values",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, policy := config.LoadPolicy(cfg.PolicyPath, logger)
		for _, text := range args {
			printClassification(cmd.OutOrStdout(), text, cleaner.ClassifyAndClean(text, policy))
		}
		return nil
	},
}

func printClassification(w io.Writer, text string, c cleaner.Classification) {
	fmt.Fprintf(w, "Input:     %q\n", text)
	fmt.Fprintf(w, "Cleaned:   %q\n", c.Cleaned)
	fmt.Fprintf(w, "Special:   %s\n", runeList(c.Special))
	fmt.Fprintf(w, "Non-Latin: %s\n", runeList(c.NonLatin))
	fmt.Fprintf(w, "Modified:  %t\n", c.Modified)
	fmt.Fprintf(w, "Exempt:    %t\n", c.Exempt)
	fmt.Fprintf(w, "Flagged:   %t\n\n", c.Flagged())
}

func runeList(runes []rune) string {
	if len(runes) == 0 {
		return "-"
	}
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = fmt.Sprintf("%c (%U)", r, r)
	}
	return strings.Join(parts, ", ")
}
