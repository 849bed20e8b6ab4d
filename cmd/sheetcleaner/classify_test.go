package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/David-Botos/sheet-cleaner/pkg/cleaner"
	"github.com/David-Botos/sheet-cleaner/pkg/model"
)

func TestRuneList(t *testing.T) {
	assert.Equal(t, "-", runeList(nil))
	assert.Equal(t, "# (U+0023), é (U+00E9)", runeList([]rune{'#', 'é'}))
}

func TestPrintClassification(t *testing.T) {
	var buf bytes.Buffer
	printClassification(&buf, "Café #5", cleaner.Classification{
		Special:  []rune{'#'},
		NonLatin: []rune{'é'},
		Cleaned:  "Café 5",
		Modified: true,
	})

	out := buf.String()
	assert.Contains(t, out, `Cleaned:   "Café 5"`)
	assert.Contains(t, out, "Special:   # (U+0023)")
	assert.Contains(t, out, "Modified:  true")
	assert.Contains(t, out, "Flagged:   true")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, model.ScanSummary{TotalCells: 10, Flagged: 3, Fixed: 2, Files: 2})
	assert.Equal(t, "Total cells processed: 10, Flagged: 3, Fixed: 2\n", buf.String())

	buf.Reset()
	printSummary(&buf, model.ScanSummary{Files: 2, FailedFiles: 1})
	assert.Contains(t, buf.String(), "Failed sources: 1 of 2")
}
