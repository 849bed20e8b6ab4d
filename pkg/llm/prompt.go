// pkg/llm/prompt.go
package llm

import (
	"strings"
	"unicode/utf8"
)

const promptTemplate = "Clean the following text by removing any characters that are not letters " +
	"(including accented letters), digits, whitespace, or the following punctuation: . - '\n" +
	"Original text: %s\n" +
	"Return only the cleaned text."

// Truncate shortens text to max runes and marks the cut with "..."
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}

// BuildPrompt returns the user message sent for one cell
func BuildPrompt(text string) string {
	return strings.Replace(promptTemplate, "%s", text, 1)
}

// cleanCompletion drops reasoning blocks and code fences some models wrap answers in
func cleanCompletion(s string) string {
	return stripCodeFence(stripThinkBlock(strings.TrimSpace(s)))
}

// stripThinkBlock removes a leading <think>...</think> block
func stripThinkBlock(s string) string {
	const open, close = "<think>", "</think>"
	start := strings.Index(s, open)
	if start < 0 {
		return s
	}
	end := strings.Index(s, close)
	if end < 0 {
		// Unclosed block
		return strings.TrimSpace(s[:start])
	}
	return strings.TrimSpace(s[:start] + s[end+len(close):])
}

// stripCodeFence removes ``` wrappers
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
