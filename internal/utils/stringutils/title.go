package stringutils

import (
	"strings"
)

const (
	// DefaultTitle is used until a conversation receives its first user message.
	DefaultTitle = "New Chat"

	titleMaxWords = 6
	titleMaxRunes = 40
	ellipsis      = "..."
)

var markdownNoise = strings.NewReplacer("#", " ", "*", " ", "`", " ", "\n", " ")

// SanitizeTitleContent strips Markdown markers and newlines and trims the result.
func SanitizeTitleContent(content string) string {
	return strings.TrimSpace(markdownNoise.Replace(content))
}

// FirstWords keeps at most n whitespace separated words joined by single spaces.
func FirstWords(content string, n int) string {
	words := strings.Fields(content)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// TruncateTitle cuts title to maxLen runes and appends an ellipsis when it was longer.
func TruncateTitle(title string, maxLen int) string {
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	return string(runes[:maxLen]) + ellipsis
}

// GenerateTitle derives a conversation title from the first user message.
func GenerateTitle(content string) string {
	title := FirstWords(SanitizeTitleContent(content), titleMaxWords)
	return TruncateTitle(title, titleMaxRunes)
}
