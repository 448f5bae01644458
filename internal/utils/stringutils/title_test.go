package stringutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTitle(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "short", content: "Hello there", want: "Hello there"},
		{name: "markdown stripped", content: "# **Explain** `goroutines`\nplease", want: "Explain goroutines please"},
		{name: "six words max", content: "one two three four five six seven eight", want: "one two three four five six"},
		{name: "long words truncated", content: "internationalization considerations for multilingual applications", want: "internationalization considerations for ..."},
		{name: "empty", content: "  \n ", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GenerateTitle(tc.content))
		})
	}
}

func TestTruncateTitleCountsRunes(t *testing.T) {
	assert.Equal(t, "héllo", TruncateTitle("héllo", 5))
	assert.Equal(t, "hé...", TruncateTitle("héllo", 2))
}
