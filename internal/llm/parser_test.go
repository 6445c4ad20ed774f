package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `[{"item":"Ayam"}]`,
			want:  `[{"item":"Ayam"}]`,
		},
		{
			name:  "json fence",
			input: "```json\n[{\"item\":\"Ayam\"}]\n```",
			want:  `[{"item":"Ayam"}]`,
		},
		{
			name:  "bare fence",
			input: "```\n[]\n```",
			want:  `[]`,
		},
		{
			name:  "surrounding whitespace",
			input: "  \n```json\n{}\n```\n  ",
			want:  `{}`,
		},
		{
			name:  "single line fence",
			input: "```json{}```",
			want:  `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanMarkdownWrapper(tt.input))
		})
	}
}
