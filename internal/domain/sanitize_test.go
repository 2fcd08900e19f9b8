package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "1234_720p.mp4", "1234_720p.mp4"},
		{"empty", "", ""},
		{"all illegal", `\/*?:"<>|`, ""},
		{"mixed", `what? a "video": <1/2>|x\y*.mp4`, "what a video 12xy.mp4"},
		{"keeps whitespace", "  two  spaces  ", "  two  spaces  "},
		{"keeps case", "MiXeD.JPG", "MiXeD.JPG"},
		{"keeps unicode", "café ☕ 写真.jpg", "café ☕ 写真.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_OnlyRemoves(t *testing.T) {
	inputs := []string{
		`twitter_1790000000000000000_1.jpg`,
		`a<b>c:d"e/f\g|h?i*j`,
		"line\nbreak\ttab",
		strings.Repeat("?x", 50),
	}

	for _, input := range inputs {
		output := SanitizeFilename(input)
		assert.False(t, strings.ContainsAny(output, `\/*?:"<>|`), "output %q still has illegal chars", output)

		// output must be the input with illegal characters dropped, in order
		var expected strings.Builder
		for _, r := range input {
			if !strings.ContainsRune(`\/*?:"<>|`, r) {
				expected.WriteRune(r)
			}
		}
		assert.Equal(t, expected.String(), output)
	}
}
