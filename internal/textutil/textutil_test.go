package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Build <b>services</b> in Go.</p>", "Build services in Go."},
		{"plain text", "plain text"},
		{"  <div> padded </div>  ", "padded"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanHTML(tt.in))
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", TruncateRunes("short", 10, "..."))
	assert.Equal(t, "abc...", TruncateRunes("abcdef", 3, "..."))
	assert.Equal(t, "abc", TruncateRunes("abcdef", 3, ""))

	// Rune-safe: never splits a multi-byte character.
	assert.Equal(t, "привет", TruncateRunes("привет мир", 6, ""))
	assert.Equal(t, 6+len([]rune("\n[cut]")), len([]rune(TruncateRunes(strings.Repeat("ё", 20), 6, "\n[cut]"))))
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "  line  one \n\n\n line\ttwo  \n"
	assert.Equal(t, "line one\nline two", NormalizeWhitespace(in))
	assert.Equal(t, "", NormalizeWhitespace("   \n \t \n"))
}
