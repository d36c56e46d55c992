package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "hello", 100, "hello"},
		{"exact length", "abc", 3, "abc"},
		{"ascii cut", strings.Repeat("x", 250), 100, strings.Repeat("x", 100)},
		{"multibyte cut on rune boundary", "héllo wörld", 4, "héll"},
		{"cjk", "日本語のテキスト", 3, "日本語"},
		{"emoji", "👋🌍🚀✨", 2, "👋🌍"},
		{"zero", "abc", 0, ""},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestTruncate_SnippetIsHundredRunes(t *testing.T) {
	body := strings.Repeat("é", 150)
	got := Truncate(body, 100)
	assert.Equal(t, 100, utf8.RuneCountInString(got))
	assert.Equal(t, 200, len(got))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 200))
	assert.Equal(t, strings.Repeat("a", 200)+"...", Preview(strings.Repeat("a", 201), 200))
	assert.Equal(t, strings.Repeat("a", 200), Preview(strings.Repeat("a", 200), 200))
}

func TestEnsureUTF8(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"valid ascii", "Hello, World!", "Hello, World!"},
		{"valid utf8", "Héllo wörld", "Héllo wörld"},
		{"windows-1252 smart quotes", "\x93Hello\x94", "“Hello”"},
		{"latin-1 cedilla", "Gar\xe7on", "Garçon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnsureUTF8(tt.input)
			assert.True(t, utf8.ValidString(got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	got := SanitizeUTF8("ok\xffok")
	assert.Equal(t, "ok�ok", got)
}
