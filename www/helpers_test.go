package www

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSafeRedirect(t *testing.T) {
	cases := []struct {
		to, fallback, want string
	}{
		{"/notes/abc", "/", "/notes/abc"},
		{"", "/notes", "/notes"},
		{"https://evil.example", "/notes", "/notes"},
		{"//evil.example", "/notes", "/notes"},
		{"/\\evil.example", "/notes", "/notes"},
		{"notes", "", "/"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, safeRedirect(c.to, c.fallback), "to=%q", c.to)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, validateEmail("a@bc"))
	assert.False(t, validateEmail("a@b"))
	assert.False(t, validateEmail("abcdef"))
	assert.False(t, validateEmail(""))
}

func TestListTitle(t *testing.T) {
	assert.Equal(t, "Cast bracket", listTitle("cast"))
	assert.Equal(t, "Note board", listTitle("notes"))
	assert.Equal(t, "other", listTitle("other"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))

	// Cuts on rune boundaries.
	got := truncate("żółw żółw", 3)
	assert.Equal(t, "żół...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "日本語", truncate("日本語", 3))
}
