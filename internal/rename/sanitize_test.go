package rename

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "Hans Müller", Sanitize("  Hans  Müller "))
}

func TestSanitize_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "Anna Schmidt", "Anna Schmidt"},
		{"leading and trailing whitespace", "  Hans  Müller ", "Hans Müller"},
		{"forbidden characters dropped", `Anna/Schmidt\:*?"<>|`, "AnnaSchmidt"},
		{"tabs and newlines separate words", "Hans\n\tMüller", "Hans Müller"},
		{"umlauts survive", "Jürgen Weiß", "Jürgen Weiß"},
		{"hyphen and dot survive", "Dr. Anna-Lena Meyer", "Dr. Anna-Lena Meyer"},
		{"control characters dropped", "Anna\x00Schmidt", "AnnaSchmidt"},
		{"empty input", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"forbidden characters only", `\/:*?`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"  Hans  Müller ",
		`Anna/Schmidt`,
		"Dr. med. Jürgen Groß-Meyer",
		strings.Repeat("Maximilian ", 30),
		"",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "not idempotent for %q", in)
	}
}

func TestSanitizeWithLimit_TruncatesAtWordBoundary(t *testing.T) {
	got := SanitizeWithLimit("Anna Maria Franziska von Hohenberg", 15)

	// The window ends mid-word, so the cut falls back to the last space
	assert.Equal(t, "Anna Maria", got)
}

func TestSanitizeWithLimit_HardCutWithoutWhitespace(t *testing.T) {
	got := SanitizeWithLimit(strings.Repeat("a", 120), 100)
	assert.Equal(t, strings.Repeat("a", 100), got)
}

func TestSanitizeWithLimit_CountsRunesNotBytes(t *testing.T) {
	got := SanitizeWithLimit(strings.Repeat("ü", 120), 100)
	assert.Equal(t, 100, utf8.RuneCountInString(got))
}

func TestSanitizeWithLimit_ZeroLimitUsesDefault(t *testing.T) {
	assert.Equal(t, "Anna Schmidt", SanitizeWithLimit("Anna Schmidt", 0))

	long := SanitizeWithLimit(strings.Repeat("x", 200), 0)
	assert.Equal(t, DefaultMaxNameLength, utf8.RuneCountInString(long))
}

func TestSanitizeWithLimit_ShortNameUntouched(t *testing.T) {
	assert.Equal(t, "Maria Klein", SanitizeWithLimit("Maria Klein", 100))
}
