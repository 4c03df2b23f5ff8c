// Package rename owns the filesystem side of the pipeline: turning extracted
// names into safe filenames, resolving collision-free destinations, and
// moving documents without ever overwriting anything.
package rename

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxNameLength caps sanitized names so destination paths stay well
// inside filesystem limits.
const DefaultMaxNameLength = 100

// forbiddenChars are illegal in filenames on at least one supported platform
const forbiddenChars = `/\:*?"<>|`

// Sanitize normalizes a raw extracted name into a filesystem-safe token
// using the default length cap. Pure and deterministic:
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(raw string) string {
	return SanitizeWithLimit(raw, DefaultMaxNameLength)
}

// SanitizeWithLimit sanitizes with an explicit length cap in runes.
// An empty result means no usable name; callers map that to a skip.
func SanitizeWithLimit(raw string, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxNameLength
	}

	// Drop forbidden and non-printing characters. Whitespace-class control
	// characters survive this pass so they still separate words below.
	var b strings.Builder
	for _, r := range raw {
		if strings.ContainsRune(forbiddenChars, r) {
			continue
		}
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}

	// Collapse whitespace runs to single spaces and trim the ends
	name := strings.Join(strings.Fields(b.String()), " ")

	if utf8.RuneCountInString(name) <= limit {
		return name
	}

	// Truncate at a whitespace boundary when one exists in the window
	truncated := []rune(name)[:limit]
	for i := len(truncated) - 1; i > 0; i-- {
		if truncated[i] == ' ' {
			return string(truncated[:i])
		}
	}
	return strings.TrimSpace(string(truncated))
}
