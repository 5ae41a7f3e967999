package translate

import (
	"strings"
	"unicode"
)

// Sanitize maps a Jenkins metric key to a Prometheus metric name: the key is
// lowercased and every character outside [a-z0-9_] (notably '.', '-', '(' and
// ')') becomes '_'. A leading digit is prefixed with '_'.
func Sanitize(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 1)

	for i, r := range strings.ToLower(key) {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// snakeCase inserts '_' before every upper-case letter and lowercases the
// result: lastFailedBuild becomes last_failed_build.
func snakeCase(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
