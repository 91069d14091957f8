// Package normalize holds small input canonicalization helpers used by
// the stores before persisting user-supplied fields.
package normalize

import "strings"

// Email lowercases and trims an email address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// AuthMethod lowercases and trims an auth method label.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Slug reduces a display name to a URL-safe slug: lowercase ASCII
// letters, digits, and single hyphens.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
