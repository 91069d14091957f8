// Package inputval validates user-supplied form values before they
// reach the stores.
package inputval

import (
	"net/mail"
	"strings"
)

// MinPasswordLength is the minimum accepted password length for
// password-based signups.
const MinPasswordLength = 8

// IsValidEmail reports whether s is a plausible bare email address.
// Display-name forms ("Name <a@b>") are rejected; the stores persist
// only the address itself.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	if addr.Address != s {
		// Display name or surrounding decoration present.
		return false
	}
	local, _, ok := strings.Cut(s, "@")
	if !ok || local == "" {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(s, "..") {
		return false
	}
	return true
}

// IsValidPassword reports whether the password meets the minimum
// length rule.
func IsValidPassword(s string) bool {
	return len(s) >= MinPasswordLength
}

// IsValidAuthMethod reports whether s names a supported sign-in
// method, ignoring case and whitespace.
func IsValidAuthMethod(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "password", "google":
		return true
	}
	return false
}
