package domain

import "regexp"

// emailPattern matches a local part, an @, a domain, a dot and a TLD,
// none of which may contain whitespace or another @. It is deliberately
// permissive and is not a full RFC 5322 validator; it mirrors the
// check invite forms run on every keystroke.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
