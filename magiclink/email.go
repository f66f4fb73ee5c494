package magiclink

import (
	"net/mail"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail returns the canonical form of an address: NFKC, trimmed,
// lower-cased. Display names ("Ann <ann@x.io>") are rejected.
func NormalizeEmail(raw string) (string, error) {
	s := strings.TrimSpace(norm.NFKC.String(raw))
	if len(s) <= 3 || !strings.Contains(s, "@") {
		return "", ErrInvalidEmail
	}
	parsed, err := mail.ParseAddress(s)
	if err != nil || parsed.Name != "" || parsed.Address != s {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(parsed.Address), nil
}
