package validate

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidEmail reports an address that does not look like local@domain.tld.
var ErrInvalidEmail = errors.New("invalid email format")

// emailPattern accepts local@domain.tld with the characters common in real
// addresses. The character classes exclude @, so a match has exactly one @
// and a dotted domain. Deliverability is the mail server's problem.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validates an observer email address and returns it normalized
// (trimmed, lowercased). Length limits follow RFC 5321: 254 bytes for the
// whole address, 64 for the local part.
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" {
		return "", ErrEmpty
	}
	if len(email) > 254 {
		return "", ErrStringTooLong
	}
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	if at := strings.IndexByte(email, '@'); at > 64 {
		return "", ErrStringTooLong
	}

	return email, nil
}
