// Package validate provides input validation and sanitization for
// observer-supplied text before it is persisted or echoed back in API
// responses.
package validate

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Length limits count characters, not bytes
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}

	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}

	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// SanitizeHTML escapes HTML special characters so free text can be
// rendered without script injection.
func SanitizeHTML(s string) string {
	return html.EscapeString(s)
}

// SanitizeString performs both validation and HTML sanitization.
// Returns the sanitized string and an error if validation fails.
func SanitizeString(s string, constraints StringConstraints) (string, error) {
	validated, err := String(s, constraints)
	if err != nil {
		return "", err
	}
	return SanitizeHTML(validated), nil
}

// LocationName validates the optional place description of a sighting:
// - Optional (can be empty)
// - Max 200 characters
func LocationName(name string) (string, error) {
	return SanitizeString(name, StringConstraints{
		MaxLength:  200,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}

// TurtleNotes validates per-turtle or additional notes:
// - Optional (can be empty)
// - Max 2000 characters
func TurtleNotes(notes string) (string, error) {
	return SanitizeString(notes, StringConstraints{
		MaxLength:  2000,
		AllowEmpty: true,
		TrimSpace:  true,
	})
}

// ActionDetail validates the free-text description required when the
// action taken is "Other":
// - 1-500 characters
func ActionDetail(detail string) (string, error) {
	return SanitizeString(detail, StringConstraints{
		MinLength:  1,
		MaxLength:  500,
		AllowEmpty: false,
		TrimSpace:  true,
	})
}

// DisplayName validates an observer display name:
// - Optional (can be empty)
// - Max 100 characters
// - Letters, numbers, spaces, dash, underscore, period only
func DisplayName(name string) (string, error) {
	pattern := regexp.MustCompile(`^[A-Za-z0-9 _\-\.]+$`)
	return SanitizeString(name, StringConstraints{
		MaxLength:      100,
		AllowedPattern: pattern,
		AllowEmpty:     true,
		TrimSpace:      true,
	})
}
