package middleware

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Input validation and sanitization utilities

// ErrInvalidRequest marks request-shape problems so the HTTP layer can
// answer 400 instead of 500.
var ErrInvalidRequest = errors.New("invalid request")

// maxInputRunes caps the symptom text; free text beyond this is almost
// certainly a paste accident and blows the model context for nothing.
const maxInputRunes = 8000

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidateSessionID checks the device-scoped session key taken from the URL.
func ValidateSessionID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: invalid session id", ErrInvalidRequest)
	}
	return nil
}

// ValidateInputText bounds the free-text payload. Emptiness is not checked
// here; an empty submit is suppressed, not an error.
func ValidateInputText(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: input text is not valid UTF-8", ErrInvalidRequest)
	}
	if utf8.RuneCountInString(text) > maxInputRunes {
		return fmt.Errorf("%w: input text exceeds %d characters", ErrInvalidRequest, maxInputRunes)
	}
	return nil
}
