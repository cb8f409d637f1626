package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidEmail indicates the email address is malformed
	ErrInvalidEmail = errors.New("email address is not valid")

	// ErrPasswordTooShort indicates the password is shorter than 8 characters
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")

	// ErrPasswordWeak indicates the password is missing a required character class
	ErrPasswordWeak = errors.New("password must contain an uppercase letter, a lowercase letter, a digit and a special character")
)

// emailRegex matches the local@domain shape with at least one dot in the domain
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// CredentialValidator handles email and password validation
type CredentialValidator struct{}

// NewCredentialValidator creates a new credential validator instance
func NewCredentialValidator() *CredentialValidator {
	return &CredentialValidator{}
}

// ValidateEmail validates an email address.
// Returns the sanitized (trimmed, lowercased) address and an error if invalid.
func (v *CredentialValidator) ValidateEmail(email string) (string, error) {
	sanitized := strings.ToLower(strings.TrimSpace(email))
	if sanitized == "" {
		return "", ErrEmptyEmail
	}
	if !emailRegex.MatchString(sanitized) {
		return "", ErrInvalidEmail
	}
	return sanitized, nil
}

// ValidatePassword checks password strength. A valid password is at least
// 8 characters and contains an uppercase letter, a lowercase letter, a
// digit and a special character.
func (v *CredentialValidator) ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return ErrPasswordWeak
	}
	return nil
}
