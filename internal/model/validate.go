package model

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidPassword is returned when a password fails the account rule
var ErrInvalidPassword = errors.New("password must be 8-25 characters and contain at least one letter and one digit")

// ValidatePassword checks the account password rule: 8-25 characters,
// at least one letter and at least one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 25 {
		return ErrInvalidPassword
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrInvalidPassword
	}

	return nil
}

// ValidateEmail does a minimal sanity check on an email address
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return errors.New("invalid email address")
	}
	return nil
}
