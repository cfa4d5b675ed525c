package core

import (
	"regexp"
	"strings"
)

// usernamePattern: an uppercase letter followed by at least one more
// alphanumeric character.
var usernamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]+$`)

// passwordSymbols is the set of special characters a password must contain
// at least one of.
const passwordSymbols = "!@#$%^&*()_+={}[]:;<>,.?/~`-"

// ValidateUsername enforces the account naming rule. Usernames are
// case-sensitive; "abc" fails, "Abc12" passes.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidFormat
	}
	return nil
}

// ValidatePassword requires an uppercase first letter, at least one symbol
// from passwordSymbols, and no characters outside letters, digits and that
// symbol set.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrInvalidFormat
	}
	first := password[0]
	if first < 'A' || first > 'Z' {
		return ErrInvalidFormat
	}
	if !strings.ContainsAny(password, passwordSymbols) {
		return ErrInvalidFormat
	}
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case strings.ContainsRune(passwordSymbols, r):
		default:
			return ErrInvalidFormat
		}
	}
	return nil
}
