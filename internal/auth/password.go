package auth

import (
	"regexp"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 8

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword enforces the strength policy: minimum length plus at
// least one uppercase letter, one lowercase letter and one digit.
func ValidPassword(password string) bool {
	if len(password) < minPasswordLength {
		return false
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
