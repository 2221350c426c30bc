package valueobject

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+$`)

// IsValidEmail applies the loose email check used by the admin forms
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// MinPasswordLength is the shortest password accepted for admin accounts
const MinPasswordLength = 6

// IsValidPassword checks the password length rule
func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}
