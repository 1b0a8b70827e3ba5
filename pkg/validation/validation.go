package validation

import (
	"regexp"
	"strings"
)

var phoneRegex = regexp.MustCompile(`^\d{10}$`)

// ValidatePhone accepts exactly 10 digits, no country prefix
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// ValidateOTPCode accepts a short numeric code
func ValidateOTPCode(code string) bool {
	if len(code) < 4 || len(code) > 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SanitizeString trims whitespace and strips null bytes
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	return strings.ReplaceAll(input, "\x00", "")
}
