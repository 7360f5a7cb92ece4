package handlers

import "strings"

// Validation limits.
const (
	MaxUsernameLength = 32
	MaxPasswordLength = 128
	MaxReasonLength   = 500
)

// SanitizeUsername trims the username; returns empty if over max length.
func SanitizeUsername(username string) string {
	s := strings.TrimSpace(username)
	if len(s) > MaxUsernameLength {
		return ""
	}
	return s
}

// SanitizePassword trims password; returns empty if over max length.
func SanitizePassword(password string) string {
	s := strings.TrimSpace(password)
	if len(s) > MaxPasswordLength {
		return ""
	}
	return s
}

// NormalizeAddress lowercases a hex wallet address.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
