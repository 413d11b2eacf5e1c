package domain

import "strings"

// NormalizeEmail canonicalizes an account identifier. Registration and
// every later lookup use the normalized form, so mixed-case input
// resolves the account it was registered under.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Account represents a wallet account within the core domain.
// The email address doubles as the account identifier; Balance is held
// in integer minor units and must never be observable below zero.
type Account struct {
	Email   string `json:"email"` // Primary key / directory identifier
	Name    string `json:"name"`  // Display name
	Balance int64  `json:"balance"`
	AuditFields
}
