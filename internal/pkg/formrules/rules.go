// Package formrules holds the field rules shared by request validation on the
// server and by the shell's inline form checks.
package formrules

import (
	"net/mail"
	"strings"
	"unicode"
)

const MinPasswordLength = 8

// PasswordProblem returns a user-facing message, or "" when pw is acceptable.
func PasswordProblem(pw string) string {
	if len(pw) < MinPasswordLength {
		return "Password must be at least 8 characters"
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return "Password must contain uppercase, lowercase, and a number"
	}
	return ""
}

func EmailProblem(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "Enter a valid email address"
	}
	return ""
}

func ResetCodeProblem(code string) string {
	if len(code) != 6 {
		return "Enter the 6-digit code from your email"
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "Enter the 6-digit code from your email"
		}
	}
	return ""
}

// NormalizeEmails trims, lower-cases, drops blanks and removes duplicates
// while keeping the first occurrence order.
func NormalizeEmails(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
