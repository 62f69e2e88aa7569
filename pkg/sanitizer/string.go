// Package sanitizer normalizes untrusted input before validation and
// persistence. Every function is a pure string transform.
package sanitizer

import "strings"

// Trim removes surrounding whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// ToLower lower-cases the string.
func ToLower(s string) string {
	return strings.ToLower(s)
}

// SingleLine collapses all whitespace runs (including newlines) into single
// spaces and trims the result. Used for display names and locations.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail trims and lower-cases an email address so lookups and the
// unique index agree on a canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername canonicalizes a username: trimmed and lower-cased.
// Uniqueness is enforced on this form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NormalizeCurrency upper-cases a currency code after trimming.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// Apply runs the transforms over the value in order.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, t := range transforms {
		value = t(value)
	}
	return value
}
