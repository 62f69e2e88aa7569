package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_.]+$`)

// RequiredString validates that a string is not empty after trimming.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

func MinLenString(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return len(value) >= min },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %d characters long", min)},
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)},
	}
}

// ValidEmail validates that a string is a usable email address: parseable,
// with a dotted domain. Stricter filtering is left to delivery.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.TrimSpace(value) == "" {
				return false
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			parts := strings.Split(addr.Address, "@")
			if len(parts) != 2 || parts[0] == "" {
				return false
			}
			domain := parts[1]
			return strings.Contains(domain, ".") &&
				!strings.HasPrefix(domain, ".") &&
				!strings.HasSuffix(domain, ".")
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// InList validates that the value is one of the allowed values.
func InList[T comparable](field string, value T, allowed []T) Rule {
	return Rule{
		Check: func() bool { return slices.Contains(allowed, value) },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of the allowed values: %v", allowed)},
	}
}

// ValidUsername validates the profile username shape: lowercase letters,
// digits, underscore and dot, 3 to 30 characters.
func ValidUsername(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return len(value) >= 3 && len(value) <= 30 && usernameRegex.MatchString(value)
		},
		Error: ValidationError{Field: field, Message: "must be 3-30 characters of lowercase letters, digits, dots or underscores"},
	}
}

// ValidLanguageTag validates that the value parses as a BCP 47 language tag
// and is one of the configured locales.
func ValidLanguageTag(field, value string, locales []string) Rule {
	return Rule{
		Check: func() bool {
			if _, err := language.Parse(value); err != nil {
				return false
			}
			return slices.Contains(locales, value)
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be one of the supported locales: %v", locales)},
	}
}

// PositiveNumber validates that a numeric value is greater than zero.
func PositiveNumber[T ~int | ~int64 | ~float64](field string, value T) Rule {
	return Rule{
		Check: func() bool { return value > 0 },
		Error: ValidationError{Field: field, Message: "must be greater than zero"},
	}
}
