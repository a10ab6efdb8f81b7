package util

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// MinPasswordLen is the shortest accepted password.
const MinPasswordLen = 6

// ValidationError is a caller input problem, reported as 400.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

var colorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks for a plain address without display name.
func ValidateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return invalid("email", "invalid format")
	}
	return nil
}

// ValidatePassword checks the minimum length.
func ValidatePassword(pwd string) error {
	if len(pwd) < MinPasswordLen {
		return invalid("password", "must be at least %d characters", MinPasswordLen)
	}
	if len(pwd) > 72 { // bcrypt limit
		return invalid("password", "must be at most 72 characters")
	}
	return nil
}

// ValidateColor accepts empty or #rgb / #rrggbb.
func ValidateColor(color string) error {
	if color == "" || colorRe.MatchString(color) {
		return nil
	}
	return invalid("themeColor", "must be a hex color like #1e40af")
}

// ValidateOneOf checks value against the allowed set.
func ValidateOneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return invalid(field, "must be one of %s", strings.Join(allowed, ", "))
}

// ParseDate accepts RFC3339, "2006-01-02T15:04:05" and "2006-01-02".
func ParseDate(field, s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid(field, "invalid date %q", s)
}
