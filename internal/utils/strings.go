package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// emailRegex is a simple regex for validating email format.
// It checks for: local-part@domain.tld format.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail checks if the given string is a valid email address format.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// ParseAssignment splits "key=value" on the first '='. The key must be
// non-empty; the value may be empty.
func ParseAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid assignment %q, expected key=value", s)
	}
	return key, value, nil
}

// ParseAssignments parses every assignment in order. Later keys override
// earlier ones.
func ParseAssignments(assignments []string) (map[string]string, error) {
	values := make(map[string]string, len(assignments))
	for _, a := range assignments {
		key, value, err := ParseAssignment(a)
		if err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, nil
}
