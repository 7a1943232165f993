package utils

import (
	"fmt"
	"os"
	"os/user"
	"regexp"
	"strings"
)

const defaultKeyName = "keymaker"

var (
	keyNameInvalid = regexp.MustCompile(`[^a-z0-9\-_]+`)
	keyNameHyphens = regexp.MustCompile(`-{2,}`)
)

// GetUsername returns the login name of the current user.
func GetUsername() (string, error) {
	current, err := user.Current()
	if err != nil {
		return "", err
	}
	return current.Username, nil
}

// SanitizeKeyName lowercases name, joins its words with hyphens and drops
// anything other than letters, digits, hyphens and underscores. A name with
// nothing left becomes "keymaker".
func SanitizeKeyName(name string) string {
	name = strings.ToLower(strings.Join(strings.Fields(name), "-"))
	name = keyNameInvalid.ReplaceAllString(name, "")
	name = strings.Trim(keyNameHyphens.ReplaceAllString(name, "-"), "-")
	if name == "" {
		return defaultKeyName
	}
	return name
}

// keyNameBase is the hostname, or the username if the hostname is unknown.
func keyNameBase() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	if name, err := GetUsername(); err == nil {
		return name
	}
	return defaultKeyName
}

// GenerateKeyName derives a key file name from this machine's hostname that
// does not collide, ignoring case, with any name in taken. Collisions get a
// -2, -3, ... suffix.
func GenerateKeyName(taken []string) string {
	used := make(map[string]bool, len(taken))
	for _, name := range taken {
		used[strings.ToLower(name)] = true
	}

	base := SanitizeKeyName(keyNameBase())
	name := base
	for suffix := 2; used[name]; suffix++ {
		name = fmt.Sprintf("%s-%d", base, suffix)
	}
	return name
}
