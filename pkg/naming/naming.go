// Package naming derives filesystem-safe archive and display names.
package naming

import (
	"net/url"
	"strings"
)

const (
	fallbackName = "gallery"
	maxNameLen   = 80
)

// SafeName sanitizes a user-supplied name: every run of characters
// outside [A-Za-z0-9._-] collapses to a single '-', the result is
// trimmed of leading/trailing '-' and capped at 80 characters.
// An empty result falls back to "gallery".
func SafeName(candidate string) string {
	candidate = strings.TrimSpace(candidate)

	var b strings.Builder
	lastDash := false
	for _, r := range candidate {
		if isSafe(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	name := strings.Trim(b.String(), "-")
	if len(name) > maxNameLen {
		name = strings.Trim(name[:maxNameLen], "-")
	}
	if name == "" {
		return fallbackName
	}
	return name
}

// DefaultNameFromURL builds a display name from the scanned URL's host
// (leading "www." stripped) and its last non-empty path segment. The
// host alone is used when the path is empty, "gallery" when parsing fails.
func DefaultNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return fallbackName
	}

	host := strings.TrimPrefix(u.Host, "www.")

	segment := ""
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			segment = part
		}
	}

	if segment == "" {
		return SafeName(host)
	}
	return SafeName(host + "-" + segment)
}

func isSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_' || r == '-':
		return true
	}
	return false
}
