package domain

import (
	"html"
	"strings"
)

const MaxNameLen = 24

// Names a client may never claim for itself. Checked lowercase.
var reservedNames = map[string]struct{}{
	"system":    {},
	"server":    {},
	"admin":     {},
	"moderator": {},
	"owner":     {},
}

// SanitizeName normalizes a requested display name: trims whitespace,
// escapes the five HTML special characters so the name can never be
// reinterpreted as markup by a client renderer, and enforces the length
// bound and the reserved set. Collision handling is the registry's job.
func SanitizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrInvalidName
	}
	name = html.EscapeString(name)
	if len(name) > MaxNameLen {
		return "", ErrInvalidName
	}
	if _, ok := reservedNames[strings.ToLower(name)]; ok {
		return "", ErrInvalidName
	}
	return name, nil
}

// Reserved reports whether a name belongs to the immutable reserved set.
func Reserved(name string) bool {
	_, ok := reservedNames[strings.ToLower(name)]
	return ok
}

// NameKey is the case-insensitive index key for a display name.
func NameKey(name string) string {
	return strings.ToLower(name)
}
