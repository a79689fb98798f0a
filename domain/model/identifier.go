package model

import (
	"fmt"
	"regexp"
)

// identifierPattern is the allowlist for table and column names.
var identifierPattern = regexp.MustCompile(`[A-Za-z0-9_]+`)

// SafeName returns the first run of identifier characters in name.
// Anything after it (quotes, whitespace, statement separators) is discarded,
// so "users; drop table x" yields "users". An empty string means name held
// no usable identifier at all.
func SafeName(name string) string {
	return identifierPattern.FindString(name)
}

// ValidateIdentifier reports whether name consists only of identifier characters.
func ValidateIdentifier(name string) error {
	if name == "" || SafeName(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// tableName resolves a descriptor table into a safe identifier.
func tableName(name string) (string, error) {
	safe := SafeName(name)
	if safe == "" {
		return "", ErrNoTable
	}
	return safe, nil
}
