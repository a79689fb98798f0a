package driver

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MemoryDatabase is the SQLite name for a private in-memory database.
const MemoryDatabase = ":memory:"

// maxLogLength caps the size of queries and values written to logs
const maxLogLength = 200

// ValidateDatabaseName checks that name can be handed to SQLite as a file name
func ValidateDatabaseName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidDatabaseName
	}
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("%w: contains null byte", ErrInvalidDatabaseName)
	}
	return nil
}

// DSNOptions controls how a database name is turned into a DSN
type DSNOptions struct {
	// ReadOnly opens the database with mode=ro
	ReadOnly bool
	// Pragmas are applied on every new connection, e.g. "foreign_keys(1)"
	Pragmas []string
}

// BuildDSN renders name and options into a DSN understood by modernc.org/sqlite.
// Read-only databases need the URI form so that SQLite itself sees mode=ro.
func BuildDSN(name string, opts DSNOptions) (string, error) {
	if err := ValidateDatabaseName(name); err != nil {
		return "", err
	}

	params := url.Values{}
	for _, p := range opts.Pragmas {
		if p = strings.TrimSpace(p); p != "" {
			params.Add("_pragma", p)
		}
	}

	base := name
	if opts.ReadOnly && name != MemoryDatabase {
		if !strings.HasPrefix(base, "file:") {
			base = "file:" + base
		}
		params.Set("mode", "ro")
	}

	if len(params) == 0 {
		return base, nil
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode(), nil
}

// TruncateForLog shortens s so that a single statement cannot flood the log.
// The cut never splits a UTF-8 sequence.
func TruncateForLog(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLogLength {
		return s
	}
	cut := maxLogLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
