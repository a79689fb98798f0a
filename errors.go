package sqlshape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/sqlshape/domain/model"
)

// Standard errors. Descriptor errors come from the model package and are
// re-exported so callers only need to import sqlshape.
var (
	// ErrNoTable is returned when a descriptor has no usable table name
	ErrNoTable = model.ErrNoTable

	// ErrInvalidIdentifier is returned when a column name fails the identifier allowlist
	ErrInvalidIdentifier = model.ErrInvalidIdentifier

	// ErrEmptyRecord is returned when an update has no columns to set
	ErrEmptyRecord = model.ErrEmptyRecord

	// ErrClosed is returned when a closed DB is used
	ErrClosed = errors.New("sqlshape: database is closed")

	// ErrInvalidTreeOptions indicates missing or conflicting tree field names
	ErrInvalidTreeOptions = errors.New("sqlshape: invalid tree options")

	// ErrCycle indicates rows whose parent references form a cycle
	ErrCycle = errors.New("sqlshape: parent references form a cycle")

	// ErrUnsupportedFormat indicates an unsupported output format
	ErrUnsupportedFormat = errors.New("sqlshape: unsupported output format")

	// ErrUnsupportedCompression indicates a compression type that cannot be written
	ErrUnsupportedCompression = errors.New("sqlshape: unsupported compression type")

	// ErrNoTables indicates no tables found in database
	ErrNoTables = errors.New("sqlshape: no tables found in database")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	TableName string
	Query     string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, tableName string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		TableName: tableName,
	}
}

// WithQuery adds the statement text to the error context
func (ec *ErrorContext) WithQuery(query string) *ErrorContext {
	ec.Query = query
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("sqlshape: %s failed", ec.Operation))

	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}

	if ec.Query != "" {
		parts = append(parts, "query: "+ec.Query)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
