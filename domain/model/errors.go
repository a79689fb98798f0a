// Package model provides domain model for sqlshape
package model

import "errors"

var (
	// ErrNoTable is returned when a descriptor has no usable table name
	ErrNoTable = errors.New("sqlshape: table is not specified")

	// ErrInvalidIdentifier is returned when a column name fails the identifier allowlist
	ErrInvalidIdentifier = errors.New("sqlshape: invalid identifier")

	// ErrEmptyRecord is returned when an update has no columns to set
	ErrEmptyRecord = errors.New("sqlshape: record has no columns")
)
