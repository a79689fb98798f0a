package driver

import "errors"

// Predefined errors
var (
	// ErrStmtExecContextNotSupported is returned when statement does not support ExecContext
	ErrStmtExecContextNotSupported = errors.New("sqlshape driver: statement does not support ExecContext")

	// ErrStmtQueryContextNotSupported is returned when statement does not support QueryContext
	ErrStmtQueryContextNotSupported = errors.New("sqlshape driver: statement does not support QueryContext")

	// ErrBeginTxNotSupported is returned when underlying connection does not support BeginTx
	ErrBeginTxNotSupported = errors.New("sqlshape driver: underlying connection does not support BeginTx")

	// ErrPrepareContextNotSupported is returned when underlying connection does not support PrepareContext
	ErrPrepareContextNotSupported = errors.New("sqlshape driver: underlying connection does not support PrepareContext")

	// ErrInvalidDatabaseName is returned when a database name is empty or unsafe
	ErrInvalidDatabaseName = errors.New("sqlshape driver: invalid database name")
)
