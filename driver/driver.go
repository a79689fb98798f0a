// Package driver provides the database/sql driver used by sqlshape.
//
// The driver opens SQLite databases through modernc.org/sqlite (pure Go, no cgo)
// and wraps every connection so that executed statements can be observed.
//
// Key features:
//   - Read-only and pragma DSN options (see BuildDSN)
//   - A QueryHook receiving query text, arguments, elapsed time and error
//   - Transactions and prepared statements pass through to SQLite unchanged
//
// Usage:
//
//	connector := driver.NewConnector("app.db", func(ctx context.Context, ev driver.QueryEvent) {
//		log.Printf("%s (%s)", ev.Query, ev.Elapsed)
//	})
//	db := sql.OpenDB(connector)
package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
)

// DriverName is the name the driver is registered under with database/sql
const DriverName = "sqlshape"

func init() {
	sql.Register(DriverName, NewDriver())
}

// Operation identifies the kind of statement reported to a QueryHook
type Operation string

const (
	// OperationExec is a statement executed for its side effects
	OperationExec Operation = "exec"
	// OperationQuery is a statement returning rows
	OperationQuery Operation = "query"
	// OperationBegin starts a transaction
	OperationBegin Operation = "begin"
	// OperationCommit commits a transaction
	OperationCommit Operation = "commit"
	// OperationRollback rolls a transaction back
	OperationRollback Operation = "rollback"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	Operation Operation
	Query     string
	Args      []driver.NamedValue
	Elapsed   time.Duration
	Err       error
}

// QueryHook is called after every statement the connection runs.
// It must be safe for concurrent use.
type QueryHook func(ctx context.Context, event QueryEvent)

// Driver implements database/sql/driver.Driver interface on top of SQLite.
type Driver struct {
	hook QueryHook
}

// Connector implements database/sql/driver.Connector interface.
// It holds the DSN and the hook handed to every connection it creates.
type Connector struct {
	driver *Driver
	dsn    string
	hook   QueryHook
}

// Connection implements database/sql/driver.Conn interface.
// It wraps an underlying SQLite connection.
type Connection struct {
	conn driver.Conn
	hook QueryHook
}

// Transaction implements database/sql/driver.Tx interface.
type Transaction struct {
	tx   driver.Tx
	conn *Connection
	ctx  context.Context
}

// Statement implements database/sql/driver.Stmt interface.
type Statement struct {
	stmt  driver.Stmt
	conn  *Connection
	query string
}

// Compile-time interface checks
var (
	_ driver.Driver             = (*Driver)(nil)
	_ driver.DriverContext      = (*Driver)(nil)
	_ driver.Connector          = (*Connector)(nil)
	_ driver.Conn               = (*Connection)(nil)
	_ driver.ConnBeginTx        = (*Connection)(nil)
	_ driver.ConnPrepareContext = (*Connection)(nil)
	_ driver.ExecerContext      = (*Connection)(nil)
	_ driver.QueryerContext     = (*Connection)(nil)
	_ driver.Pinger             = (*Connection)(nil)
	_ driver.NamedValueChecker  = (*Connection)(nil)
	_ driver.StmtExecContext    = (*Statement)(nil)
	_ driver.StmtQueryContext   = (*Statement)(nil)
)

// NewDriver creates a new driver without a query hook
func NewDriver() *Driver {
	return &Driver{}
}

// Open implements driver.Driver interface
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext interface
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	if err := ValidateDatabaseName(dsn); err != nil {
		return nil, err
	}
	return &Connector{
		driver: d,
		dsn:    dsn,
		hook:   d.hook,
	}, nil
}

// NewConnector creates a connector for dsn that reports statements to hook.
// A nil hook disables reporting.
func NewConnector(dsn string, hook QueryHook) *Connector {
	return &Connector{
		driver: &Driver{hook: hook},
		dsn:    dsn,
		hook:   hook,
	}
}

// Connect implements driver.Connector interface
func (c *Connector) Connect(_ context.Context) (driver.Conn, error) {
	sqliteDriver := &sqlite.Driver{}
	conn, err := sqliteDriver.Open(c.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Connection{conn: conn, hook: c.hook}, nil
}

// Driver implements driver.Connector interface
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// DSN returns the data source name the connector opens
func (c *Connector) DSN() string {
	return c.dsn
}

// report sends a finished statement to the hook, if any
func (conn *Connection) report(ctx context.Context, op Operation, query string, args []driver.NamedValue, start time.Time, err error) {
	if conn.hook == nil {
		return
	}
	if errors.Is(err, driver.ErrSkip) {
		return
	}
	conn.hook(ctx, QueryEvent{
		Operation: op,
		Query:     query,
		Args:      args,
		Elapsed:   time.Since(start),
		Err:       err,
	})
}

// Close implements driver.Conn interface
func (conn *Connection) Close() error {
	if conn.conn != nil {
		return conn.conn.Close()
	}
	return nil
}

// Begin implements driver.Conn interface (deprecated, use BeginTx instead)
func (conn *Connection) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx interface
func (conn *Connection) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	connBeginTx, ok := conn.conn.(driver.ConnBeginTx)
	if !ok {
		return nil, ErrBeginTxNotSupported
	}
	start := time.Now()
	tx, err := connBeginTx.BeginTx(ctx, opts)
	conn.report(ctx, OperationBegin, "BEGIN", nil, start, err)
	if err != nil {
		return nil, err
	}
	return &Transaction{tx: tx, conn: conn, ctx: ctx}, nil
}

// Commit implements driver.Tx interface
func (t *Transaction) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	t.conn.report(t.ctx, OperationCommit, "COMMIT", nil, start, err)
	return err
}

// Rollback implements driver.Tx interface
func (t *Transaction) Rollback() error {
	start := time.Now()
	err := t.tx.Rollback()
	t.conn.report(t.ctx, OperationRollback, "ROLLBACK", nil, start, err)
	return err
}

// Prepare implements driver.Conn interface (deprecated, use PrepareContext instead)
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext interface
func (conn *Connection) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	connPrepareCtx, ok := conn.conn.(driver.ConnPrepareContext)
	if !ok {
		return nil, ErrPrepareContextNotSupported
	}
	stmt, err := connPrepareCtx.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Statement{stmt: stmt, conn: conn, query: query}, nil
}

// ExecContext implements driver.ExecerContext interface
func (conn *Connection) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := conn.conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	start := time.Now()
	result, err := execer.ExecContext(ctx, query, args)
	conn.report(ctx, OperationExec, query, args, start, err)
	return result, err
}

// QueryContext implements driver.QueryerContext interface
func (conn *Connection) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := conn.conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	start := time.Now()
	rows, err := queryer.QueryContext(ctx, query, args)
	conn.report(ctx, OperationQuery, query, args, start, err)
	return rows, err
}

// Ping implements driver.Pinger interface
func (conn *Connection) Ping(ctx context.Context) error {
	if pinger, ok := conn.conn.(driver.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// CheckNamedValue implements driver.NamedValueChecker interface
func (conn *Connection) CheckNamedValue(nv *driver.NamedValue) error {
	if checker, ok := conn.conn.(driver.NamedValueChecker); ok {
		return checker.CheckNamedValue(nv)
	}
	return driver.ErrSkip
}

// Close implements driver.Stmt interface
func (s *Statement) Close() error {
	return s.stmt.Close()
}

// NumInput implements driver.Stmt interface
func (s *Statement) NumInput() int {
	return s.stmt.NumInput()
}

// Exec implements driver.Stmt interface (deprecated, use ExecContext instead)
func (s *Statement) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), toNamedValues(args))
}

// Query implements driver.Stmt interface (deprecated, use QueryContext instead)
func (s *Statement) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), toNamedValues(args))
}

// ExecContext implements driver.StmtExecContext interface
func (s *Statement) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	stmtExecCtx, ok := s.stmt.(driver.StmtExecContext)
	if !ok {
		return nil, ErrStmtExecContextNotSupported
	}
	start := time.Now()
	result, err := stmtExecCtx.ExecContext(ctx, args)
	s.conn.report(ctx, OperationExec, s.query, args, start, err)
	return result, err
}

// QueryContext implements driver.StmtQueryContext interface
func (s *Statement) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	stmtQueryCtx, ok := s.stmt.(driver.StmtQueryContext)
	if !ok {
		return nil, ErrStmtQueryContextNotSupported
	}
	start := time.Now()
	rows, err := stmtQueryCtx.QueryContext(ctx, args)
	s.conn.report(ctx, OperationQuery, s.query, args, start, err)
	return rows, err
}

// toNamedValues converts driver.Value slice to driver.NamedValue slice
func toNamedValues(args []driver.Value) []driver.NamedValue {
	namedArgs := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		namedArgs[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		}
	}
	return namedArgs
}
