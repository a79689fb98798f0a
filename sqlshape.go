package sqlshape

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nao1215/sqlshape/domain/model"
	shapedriver "github.com/nao1215/sqlshape/driver"
)

// Type aliases for descriptor and row types from the model package
type (
	// Row is a single result row keyed by column name
	Row = model.Row
	// Record holds column values for insert and update statements
	Record = model.Record
	// Where describes the filter of a statement
	Where = model.Where
	// SelectQuery describes a SELECT statement against a single table
	SelectQuery = model.SelectQuery
	// Query is a rendered statement with its positional arguments
	Query = model.Query
	// DumpOptions represents options for dumping tables and query results
	DumpOptions = model.DumpOptions
	// OutputFormat represents the output file format
	OutputFormat = model.OutputFormat
	// CompressionType represents the compression type
	CompressionType = model.CompressionType
)

// Re-export constants for easier use
const (
	// OutputFormatCSV represents CSV output format
	OutputFormatCSV = model.OutputFormatCSV
	// OutputFormatTSV represents TSV output format
	OutputFormatTSV = model.OutputFormatTSV
	// OutputFormatLTSV represents LTSV output format
	OutputFormatLTSV = model.OutputFormatLTSV
	// OutputFormatParquet represents Parquet output format
	OutputFormatParquet = model.OutputFormatParquet
	// OutputFormatXLSX represents Excel XLSX output format
	OutputFormatXLSX = model.OutputFormatXLSX

	// CompressionNone represents no compression
	CompressionNone = model.CompressionNone
	// CompressionGZ represents gzip compression
	CompressionGZ = model.CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2 = model.CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ = model.CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD = model.CompressionZSTD

	// MemoryDatabase is the name of a private in-memory database
	MemoryDatabase = shapedriver.MemoryDatabase
)

// Re-exported constructors and helpers
var (
	// NewDumpOptions creates new DumpOptions with default values (CSV format, no compression)
	NewDumpOptions = model.NewDumpOptions
	// Eq returns a Where matching every column by equality
	Eq = model.Eq
	// Cond returns a Where with a raw clause and its parameters
	Cond = model.Cond
	// SafeName reduces a name to its first run of identifier characters
	SafeName = model.SafeName
	// ParseOutputFormat converts a name such as "tsv" into an OutputFormat
	ParseOutputFormat = model.ParseOutputFormat
	// ParseCompressionType converts a name such as "zstd" into a CompressionType
	ParseCompressionType = model.ParseCompressionType
)

// DB runs descriptor-built statements against a single shared SQLite
// connection and returns rows ready for GroupBy and BuildTree.
//
// All methods are safe for concurrent use; statements are serialized on the
// one underlying connection.
type DB struct {
	db         *sql.DB
	logger     *slog.Logger
	logQueries atomic.Bool
	closed     atomic.Bool
	// hooked is true when statements are reported by the driver connector
	hooked bool
}

// Open opens the SQLite database stored in name (a file path, a "file:" URI
// or MemoryDatabase) using a single shared connection.
//
// Example usage:
//
//	db, err := sqlshape.Open("app.db", sqlshape.WithQueryLogging(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.Select(ctx, sqlshape.SelectQuery{
//		Table: "categories",
//		Order: "name",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	tree, err := sqlshape.BuildTree(rows, sqlshape.TreeOptions{
//		ChildrenField: "children",
//		IDField:       "id",
//		ParentField:   "parent_id",
//	})
func Open(name string, opts ...Option) (*DB, error) {
	return OpenContext(context.Background(), name, opts...)
}

// OpenContext is Open with a context bounding the initial connection.
func OpenContext(ctx context.Context, name string, opts ...Option) (*DB, error) {
	cfg := newConfig(opts)

	dsn, err := shapedriver.BuildDSN(name, shapedriver.DSNOptions{
		ReadOnly: cfg.readOnly,
		Pragmas:  cfg.dsnPragmas(),
	})
	if err != nil {
		return nil, NewErrorContext("open", "").WithDetails(name).Error(err)
	}

	d := &DB{logger: cfg.logger, hooked: true}
	d.logQueries.Store(cfg.logQueries)

	sqlDB := sql.OpenDB(shapedriver.NewConnector(dsn, d.onQuery))
	// One connection: a private :memory: database lives and dies with it,
	// and SQLite serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, NewErrorContext("open", "").WithDetails(name).Error(err)
	}

	d.db = sqlDB
	return d, nil
}

// Wrap uses an already opened *sql.DB, e.g. one shared with other code.
// The caller keeps ownership of its pool settings; Close closes it.
func Wrap(sqlDB *sql.DB, opts ...Option) *DB {
	cfg := newConfig(opts)
	d := &DB{db: sqlDB, logger: cfg.logger}
	d.logQueries.Store(cfg.logQueries)
	return d
}

// SQL returns the underlying *sql.DB
func (d *DB) SQL() *sql.DB {
	return d.db
}

// SetQueryLogging turns statement logging on or off
func (d *DB) SetQueryLogging(enabled bool) {
	d.logQueries.Store(enabled)
}

// QueryLogging reports whether statement logging is on
func (d *DB) QueryLogging() bool {
	return d.logQueries.Load()
}

// Close closes the database. Closing twice is a no-op.
func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) checkOpen() error {
	if d.closed.Load() || d.db == nil {
		return ErrClosed
	}
	return nil
}

// onQuery receives statements from the driver connector
func (d *DB) onQuery(ctx context.Context, ev shapedriver.QueryEvent) {
	if !d.logQueries.Load() {
		return
	}
	args := make([]any, len(ev.Args))
	for i, a := range ev.Args {
		args[i] = a.Value
	}
	d.logStatement(ctx, string(ev.Operation), ev.Query, args, ev.Elapsed, ev.Err)
}

// observe logs a statement run through a wrapped *sql.DB, where no driver
// hook is installed.
func (d *DB) observe(ctx context.Context, op, query string, args []any, start time.Time, err error) {
	if d.hooked || !d.logQueries.Load() {
		return
	}
	d.logStatement(ctx, op, query, args, time.Since(start), err)
}

func (d *DB) logStatement(ctx context.Context, op, query string, args []any, elapsed time.Duration, err error) {
	attrs := []any{
		slog.String("op", op),
		slog.String("query", shapedriver.TruncateForLog(query)),
		slog.String("args", shapedriver.TruncateForLog(fmt.Sprint(args))),
		slog.Duration("elapsed", elapsed),
	}
	if err != nil {
		d.logger.ErrorContext(ctx, "statement failed", append(attrs, slog.Any("error", err))...)
		return
	}
	d.logger.InfoContext(ctx, "statement", attrs...)
}
