package sqlshape

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nao1215/sqlshape/domain/model"
)

// Select runs the SELECT statement described by q and returns every row.
//
// Example:
//
//	rows, err := db.Select(ctx, sqlshape.SelectQuery{
//		Table:  "users",
//		Fields: []string{"id", "name"},
//		Where:  sqlshape.Cond("name LIKE ?", "J%"),
//		Order:  "name",
//		Limit:  10,
//	})
func (d *DB) Select(ctx context.Context, q SelectQuery) ([]Row, error) {
	query, err := model.BuildSelect(q)
	if err != nil {
		return nil, NewErrorContext("select", q.Table).Error(err)
	}
	rows, err := d.query(ctx, query.SQL, query.Args)
	if err != nil {
		return nil, NewErrorContext("select", model.SafeName(q.Table)).WithQuery(query.SQL).Error(err)
	}
	return rows, nil
}

// SelectColumns is Select that also returns the result column names in
// statement order.
func (d *DB) SelectColumns(ctx context.Context, q SelectQuery) ([]string, []Row, error) {
	query, err := model.BuildSelect(q)
	if err != nil {
		return nil, nil, NewErrorContext("select", q.Table).Error(err)
	}
	columns, rows, err := d.queryColumns(ctx, query.SQL, query.Args)
	if err != nil {
		return nil, nil, NewErrorContext("select", model.SafeName(q.Table)).WithQuery(query.SQL).Error(err)
	}
	return columns, rows, nil
}

// SelectRaw runs a hand-written query and returns every row.
func (d *DB) SelectRaw(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := d.query(ctx, query, args)
	if err != nil {
		return nil, NewErrorContext("select", "").WithQuery(query).Error(err)
	}
	return rows, nil
}

// SelectGroups runs q and groups the rows by field.
func (d *DB) SelectGroups(ctx context.Context, q SelectQuery, field string) (*Groups, error) {
	rows, err := d.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	return GroupBy(rows, field), nil
}

// SelectTree runs q and builds a parent/child tree from the rows.
func (d *DB) SelectTree(ctx context.Context, q SelectQuery, opts TreeOptions) (*Tree, error) {
	rows, err := d.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	return BuildTree(rows, opts)
}

// Insert adds record to table and returns the new row id.
// An empty record inserts a row made of column defaults.
func (d *DB) Insert(ctx context.Context, table string, record Record) (int64, error) {
	query, err := model.BuildInsert(table, record)
	if err != nil {
		return 0, NewErrorContext("insert", table).Error(err)
	}
	result, err := d.exec(ctx, query.SQL, query.Args)
	if err != nil {
		return 0, NewErrorContext("insert", table).Error(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, NewErrorContext("insert", table).WithDetails("last insert id").Error(err)
	}
	return id, nil
}

// Update sets the columns in record on every row of table matching where and
// returns the number of changed rows. An empty record changes nothing and
// runs no statement.
func (d *DB) Update(ctx context.Context, table string, where Where, record Record) (int64, error) {
	query, err := model.BuildUpdate(table, where, record)
	if errors.Is(err, model.ErrEmptyRecord) {
		if err := d.checkOpen(); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, NewErrorContext("update", table).Error(err)
	}
	return d.changes(ctx, "update", table, query)
}

// Delete removes the rows of table matching where and returns how many were
// removed. An empty where removes every row.
func (d *DB) Delete(ctx context.Context, table string, where Where) (int64, error) {
	query, err := model.BuildDelete(table, where)
	if err != nil {
		return 0, NewErrorContext("delete", table).Error(err)
	}
	return d.changes(ctx, "delete", table, query)
}

// Run executes a single statement and returns the number of changed rows.
func (d *DB) Run(ctx context.Context, query string, args ...any) (int64, error) {
	return d.changes(ctx, "run", "", Query{SQL: query, Args: args})
}

// Exec executes a script of one or more statements without parameters.
func (d *DB) Exec(ctx context.Context, script string) error {
	if _, err := d.exec(ctx, script, nil); err != nil {
		return NewErrorContext("exec", "").WithQuery(script).Error(err)
	}
	return nil
}

func (d *DB) changes(ctx context.Context, op, table string, query Query) (int64, error) {
	result, err := d.exec(ctx, query.SQL, query.Args)
	if err != nil {
		return 0, NewErrorContext(op, table).WithQuery(query.SQL).Error(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, NewErrorContext(op, table).WithDetails("rows affected").Error(err)
	}
	return n, nil
}

func (d *DB) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()
	result, err := d.db.ExecContext(ctx, query, args...)
	d.observe(ctx, "exec", query, args, start, err)
	return result, err
}

func (d *DB) query(ctx context.Context, query string, args []any) ([]Row, error) {
	_, rows, err := d.queryColumns(ctx, query, args)
	return rows, err
}

// queryColumns is query that also returns the result column order.
func (d *DB) queryColumns(ctx context.Context, query string, args []any) ([]string, []Row, error) {
	if err := d.checkOpen(); err != nil {
		return nil, nil, err
	}
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.observe(ctx, "query", query, args, start, err)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows reads every remaining row into column-keyed maps.
func scanRows(rows *sql.Rows) ([]string, []Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	result := make([]Row, 0)
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
			values[i] = nil
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, result, nil
}
