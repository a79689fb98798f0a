package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Where describes the filter of a statement.
//
// It comes in two forms. Fields is an equality map, rendered as
// "col1 = ? AND col2 = ?" with columns in sorted order. Clause is a raw
// condition such as "name LIKE ? OR surname LIKE ?" with its Params.
// A non-empty Clause takes precedence over Fields.
type Where struct {
	// Fields maps column names to the values they must equal
	Fields map[string]any
	// Clause is a raw SQL condition using ? placeholders
	Clause string
	// Params are the values bound to the placeholders in Clause
	Params []any
}

// Eq returns a Where matching every column in fields by equality.
func Eq(fields map[string]any) Where {
	return Where{Fields: fields}
}

// Cond returns a Where with a raw clause and its parameters.
func Cond(clause string, params ...any) Where {
	return Where{Clause: clause, Params: params}
}

// IsEmpty reports whether the where has neither a clause nor fields.
func (w Where) IsEmpty() bool {
	return strings.TrimSpace(w.Clause) == "" && len(w.Fields) == 0
}

// SelectQuery describes a SELECT statement against a single table.
type SelectQuery struct {
	// Table is the table name, reduced to its identifier characters
	Table string
	// Fields are the result expressions; empty means "*"
	Fields []string
	// Where filters the rows
	Where Where
	// Order is the ORDER BY expression, e.g. "name DESC"
	Order string
	// Limit caps the number of rows; zero or negative means no limit
	Limit int
	// Offset skips rows; zero or negative means no offset
	Offset int
}

// Query is a rendered statement with its positional arguments.
type Query struct {
	SQL  string
	Args []any
}

// String returns the SQL text.
func (q Query) String() string {
	return q.SQL
}

// BuildWhere renders w into a " WHERE ..." suffix and its arguments.
// The suffix is empty when w is empty.
func BuildWhere(w Where) (string, []any, error) {
	if clause := strings.TrimSpace(w.Clause); clause != "" {
		args := make([]any, len(w.Params))
		copy(args, w.Params)
		return " WHERE " + clause, args, nil
	}
	if len(w.Fields) == 0 {
		return "", []any{}, nil
	}

	columns := sortedKeys(w.Fields)
	conditions := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		if err := ValidateIdentifier(col); err != nil {
			return "", nil, err
		}
		conditions = append(conditions, col+" = ?")
		args = append(args, w.Fields[col])
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

// BuildSelect renders a SELECT statement.
func BuildSelect(q SelectQuery) (Query, error) {
	table, err := tableName(q.Table)
	if err != nil {
		return Query{}, err
	}

	fields := "*"
	if len(q.Fields) > 0 {
		fields = strings.Join(q.Fields, ", ")
	}

	where, args, err := BuildWhere(q.Where)
	if err != nil {
		return Query{}, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(fields)
	sb.WriteString(" FROM ")
	sb.WriteString(table)
	sb.WriteString(where)
	if order := strings.TrimSpace(q.Order); order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order)
	}
	switch {
	case q.Limit > 0:
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(q.Limit))
	case q.Offset > 0:
		// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
		sb.WriteString(" LIMIT -1")
	}
	if q.Offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(q.Offset))
	}

	return Query{SQL: sb.String(), Args: args}, nil
}

// BuildInsert renders an INSERT statement. An empty record inserts a row of
// column defaults.
func BuildInsert(table string, record Record) (Query, error) {
	name, err := tableName(table)
	if err != nil {
		return Query{}, err
	}
	if len(record) == 0 {
		return Query{SQL: fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", name), Args: []any{}}, nil
	}

	columns := record.Columns()
	placeholders := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		if err := ValidateIdentifier(col); err != nil {
			return Query{}, err
		}
		placeholders = append(placeholders, "?")
		args = append(args, record[col])
	}

	return Query{
		SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			name, strings.Join(columns, ", "), strings.Join(placeholders, ", ")),
		Args: args,
	}, nil
}

// BuildUpdate renders an UPDATE statement. The SET arguments come before the
// WHERE arguments.
func BuildUpdate(table string, where Where, record Record) (Query, error) {
	name, err := tableName(table)
	if err != nil {
		return Query{}, err
	}
	if len(record) == 0 {
		return Query{}, ErrEmptyRecord
	}

	columns := record.Columns()
	assignments := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		if err := ValidateIdentifier(col); err != nil {
			return Query{}, err
		}
		assignments = append(assignments, col+" = ?")
		args = append(args, record[col])
	}

	whereSQL, whereArgs, err := BuildWhere(where)
	if err != nil {
		return Query{}, err
	}

	return Query{
		SQL:  fmt.Sprintf("UPDATE %s SET %s%s", name, strings.Join(assignments, ", "), whereSQL),
		Args: append(args, whereArgs...),
	}, nil
}

// BuildDelete renders a DELETE statement. An empty where deletes every row.
func BuildDelete(table string, where Where) (Query, error) {
	name, err := tableName(table)
	if err != nil {
		return Query{}, err
	}
	whereSQL, args, err := BuildWhere(where)
	if err != nil {
		return Query{}, err
	}
	return Query{SQL: "DELETE FROM " + name + whereSQL, Args: args}, nil
}
