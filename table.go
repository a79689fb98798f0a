package sqlshape

// table is a result set with a fixed column order, ready for export.
type table struct {
	// name is the table name, or the base name chosen for a query result
	name TableName
	// columns are the column names in result order
	columns []string
	// rows are the result rows
	rows []Row
	// columnInfo contains inferred type information for each column
	columnInfo []columnInfo
}

// newTable creates a table and infers its column types.
func newTable(name string, columns []string, rows []Row) *table {
	if columns == nil {
		columns = unionColumns(rows)
	}
	return &table{
		name:       NewTableName(name),
		columns:    columns,
		rows:       rows,
		columnInfo: inferColumnsInfo(columns, rows),
	}
}

// getName returns the table name.
func (t *table) getName() TableName {
	return t.name
}

// getColumns returns the column names.
func (t *table) getColumns() []string {
	return t.columns
}

// getRows returns the rows.
func (t *table) getRows() []Row {
	return t.rows
}

// values returns row i as a slice in column order.
func (t *table) values(i int) []any {
	out := make([]any, len(t.columns))
	for j, col := range t.columns {
		out[j] = t.rows[i][col]
	}
	return out
}

// unionColumns returns the sorted union of every row's columns, for rows
// that did not come with a column order.
func unionColumns(rows []Row) []string {
	set := make(Row)
	for _, row := range rows {
		for col := range row {
			set[col] = nil
		}
	}
	return set.Columns()
}
