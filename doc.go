// Package sqlshape is a thin convenience layer over SQLite that builds SQL
// statements from plain descriptors and shapes flat result rows into groups
// or parent/child trees.
//
// The database is reached through the modernc.org/sqlite pure Go driver,
// wrapped by the sqlshape driver so that every statement can be logged.
// All statements share one connection, which also keeps a ":memory:"
// database alive for as long as the DB is open.
//
// # Features
//
//   - SELECT, INSERT, UPDATE and DELETE built from descriptors with bound parameters
//   - Raw statements and multi-statement scripts
//   - Grouping rows by a column value
//   - Building parent/child trees from id and parent id columns, in any input order
//   - Optional statement logging through log/slog
//   - Exporting tables and query results as CSV, TSV, LTSV, Parquet or Excel (XLSX),
//     optionally compressed with gzip, xz or zstandard
//
// # Basic Usage
//
//	db, err := sqlshape.Open("app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	id, err := db.Insert(ctx, "categories", sqlshape.Record{"name": "Books", "parent_id": nil})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rows, err := db.Select(ctx, sqlshape.SelectQuery{
//	    Table: "categories",
//	    Where: sqlshape.Eq(map[string]any{"visible": 1}),
//	})
//
// # Shaping Rows
//
// GroupBy partitions rows by one column:
//
//	groups := sqlshape.GroupBy(rows, "department")
//	for _, key := range groups.Keys() {
//	    fmt.Println(key, len(groups.Get(key)))
//	}
//
// BuildTree links rows by id and parent id. Rows without a parent become
// roots, and Tree.Rows renders nested copies with children under the
// configured column:
//
//	tree, err := sqlshape.BuildTree(rows, sqlshape.TreeOptions{
//	    ChildrenField: "children",
//	    IDField:       "id",
//	    ParentField:   "parent_id",
//	})
//
// # Identifiers
//
// Table names are reduced to their first run of letters, digits and
// underscores, so "users; DROP TABLE x" selects from "users". Column names in
// equality filters, inserts and updates must consist of those characters
// only. Field lists, raw clauses and ORDER BY expressions are used verbatim
// and must never carry user input; values always travel as bound parameters.
//
// For complete SQL syntax documentation, see: https://www.sqlite.org/lang.html
package sqlshape
