package sqlshape

import (
	"errors"
	"fmt"
)

// QueryBuilder assembles a SelectQuery step by step.
// Use NewQuery to create a new instance, then chain method calls to configure it.
//
// The typical usage pattern is:
//
//	q, err := sqlshape.NewQuery("users").
//		Fields("id", "name").
//		WhereEq("active", 1).
//		OrderBy("name").
//		Limit(20).
//		Build()
//	if err != nil {
//		return err
//	}
//	rows, err := db.Select(ctx, q)
type QueryBuilder struct {
	// query is the descriptor under construction
	query SelectQuery
	// errs collects misuse detected while chaining, reported by Build
	errs []error
}

// NewQuery creates a new builder selecting from table.
func NewQuery(table string) *QueryBuilder {
	return &QueryBuilder{
		query: SelectQuery{Table: table},
		errs:  make([]error, 0),
	}
}

// Fields sets the result expressions. Without it every column is selected.
// Expressions are used verbatim, so never pass user input here.
//
// Returns the builder for method chaining.
func (b *QueryBuilder) Fields(fields ...string) *QueryBuilder {
	b.query.Fields = append(b.query.Fields, fields...)
	return b
}

// WhereEq adds an equality condition. Several calls are joined with AND.
//
// Returns the builder for method chaining.
func (b *QueryBuilder) WhereEq(column string, value any) *QueryBuilder {
	if b.query.Where.Fields == nil {
		b.query.Where.Fields = make(map[string]any)
	}
	if _, dup := b.query.Where.Fields[column]; dup {
		b.errs = append(b.errs, fmt.Errorf("column %q is already constrained", column))
	}
	b.query.Where.Fields[column] = value
	return b
}

// Where sets a raw condition with ? placeholders bound to params.
// It replaces any earlier Where call.
//
// Returns the builder for method chaining.
func (b *QueryBuilder) Where(clause string, params ...any) *QueryBuilder {
	b.query.Where.Clause = clause
	b.query.Where.Params = params
	return b
}

// OrderBy sets the ORDER BY expression, e.g. "created_at DESC".
//
// Returns the builder for method chaining.
func (b *QueryBuilder) OrderBy(order string) *QueryBuilder {
	b.query.Order = order
	return b
}

// Limit caps the number of rows.
//
// Returns the builder for method chaining.
func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	b.query.Limit = n
	return b
}

// Offset skips the first n rows.
//
// Returns the builder for method chaining.
func (b *QueryBuilder) Offset(n int) *QueryBuilder {
	b.query.Offset = n
	return b
}

// Page selects page number page (starting at 1) of size rows each.
//
// Returns the builder for method chaining.
func (b *QueryBuilder) Page(page, size int) *QueryBuilder {
	if page < 1 || size < 1 {
		b.errs = append(b.errs, fmt.Errorf("invalid page %d of size %d", page, size))
		return b
	}
	b.query.Limit = size
	b.query.Offset = (page - 1) * size
	return b
}

// Build validates the configured descriptor and returns it.
func (b *QueryBuilder) Build() (SelectQuery, error) {
	errs := append([]error{}, b.errs...)
	if err := newValidator().validateSelectQuery(b.query); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return SelectQuery{}, err
	}
	return b.query, nil
}
