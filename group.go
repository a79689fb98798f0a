package sqlshape

import "github.com/nao1215/sqlshape/domain/model"

// Groups holds rows partitioned by the value of one column.
// Keys keep the order in which they first appear in the input and rows keep
// their input order within a group.
type Groups struct {
	field  string
	keys   []string
	groups map[string][]Row
}

// GroupBy partitions rows by the string form of their field value.
//
// A missing or NULL value, an empty string, a numeric zero and false all
// group under "", and true groups under "true". Numbers are rendered in
// decimal, so int64(3), float64(3) and "3" share a group. No row is dropped
// and the input rows are neither copied nor modified.
func GroupBy(rows []Row, field string) *Groups {
	g := &Groups{
		field:  field,
		keys:   make([]string, 0),
		groups: make(map[string][]Row),
	}
	for _, row := range rows {
		key, _ := model.KeyOf(row[field])
		if _, ok := g.groups[key]; !ok {
			g.keys = append(g.keys, key)
		}
		g.groups[key] = append(g.groups[key], row)
	}
	return g
}

// Field returns the column the rows were grouped by
func (g *Groups) Field() string {
	return g.field
}

// Keys returns the group keys in first-appearance order
func (g *Groups) Keys() []string {
	keys := make([]string, len(g.keys))
	copy(keys, g.keys)
	return keys
}

// Get returns the rows of one group, or nil when the key is unknown
func (g *Groups) Get(key string) []Row {
	return g.groups[key]
}

// Len returns the number of groups
func (g *Groups) Len() int {
	return len(g.keys)
}

// Map returns the groups as a plain map
func (g *Groups) Map() map[string][]Row {
	m := make(map[string][]Row, len(g.groups))
	for k, rows := range g.groups {
		m[k] = rows
	}
	return m
}

// Each calls fn for every group in key order until fn returns false
func (g *Groups) Each(fn func(key string, rows []Row) bool) {
	for _, k := range g.keys {
		if !fn(k, g.groups[k]) {
			return
		}
	}
}
