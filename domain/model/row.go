package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Row is a single result row keyed by column name.
type Row map[string]any

// Record holds column values for insert and update statements.
type Record map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Columns returns the row's column names in sorted order.
func (r Row) Columns() []string {
	return sortedKeys(r)
}

// Columns returns the record's column names in sorted order.
func (r Record) Columns() []string {
	return sortedKeys(r)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeyOf normalizes a column value into a comparable key.
// The boolean is false when the value counts as absent: nil, the empty
// string, a numeric zero, NaN or false. Zero is absent so that the common
// "parent_id = 0 means no parent" convention yields roots.
// SQLite may hand back the same logical id as int64, float64, string or []byte
// depending on column affinity, so all of them collapse to their decimal or
// textual form.
func KeyOf(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case []byte:
		return string(val), len(val) > 0
	case int:
		return intKey(int64(val))
	case int8:
		return intKey(int64(val))
	case int16:
		return intKey(int64(val))
	case int32:
		return intKey(int64(val))
	case int64:
		return intKey(val)
	case uint:
		return uintKey(uint64(val))
	case uint8:
		return uintKey(uint64(val))
	case uint16:
		return uintKey(uint64(val))
	case uint32:
		return uintKey(uint64(val))
	case uint64:
		return uintKey(val)
	case float32:
		return floatKey(float64(val))
	case float64:
		return floatKey(val)
	case bool:
		if val {
			return "true", true
		}
		return "", false
	case fmt.Stringer:
		s := val.String()
		return s, s != ""
	default:
		s := fmt.Sprintf("%v", val)
		return s, s != ""
	}
}

func intKey(n int64) (string, bool) {
	if n == 0 {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

func uintKey(n uint64) (string, bool) {
	if n == 0 {
		return "", false
	}
	return strconv.FormatUint(n, 10), true
}

func floatKey(f float64) (string, bool) {
	if f == 0 || math.IsNaN(f) {
		return "", false
	}
	return formatFloat(f), true
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
