package sqlshape

import (
	"regexp"
	"strings"
	"time"
)

// Datetime layouts SQLite date functions produce, plus RFC 3339
var datetimePatterns = []struct {
	pattern *regexp.Regexp
	formats []string
}{
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999"},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999"},
	},
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
}

// parseDatetime parses value when it matches one of the datetime layouts.
// Values without a zone are read as UTC.
func parseDatetime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, dp := range datetimePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// classifyValue returns the column type a single non-nil value fits
func classifyValue(v any) columnType {
	switch val := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return columnTypeInteger
	case float32, float64:
		return columnTypeReal
	case bool:
		return columnTypeBoolean
	case []byte:
		return columnTypeBlob
	case time.Time:
		return columnTypeDatetime
	case string:
		if _, ok := parseDatetime(val); ok {
			return columnTypeDatetime
		}
		return columnTypeText
	default:
		return columnTypeText
	}
}

// inferColumnType picks one type for a column of values. NULLs are ignored.
// Integers widen to REAL when mixed with floats; any other mix falls back to TEXT.
func inferColumnType(values []any) columnType {
	seen := make(map[columnType]bool)
	for _, v := range values {
		if v == nil {
			continue
		}
		seen[classifyValue(v)] = true
	}

	switch len(seen) {
	case 0:
		return columnTypeText
	case 1:
		for ct := range seen {
			return ct
		}
	case 2:
		if seen[columnTypeInteger] && seen[columnTypeReal] {
			return columnTypeReal
		}
	}
	return columnTypeText
}

// inferColumnsInfo infers column information from column names and rows
func inferColumnsInfo(columns []string, rows []Row) []columnInfo {
	if len(columns) == 0 {
		return nil
	}

	infos := make([]columnInfo, len(columns))
	values := make([]any, len(rows))
	for i, name := range columns {
		for j, row := range rows {
			values[j] = row[name]
		}
		infos[i] = columnInfo{
			Name: name,
			Type: inferColumnType(values),
		}
	}
	return infos
}
