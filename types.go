package sqlshape

import (
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
)

// Character validation constants
const (
	// firstDigitChar represents the first numeric character
	firstDigitChar = '0'
	// lastDigitChar represents the last numeric character
	lastDigitChar = '9'
	// firstLowerChar represents the first lowercase letter
	firstLowerChar = 'a'
	// lastLowerChar represents the last lowercase letter
	lastLowerChar = 'z'
	// firstUpperChar represents the first uppercase letter
	firstUpperChar = 'A'
	// lastUpperChar represents the last uppercase letter
	lastUpperChar = 'Z'
	// underscoreChar represents the underscore character
	underscoreChar = '_'
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// maxSheetNameLength is the longest worksheet name Excel accepts
const maxSheetNameLength = 31

// TableName is the name of an exported table, used to derive file and
// worksheet names.
type TableName struct {
	value string
}

// NewTableName creates a new TableName. A blank name becomes "table".
func NewTableName(name string) TableName {
	if strings.TrimSpace(name) == "" {
		return TableName{value: "table"}
	}
	return TableName{value: strings.TrimSpace(name)}
}

// String returns the string representation of TableName
func (tn TableName) String() string {
	return tn.value
}

// Equal compares two table names
func (tn TableName) Equal(other TableName) bool {
	return tn.value == other.value
}

// Sanitize returns a version of the name safe to use as a file name
func (tn TableName) Sanitize() TableName {
	return TableName{value: tn.sanitizeString()}
}

// SheetName returns the sanitized name cut to the worksheet name limit
func (tn TableName) SheetName() string {
	name := tn.sanitizeString()
	if len(name) > maxSheetNameLength {
		name = name[:maxSheetNameLength]
	}
	return name
}

// sanitizeString removes invalid characters from table names
func (tn TableName) sanitizeString() string {
	result := strings.ReplaceAll(tn.value, " ", "_")
	result = strings.ReplaceAll(result, "-", "_")
	result = strings.ReplaceAll(result, ".", "_")

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= firstLowerChar && r <= lastLowerChar) ||
			(r >= firstUpperChar && r <= lastUpperChar) ||
			(r >= firstDigitChar && r <= lastDigitChar) ||
			r == underscoreChar {
			sanitized.WriteRune(r)
		}
	}

	finalResult := sanitized.String()

	if len(finalResult) > 0 && finalResult[0] >= firstDigitChar && finalResult[0] <= lastDigitChar {
		finalResult = "table_" + finalResult
	}

	if finalResult == "" {
		finalResult = "table"
	}

	return finalResult
}

// columnType is the storage class chosen for an exported column
type columnType int

const (
	// columnTypeText is a string column
	columnTypeText columnType = iota
	// columnTypeInteger is a 64-bit integer column
	columnTypeInteger
	// columnTypeReal is a 64-bit float column
	columnTypeReal
	// columnTypeBoolean is a boolean column
	columnTypeBoolean
	// columnTypeBlob is a binary column
	columnTypeBlob
	// columnTypeDatetime is a timestamp column
	columnTypeDatetime
)

// String returns the SQLite-style name of the column type
func (ct columnType) String() string {
	switch ct {
	case columnTypeInteger:
		return "INTEGER"
	case columnTypeReal:
		return "REAL"
	case columnTypeBoolean:
		return "BOOLEAN"
	case columnTypeBlob:
		return "BLOB"
	case columnTypeDatetime:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

// arrowType returns the Arrow data type used when writing Parquet
func (ct columnType) arrowType() arrow.DataType {
	switch ct {
	case columnTypeInteger:
		return arrow.PrimitiveTypes.Int64
	case columnTypeReal:
		return arrow.PrimitiveTypes.Float64
	case columnTypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case columnTypeBlob:
		return arrow.BinaryTypes.Binary
	case columnTypeDatetime:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}

// columnInfo holds a column name and its inferred type
type columnInfo struct {
	Name string
	Type columnType
}
