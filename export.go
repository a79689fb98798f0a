package sqlshape

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/sqlshape/domain/model"
)

// listTablesQuery selects every user table in name order
const listTablesQuery = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"

// DumpDatabase writes every user table to its own file in outputDir and
// returns the written paths in table name order.
//
// Example:
//
//	// Export as TSV files with gzip compression
//	options := sqlshape.NewDumpOptions().
//		WithFormat(sqlshape.OutputFormatTSV).
//		WithCompression(sqlshape.CompressionGZ)
//	paths, err := db.DumpDatabase(ctx, "./output", options)
func (d *DB) DumpDatabase(ctx context.Context, outputDir string, opts DumpOptions) ([]string, error) {
	names, err := d.TableNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrNoTables
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path, err := d.DumpTable(ctx, name, outputDir, opts)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// TableNames returns the user tables of the database in name order.
func (d *DB) TableNames(ctx context.Context) ([]string, error) {
	rows, err := d.query(ctx, listTablesQuery, nil)
	if err != nil {
		return nil, NewErrorContext("list tables", "").Error(err)
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := model.KeyOf(row["name"]); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// DumpTable writes every row of tableName to outputDir, creating the
// directory if needed, and returns the path of the written file. The file is
// named after the table with the extension given by opts, e.g. "users.csv.gz".
func (d *DB) DumpTable(ctx context.Context, tableName, outputDir string, opts DumpOptions) (string, error) {
	v := newValidator()
	if err := v.validateDumpOptions(opts); err != nil {
		return "", NewErrorContext("dump", tableName).Error(err)
	}
	if err := v.validateOutputDirectory(outputDir); err != nil {
		return "", NewErrorContext("dump", tableName).Error(err)
	}

	query, err := model.BuildSelect(SelectQuery{Table: tableName})
	if err != nil {
		return "", NewErrorContext("dump", tableName).Error(err)
	}
	name := model.SafeName(tableName)
	columns, rows, err := d.queryColumns(ctx, query.SQL, query.Args)
	if err != nil {
		return "", NewErrorContext("dump", name).WithQuery(query.SQL).Error(err)
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", NewErrorContext("dump", name).WithDetails("create output directory").Error(err)
	}

	tbl := newTable(name, columns, rows)
	path := filepath.Join(outputDir, tbl.getName().Sanitize().String()+opts.FileExtension())
	if err := writeTableFile(path, tbl, opts); err != nil {
		return "", NewErrorContext("dump", name).WithDetails(path).Error(err)
	}
	return path, nil
}

// DumpQuery runs q and writes the result to w using opts.
func (d *DB) DumpQuery(ctx context.Context, w io.Writer, q SelectQuery, opts DumpOptions) error {
	if err := newValidator().validateDumpOptions(opts); err != nil {
		return NewErrorContext("dump", q.Table).Error(err)
	}
	query, err := model.BuildSelect(q)
	if err != nil {
		return NewErrorContext("dump", q.Table).Error(err)
	}
	name := model.SafeName(q.Table)
	columns, rows, err := d.queryColumns(ctx, query.SQL, query.Args)
	if err != nil {
		return NewErrorContext("dump", name).WithQuery(query.SQL).Error(err)
	}
	return WriteRows(w, name, columns, rows, opts)
}

// WriteRows writes rows to w in the format and compression selected by opts.
// columns fixes the column order; nil uses the sorted union of the row keys.
// name titles the worksheet of XLSX output.
func WriteRows(w io.Writer, name string, columns []string, rows []Row, opts DumpOptions) error {
	if err := newValidator().validateDumpOptions(opts); err != nil {
		return err
	}

	cw, err := NewCompressor(w, opts.Compression)
	if err != nil {
		return err
	}
	if err := writeTable(cw, newTable(name, columns, rows), opts.Format); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

// writeTableFile writes tbl to path, removing the file again on failure.
func writeTableFile(path string, tbl *table, opts DumpOptions) (err error) {
	w, err := CreateCompressed(path, opts.Compression)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return writeTable(w, tbl, opts.Format)
}

func writeTable(w io.Writer, tbl *table, format OutputFormat) error {
	switch format {
	case OutputFormatCSV:
		return writeDelimited(w, tbl, csvDelimiter)
	case OutputFormatTSV:
		return writeDelimited(w, tbl, tsvDelimiter)
	case OutputFormatLTSV:
		return writeLTSV(w, tbl)
	case OutputFormatParquet:
		return writeParquet(w, tbl)
	case OutputFormatXLSX:
		return writeXLSX(w, tbl)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}
}

// writeDelimited writes a header line followed by one line per row
func writeDelimited(w io.Writer, tbl *table, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(tbl.getColumns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(tbl.getColumns()))
	for i := range tbl.getRows() {
		for j, v := range tbl.values(i) {
			record[j] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ltsvEscaper keeps values on one line and inside their field
var ltsvEscaper = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// writeLTSV writes one "label:value" line per row, fields separated by tabs
func writeLTSV(w io.Writer, tbl *table) error {
	bw := bufio.NewWriter(w)
	columns := tbl.getColumns()
	for i := range tbl.getRows() {
		for j, v := range tbl.values(i) {
			if j > 0 {
				if err := bw.WriteByte('\t'); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(columns[j] + ":" + ltsvEscaper.Replace(formatValue(v))); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeOnly hides Close from pqarrow so that the compressor is closed by its owner
type writeOnly struct {
	io.Writer
}

// writeParquet writes the table as a single Parquet row group
func writeParquet(w io.Writer, tbl *table) error {
	if len(tbl.columnInfo) == 0 {
		return fmt.Errorf("%w: parquet needs at least one column", ErrUnsupportedFormat)
	}

	fields := make([]arrow.Field, len(tbl.columnInfo))
	for i, ci := range tbl.columnInfo {
		fields[i] = arrow.Field{Name: ci.Name, Type: ci.Type.arrowType(), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for i := range tbl.getRows() {
		for j, v := range tbl.values(i) {
			if err := appendArrowValue(builder.Field(j), tbl.columnInfo[j].Type, v); err != nil {
				return fmt.Errorf("column %s: %w", tbl.columnInfo[j].Name, err)
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	fw, err := pqarrow.NewFileWriter(schema, writeOnly{w}, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(record); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write parquet record: %w", err)
	}
	return fw.Close()
}

func appendArrowValue(b array.Builder, ct columnType, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch ct {
	case columnTypeInteger:
		n, ok := toInt64(v)
		if !ok {
			return fmt.Errorf("unexpected integer value %T", v)
		}
		b.(*array.Int64Builder).Append(n)
	case columnTypeReal:
		f, ok := toFloat64(v)
		if !ok {
			return fmt.Errorf("unexpected real value %T", v)
		}
		b.(*array.Float64Builder).Append(f)
	case columnTypeBoolean:
		flag, ok := v.(bool)
		if !ok {
			return fmt.Errorf("unexpected boolean value %T", v)
		}
		b.(*array.BooleanBuilder).Append(flag)
	case columnTypeBlob:
		data, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("unexpected blob value %T", v)
		}
		b.(*array.BinaryBuilder).Append(data)
	case columnTypeDatetime:
		t, ok := toTime(v)
		if !ok {
			return fmt.Errorf("unexpected datetime value %v", v)
		}
		b.(*array.TimestampBuilder).Append(arrow.Timestamp(t.UTC().UnixMicro()))
	default:
		b.(*array.StringBuilder).Append(formatValue(v))
	}
	return nil
}

// writeXLSX writes the table to a single worksheet named after it
func writeXLSX(w io.Writer, tbl *table) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	sheet := tbl.getName().SheetName()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name worksheet: %w", err)
		}
	}

	header := make([]any, len(tbl.getColumns()))
	for i, col := range tbl.getColumns() {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range tbl.getRows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := tbl.values(i)
		for j, v := range values {
			if data, ok := v.([]byte); ok {
				values[j] = string(data)
			}
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// formatValue renders a column value as text. NULL becomes the empty string.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true //nolint:gosec // values beyond int64 are not produced by SQLite
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true //nolint:gosec // values beyond int64 are not produced by SQLite
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		i, ok := toInt64(v)
		return float64(i), ok
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return parseDatetime(t)
	default:
		return time.Time{}, false
	}
}
