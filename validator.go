package sqlshape

import (
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/sqlshape/domain/model"
)

// validator handles validation logic for QueryBuilder and the dump functions
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validateSelectQuery checks a descriptor before it is rendered
func (v *validator) validateSelectQuery(q SelectQuery) error {
	var errs []error
	if model.SafeName(q.Table) == "" {
		errs = append(errs, ErrNoTable)
	}
	if q.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit must not be negative: %d", q.Limit))
	}
	if q.Offset < 0 {
		errs = append(errs, fmt.Errorf("offset must not be negative: %d", q.Offset))
	}
	if q.Where.Clause != "" && len(q.Where.Fields) > 0 {
		errs = append(errs, errors.New("where clause and equality fields cannot be combined"))
	}
	for col := range q.Where.Fields {
		if err := model.ValidateIdentifier(col); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// validateDumpOptions checks that the format and compression can be written
func (v *validator) validateDumpOptions(opts DumpOptions) error {
	switch opts.Format {
	case OutputFormatCSV, OutputFormatTSV, OutputFormatLTSV, OutputFormatParquet, OutputFormatXLSX:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, opts.Format)
	}
	switch opts.Compression {
	case CompressionNone, CompressionGZ, CompressionXZ, CompressionZSTD:
	case CompressionBZ2:
		return fmt.Errorf("%w: bzip2 cannot be written", ErrUnsupportedCompression)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedCompression, opts.Compression)
	}
	return nil
}

// validateOutputDirectory validates that the output directory can be created/accessed
func (v *validator) validateOutputDirectory(outputDir string) error {
	if outputDir == "" {
		return errors.New("output directory must be specified")
	}

	if info, err := os.Stat(outputDir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("output path exists but is not a directory: %s", outputDir)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check output directory: %w", err)
	}

	// created later
	return nil
}
