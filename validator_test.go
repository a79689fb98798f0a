package sqlshape

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_validateDumpOptions(t *testing.T) {
	t.Parallel()

	v := newValidator()

	assert.NoError(t, v.validateDumpOptions(NewDumpOptions()))
	assert.NoError(t, v.validateDumpOptions(NewDumpOptions().WithFormat(OutputFormatParquet).WithCompression(CompressionZSTD)))
	assert.ErrorIs(t, v.validateDumpOptions(NewDumpOptions().WithCompression(CompressionBZ2)), ErrUnsupportedCompression)
	assert.ErrorIs(t, v.validateDumpOptions(NewDumpOptions().WithCompression(CompressionType(-1))), ErrUnsupportedCompression)
	assert.ErrorIs(t, v.validateDumpOptions(NewDumpOptions().WithFormat(OutputFormat(7))), ErrUnsupportedFormat)
}

func TestValidator_validateOutputDirectory(t *testing.T) {
	t.Parallel()

	v := newValidator()
	dir := t.TempDir()

	assert.NoError(t, v.validateOutputDirectory(dir))
	assert.NoError(t, v.validateOutputDirectory(filepath.Join(dir, "not", "yet")))
	assert.Error(t, v.validateOutputDirectory(""))

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	assert.Error(t, v.validateOutputDirectory(file))
}

func TestValidator_validateSelectQuery(t *testing.T) {
	t.Parallel()

	v := newValidator()

	assert.NoError(t, v.validateSelectQuery(SelectQuery{Table: "users", Where: Eq(map[string]any{"id": 1})}))
	assert.ErrorIs(t, v.validateSelectQuery(SelectQuery{}), ErrNoTable)
	assert.ErrorIs(t, v.validateSelectQuery(SelectQuery{Table: "users", Where: Eq(map[string]any{"id;": 1})}), ErrInvalidIdentifier)
}
