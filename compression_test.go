package sqlshape

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressor_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte("id,name\n1,alice\n")

	for _, ct := range []CompressionType{CompressionNone, CompressionGZ, CompressionXZ, CompressionZSTD} {
		t.Run(ct.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w, err := NewCompressor(&buf, ct)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := NewDecompressor(&buf, ct)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, payload, got)
		})
	}
}

func TestCompressor_Errors(t *testing.T) {
	t.Parallel()

	t.Run("bzip2 is read-only", func(t *testing.T) {
		t.Parallel()

		_, err := NewCompressor(io.Discard, CompressionBZ2)
		assert.ErrorIs(t, err, ErrUnsupportedCompression)

		r, err := NewDecompressor(bytes.NewReader(nil), CompressionBZ2)
		require.NoError(t, err)
		assert.NoError(t, r.Close())
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		_, err := NewDecompressor(bytes.NewReader(nil), CompressionType(99))
		assert.ErrorIs(t, err, ErrUnsupportedCompression)
		_, err = NewCompressor(io.Discard, CompressionType(99))
		assert.ErrorIs(t, err, ErrUnsupportedCompression)
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		t.Parallel()

		_, err := NewDecompressor(bytes.NewReader([]byte("not gzip")), CompressionGZ)
		assert.Error(t, err)
	})
}

func TestSplitCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		wantBase string
		want     CompressionType
	}{
		{"data.csv", "data.csv", CompressionNone},
		{"data.csv.gz", "data.csv", CompressionGZ},
		{"DATA.TSV.GZ", "DATA.TSV", CompressionGZ},
		{"Report.Csv.Zst", "Report.Csv", CompressionZSTD},
		{"data.ltsv.bz2", "data.ltsv", CompressionBZ2},
		{"data.parquet.XZ", "data.parquet", CompressionXZ},
		{"archive.gzip", "archive.gzip", CompressionNone},
	}
	for _, tt := range tests {
		base, ct := SplitCompression(tt.path)
		assert.Equal(t, tt.wantBase, base, tt.path)
		assert.Equal(t, tt.want, ct, tt.path)
	}
}

func TestDumpOptionsForFile(t *testing.T) {
	t.Parallel()

	opts, err := DumpOptionsForFile("out/report.tsv.zst")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatTSV, opts.Format)
	assert.Equal(t, CompressionZSTD, opts.Compression)

	opts, err = DumpOptionsForFile("REPORT.CSV.GZ")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatCSV, opts.Format)
	assert.Equal(t, CompressionGZ, opts.Compression)

	opts, err = DumpOptionsForFile("report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatXLSX, opts.Format)
	assert.Equal(t, CompressionNone, opts.Compression)

	_, err = DumpOptionsForFile("report.gz")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = DumpOptionsForFile("report.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCompressedFiles(t *testing.T) {
	t.Parallel()

	t.Run("round trip by suffix", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "script.SQL.XZ")
		_, ct := SplitCompression(path)
		w, err := CreateCompressed(path, ct)
		require.NoError(t, err)
		_, err = io.WriteString(w, "SELECT 1;")
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := OpenCompressed(path)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, "SELECT 1;", string(got))
	})

	t.Run("failed writer leaves no file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.csv.bz2")
		_, err := CreateCompressed(path, CompressionBZ2)
		require.Error(t, err)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := OpenCompressed(filepath.Join(t.TempDir(), "missing.sql"))
		assert.Error(t, err)
	})
}
