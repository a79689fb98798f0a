package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpOptions_FileExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		options DumpOptions
		want    string
	}{
		{name: "default", options: NewDumpOptions(), want: ".csv"},
		{name: "tsv gz", options: NewDumpOptions().WithFormat(OutputFormatTSV).WithCompression(CompressionGZ), want: ".tsv.gz"},
		{name: "ltsv zstd", options: NewDumpOptions().WithFormat(OutputFormatLTSV).WithCompression(CompressionZSTD), want: ".ltsv.zst"},
		{name: "parquet", options: NewDumpOptions().WithFormat(OutputFormatParquet), want: ".parquet"},
		{name: "xlsx xz", options: NewDumpOptions().WithFormat(OutputFormatXLSX).WithCompression(CompressionXZ), want: ".xlsx.xz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.options.FileExtension())
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]OutputFormat{
		"":        OutputFormatCSV,
		"CSV":     OutputFormatCSV,
		".tsv":    OutputFormatTSV,
		"ltsv":    OutputFormatLTSV,
		"parquet": OutputFormatParquet,
		" xlsx ":  OutputFormatXLSX,
	} {
		got, err := ParseOutputFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOutputFormat("json")
	assert.Error(t, err)
}

func TestParseCompressionType(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]CompressionType{
		"":     CompressionNone,
		"none": CompressionNone,
		"gzip": CompressionGZ,
		".gz":  CompressionGZ,
		"bz2":  CompressionBZ2,
		"xz":   CompressionXZ,
		"zst":  CompressionZSTD,
		"ZSTD": CompressionZSTD,
	} {
		got, err := ParseCompressionType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCompressionType("lz4")
	assert.Error(t, err)
}
