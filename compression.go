package sqlshape

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/nao1215/sqlshape/domain/model"
)

// compressionSuffixes is the single table both suffix detection and suffix
// stripping read, so the two always agree.
var compressionSuffixes = []struct {
	suffix string
	typ    CompressionType
}{
	{".gz", CompressionGZ},
	{".bz2", CompressionBZ2},
	{".xz", CompressionXZ},
	{".zst", CompressionZSTD},
}

// SplitCompression returns path without its compression suffix together with
// the compression that suffix names. Suffixes match case-insensitively, so
// "DATA.CSV.GZ" yields "DATA.CSV" and CompressionGZ.
func SplitCompression(path string) (string, CompressionType) {
	lower := strings.ToLower(path)
	for _, s := range compressionSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return path[:len(path)-len(s.suffix)], s.typ
		}
	}
	return path, CompressionNone
}

// DumpOptionsForFile derives the output format and compression from a file
// name such as "report.tsv.zst".
func DumpOptionsForFile(path string) (DumpOptions, error) {
	base, compression := SplitCompression(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return DumpOptions{}, fmt.Errorf("%w: %s has no format extension", ErrUnsupportedFormat, path)
	}
	format, err := model.ParseOutputFormat(ext)
	if err != nil {
		return DumpOptions{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return NewDumpOptions().WithFormat(format).WithCompression(compression), nil
}

// NewDecompressor returns a reader yielding the data of r decompressed with ct.
// Closing it releases the decoder; r itself stays open.
func NewDecompressor(r io.Reader, ct CompressionType) (io.ReadCloser, error) {
	switch ct {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGZ:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return zr, nil
	case CompressionBZ2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return io.NopCloser(xr), nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, ct)
	}
}

// NewCompressor returns a writer compressing into w with ct.
// Close flushes the encoder; w itself stays open. bzip2 cannot be written.
func NewCompressor(w io.Writer, ct CompressionType) (io.WriteCloser, error) {
	switch ct {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGZ:
		return gzip.NewWriter(w), nil
	case CompressionBZ2:
		return nil, fmt.Errorf("%w: bzip2 is read-only", ErrUnsupportedCompression)
	case CompressionXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xw, nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, ct)
	}
}

// OpenCompressed opens path and decompresses it according to its suffix.
// Close releases the decoder and the file.
func OpenCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	_, ct := SplitCompression(path)
	dec, err := NewDecompressor(f, ct)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &compressedFile{ReadCloser: dec, file: f}, nil
}

// CreateCompressed creates path and compresses everything written with ct.
// Close flushes the encoder, then syncs and closes the file. The file is
// removed again when the encoder cannot be created.
func CreateCompressed(path string, ct CompressionType) (io.WriteCloser, error) {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	enc, err := NewCompressor(f, ct)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return &compressedFileWriter{WriteCloser: enc, file: f}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

type compressedFile struct {
	io.ReadCloser
	file *os.File
}

func (c *compressedFile) Close() error {
	return errors.Join(c.ReadCloser.Close(), c.file.Close())
}

type compressedFileWriter struct {
	io.WriteCloser
	file *os.File
}

func (c *compressedFileWriter) Close() error {
	err := c.WriteCloser.Close()
	if err == nil {
		err = c.file.Sync()
	}
	return errors.Join(err, c.file.Close())
}
