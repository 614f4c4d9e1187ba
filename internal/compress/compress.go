// Package compress detects and handles gzip, bzip2 and xz wrapped files.
package compress

import (
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Type represents the compression format of a file
type Type int

const (
	None Type = iota
	Gzip
	Bzip2
	XZ
)

// String returns the string representation of Type
func (t Type) String() string {
	switch t {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case XZ:
		return "xz"
	default:
		return "none"
	}
}

// Magic byte signatures for compression detection
var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

var extensions = map[string]Type{
	".gz":  Gzip,
	".bz2": Bzip2,
	".xz":  XZ,
}

// Detect inspects the leading bytes of a file.
func Detect(header []byte) Type {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return Gzip
	case bytes.HasPrefix(header, bzip2Magic):
		return Bzip2
	case bytes.HasPrefix(header, xzMagic):
		return XZ
	default:
		return None
	}
}

// ByExtension returns the compression implied by the file extension.
func ByExtension(path string) Type {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// TrimExtension removes a compression extension, so "a.xlsx.gz" gives "a.xlsx".
func TrimExtension(path string) string {
	if ByExtension(path) == None {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// ReadFile reads a file, decompressing it if its magic bytes say so.
func ReadFile(path string) ([]byte, Type, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, None, err
	}

	t := Detect(data)
	if t == None {
		return data, None, nil
	}

	r, err := NewReader(bytes.NewReader(data), t)
	if err != nil {
		return nil, t, err
	}
	defer func() { _ = r.Close() }()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, t, fmt.Errorf("%s decompression failed: %w", t, err)
	}
	return buf.Bytes(), t, nil
}

// NewReader wraps r with a decompressor for t.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, nil
	case Bzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case XZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return io.NopCloser(xr), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %v", t)
	}
}

// NewWriter wraps w with a compressor chosen by the extension of path.
// Closing the returned writer flushes the compressor but not w.
func NewWriter(w io.Writer, path string) (io.WriteCloser, error) {
	switch t := ByExtension(path); t {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case XZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xw, nil
	default:
		return nil, fmt.Errorf("writing %s is not supported", t)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
