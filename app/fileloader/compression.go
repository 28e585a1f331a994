package fileloader

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression format of a source
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

// String returns the string representation of CompressionType
func (ct CompressionType) String() string {
	switch ct {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
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

// DetectCompressionByMagic inspects the leading bytes of data
func DetectCompressionByMagic(data []byte) CompressionType {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, bzip2Magic):
		return CompressionBzip2
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// Decompress returns the decompressed bytes. If the stream breaks part way
// through, the data read so far is returned together with a warning.
func Decompress(data []byte, compressionType CompressionType) ([]byte, string, error) {
	if compressionType == CompressionNone {
		return data, "", nil
	}

	var reader io.Reader
	switch compressionType {
	case CompressionGzip:
		gzReader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	case CompressionBzip2:
		reader = bzip2.NewReader(bytes.NewReader(data))
	case CompressionXZ:
		xzReader, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create xz reader: %w", err)
		}
		reader = xzReader
	default:
		return nil, "", fmt.Errorf("unsupported compression type: %v", compressionType)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		if buf.Len() == 0 {
			return nil, "", fmt.Errorf("decompression failed: %w", err)
		}
		return buf.Bytes(), fmt.Sprintf("decompression incomplete: %v; some rows may be missing", err), nil
	}
	return buf.Bytes(), "", nil
}
