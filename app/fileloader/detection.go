package fileloader

import (
	"bytes"
	"path"
	"strings"
)

// compressionExtensions maps compression extensions to their CompressionType
var compressionExtensions = map[string]CompressionType{
	".gz":  CompressionGzip,
	".bz2": CompressionBzip2,
	".xz":  CompressionXZ,
}

var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// DetectFileTypeAndCompression determines both the file type and compression type.
// A compression extension (.gz, .bz2, .xz) wins; otherwise the leading bytes are
// checked. The inner type comes from the remaining extension.
func DetectFileTypeAndCompression(name string, head []byte) (FileType, CompressionType) {
	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 && strings.Contains(lower, "://") {
		lower = lower[:i]
	}

	compressionType := CompressionNone
	innerPath := lower
	for ext, ct := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			compressionType = ct
			innerPath = strings.TrimSuffix(lower, ext)
			break
		}
	}
	if compressionType == CompressionNone {
		compressionType = DetectCompressionByMagic(head)
	}

	return detectFileTypeFromPath(innerPath), compressionType
}

// detectFileTypeFromPath determines file type from a path (without compression extension)
func detectFileTypeFromPath(p string) FileType {
	switch path.Ext(p) {
	case ".csv", ".tsv", ".txt":
		return FileTypeCSV
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	case ".json":
		return FileTypeJSON
	default:
		return FileTypeUnknown
	}
}

// SniffFileType guesses the type of already decompressed content
func SniffFileType(data []byte) FileType {
	if bytes.HasPrefix(data, zipMagic) {
		return FileTypeXLSX
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte(byteOrderMark)), " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return FileTypeJSON
	}
	return FileTypeCSV
}
