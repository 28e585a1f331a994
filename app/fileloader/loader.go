package fileloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
)

// DefaultDirectoryPattern is used when a directory is loaded without a pattern
const DefaultDirectoryPattern = "**/*.csv"

// maxRemoteBytes caps downloads from csvUrl sources
const maxRemoteBytes = 256 << 20

// IsURL reports whether source is an http(s) URL
func IsURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads a file, a directory or an http(s) URL into a table
func Load(ctx context.Context, source string, options FileOptions, timeout time.Duration) (*interfaces.Table, error) {
	if source == "" {
		return nil, fmt.Errorf("no data source given")
	}
	if IsURL(source) {
		data, err := FetchURL(ctx, source, timeout)
		if err != nil {
			return nil, err
		}
		return LoadBytes(source, data, options)
	}
	if IsDirectory(source) {
		if options.FilePattern == "" {
			options.FilePattern = DefaultDirectoryPattern
		}
		return LoadDirectory(ctx, source, options)
	}
	return LoadFile(ctx, source, options)
}

// LoadFile reads one local file into a table
func LoadFile(ctx context.Context, path string, options FileOptions) (*interfaces.Table, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(filepath.Base(path), data, options)
}

// LoadBytes parses raw source bytes. name is only used for type detection.
func LoadBytes(name string, data []byte, options FileOptions) (*interfaces.Table, error) {
	fileType, compression := DetectFileTypeAndCompression(name, data)

	plain, warning, err := Decompress(data, compression)
	if err != nil {
		return nil, err
	}
	if fileType == FileTypeUnknown {
		fileType = SniffFileType(plain)
	}

	var table *interfaces.Table
	switch fileType {
	case FileTypeXLSX:
		table, err = ReadXLSX(plain, options)
	case FileTypeJSON:
		table, err = ReadJSON(plain, options)
	default:
		if options.Delimiter == "" && isTSV(name) {
			options.Delimiter = "\t"
		}
		table = Parse(string(plain), options.ParseOptions())
	}
	if err != nil {
		return nil, err
	}
	if warning != "" {
		table.Warnings = append([]string{warning}, table.Warnings...)
	}
	return table, nil
}

func isTSV(name string) bool {
	lower := strings.ToLower(name)
	for ext := range compressionExtensions {
		lower = strings.TrimSuffix(lower, ext)
	}
	return strings.HasSuffix(lower, ".tsv")
}

// FetchURL downloads a remote source. timeout <= 0 means no timeout beyond ctx.
func FetchURL(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error fetching %s: %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if len(data) > maxRemoteBytes {
		return nil, fmt.Errorf("%s is larger than %d bytes", url, maxRemoteBytes)
	}
	return data, nil
}
