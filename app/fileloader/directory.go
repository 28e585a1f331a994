package fileloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
)

// DirectoryInfo contains metadata about a discovered directory
type DirectoryInfo struct {
	RootPath   string   // Absolute path to directory
	Files      []string // Discovered file paths (absolute, sorted)
	TotalFiles int      // Files matched before the MaxFiles cap
	TotalSize  int64    // Total size in bytes of the kept files
}

// IsDirectory checks if the path is a directory
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// DiscoverFiles finds the files under dirPath matching pattern ("**/*.csv", "*.xlsx", ...).
// maxFiles caps the result (0 = unlimited).
func DiscoverFiles(dirPath, pattern string, maxFiles int) (*DirectoryInfo, error) {
	if pattern == "" {
		return nil, fmt.Errorf("file pattern is required (e.g. *.csv, **/*.xlsx)")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid file pattern %q", pattern)
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(absPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("pattern matching failed: %w", err)
	}
	sort.Strings(matches)

	info := &DirectoryInfo{RootPath: absPath}
	for _, match := range matches {
		st, err := os.Stat(match)
		if err != nil || st.IsDir() {
			continue
		}
		info.TotalFiles++
		if maxFiles > 0 && len(info.Files) >= maxFiles {
			continue
		}
		info.Files = append(info.Files, match)
		info.TotalSize += st.Size()
	}
	return info, nil
}

// LoadDirectory merges every matching file into one table. The header is the
// union of all file headers in first-seen order; with IncludeSourceColumn a
// __source_file__ column holds each record's path relative to the directory.
func LoadDirectory(ctx context.Context, dirPath string, options FileOptions) (*interfaces.Table, error) {
	info, err := DiscoverFiles(dirPath, options.FilePattern, options.MaxFiles)
	if err != nil {
		return nil, err
	}
	if len(info.Files) == 0 {
		return nil, fmt.Errorf("no files in %s match %q", dirPath, options.FilePattern)
	}

	merged := &interfaces.Table{Records: []interfaces.Record{}}
	seen := map[string]bool{}
	if info.TotalFiles > len(info.Files) {
		merged.Warnings = append(merged.Warnings, fmt.Sprintf(
			"%d files match %q, only the first %d were loaded", info.TotalFiles, options.FilePattern, len(info.Files)))
	}

	perFile := options
	perFile.FilePattern = ""
	for _, path := range info.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := LoadFile(ctx, path, perFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		rel, err := filepath.Rel(info.RootPath, path)
		if err != nil {
			rel = path
		}
		for _, w := range t.Warnings {
			merged.Warnings = append(merged.Warnings, rel+": "+w)
		}
		merged.Headers = unionHeaders(merged.Headers, seen, t.Headers)
		for _, rec := range t.Records {
			if options.IncludeSourceColumn {
				rec[SourceColumn] = interfaces.ScalarCell(rel)
			}
			merged.Records = append(merged.Records, rec)
		}
	}
	if options.IncludeSourceColumn {
		merged.Headers = unionHeaders(merged.Headers, seen, []string{SourceColumn})
	}

	// Records from files lacking a column get an empty cell for it
	for _, rec := range merged.Records {
		for _, h := range merged.Headers {
			if _, ok := rec[h]; !ok {
				rec[h] = interfaces.ScalarCell("")
			}
		}
	}
	return merged, nil
}
