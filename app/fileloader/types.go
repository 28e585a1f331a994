// Package fileloader turns delimited text, spreadsheets, JSON documents,
// directories of files and remote URLs into a single in-memory table.
//
// All formats go through the same row builder so that trimming, empty-row
// dropping, short-row padding and multi-value splitting behave identically
// no matter where the data came from.
package fileloader

import (
	"strings"
)

// FileType represents the type of data file being processed
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeXLSX
	FileTypeJSON
)

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "CSV"
	case FileTypeXLSX:
		return "XLSX"
	case FileTypeJSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// SourceColumn is added when merging a directory with IncludeSourceColumn
const SourceColumn = "__source_file__"

// FileOptions contains all options that define how a source is turned into a table.
// Two loads of the same bytes with different options are different tables.
type FileOptions struct {
	Delimiter         string   `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	MultiValueColumns []string `json:"multiValueColumns,omitempty" yaml:"multiValueColumns,omitempty"`
	NoHeaderRow       bool     `json:"noHeaderRow,omitempty" yaml:"noHeaderRow,omitempty"`

	// JSON sources: JSONPath selecting the array of records
	JPath string `json:"jpath,omitempty" yaml:"jpath,omitempty"`
	// XLSX sources: sheet name, first sheet when empty
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`

	// Directory loading options
	FilePattern         string `json:"filePattern,omitempty" yaml:"filePattern,omitempty"`
	IncludeSourceColumn bool   `json:"includeSourceColumn,omitempty" yaml:"includeSourceColumn,omitempty"`
	MaxFiles            int    `json:"maxFiles,omitempty" yaml:"maxFiles,omitempty"`
}

// Key returns a unique string key for this options combination.
// Used for cache keys.
func (fo FileOptions) Key() string {
	noHeaderStr := "false"
	if fo.NoHeaderRow {
		noHeaderStr = "true"
	}
	delim := fo.Delimiter
	if delim == "" {
		delim = ","
	}
	dirStr := "file"
	if fo.FilePattern != "" {
		dirStr = "dir:" + fo.FilePattern
		if fo.IncludeSourceColumn {
			dirStr += ":src"
		}
	}
	return strings.Join([]string{
		delim,
		strings.Join(fo.MultiValueColumns, "\x1f"),
		noHeaderStr,
		fo.JPath,
		fo.Sheet,
		dirStr,
	}, "::")
}

// ParseOptions returns the subset used by the row builder
func (fo FileOptions) ParseOptions() ParseOptions {
	return ParseOptions{
		Delimiter:         fo.Delimiter,
		MultiValueColumns: fo.MultiValueColumns,
		NoHeaderRow:       fo.NoHeaderRow,
	}
}

// ParseOptions controls text parsing and record building
type ParseOptions struct {
	Delimiter         string
	MultiValueColumns []string
	NoHeaderRow       bool
}

func (p ParseOptions) delimiter() rune {
	for _, r := range p.Delimiter {
		return r
	}
	return ','
}
