package fileloader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
)

const byteOrderMark = "\ufeff"

// multiValueSeparator splits multi-value cells regardless of the field delimiter
const multiValueSeparator = ","

var lineBreak = regexp.MustCompile(`\r?\n`)

// Parse converts delimited text into a table. The first line is the header row.
// Quoted fields may contain the delimiter and doubled quotes, but not line
// breaks: the text is split into lines before fields are split.
//
// An empty document yields an empty table. Row-shape problems never fail the
// parse; they are reported in Table.Warnings.
func Parse(text string, opts ParseOptions) *interfaces.Table {
	text = strings.TrimSpace(strings.TrimPrefix(text, byteOrderMark))
	if text == "" {
		return &interfaces.Table{Headers: []string{}, Records: []interfaces.Record{}}
	}

	delim := opts.delimiter()
	lines := lineBreak.Split(text, -1)

	first := SplitLine(lines[0], delim)
	var header []string
	start := 1
	if opts.NoHeaderRow {
		header = NormalizeHeaders(make([]string, len(first)))
		start = 0
	} else {
		header = NormalizeHeaders(first)
	}

	rows := make([][]string, 0, len(lines)-start)
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, SplitLine(line, delim))
	}
	return BuildTable(header, rows, opts)
}

// SplitLine performs quote-aware field splitting of one line.
// A quote opens a quoted section only at the start of a field; elsewhere it is
// literal. Inside quotes a doubled quote is an escaped quote and a single quote
// closes the section. Fields are trimmed.
func SplitLine(line string, delim rune) []string {
	var (
		values       []string
		current      strings.Builder
		insideQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if insideQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					current.WriteRune('"')
					i++
				} else {
					insideQuotes = false
				}
			} else {
				current.WriteRune(ch)
			}
			continue
		}
		switch {
		case ch == '"' && current.Len() == 0:
			insideQuotes = true
		case ch == delim:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	values = append(values, strings.TrimSpace(current.String()))
	return values
}

// BuildTable turns raw rows into records keyed by header.
//   - fields are trimmed
//   - missing fields become "" (with a warning); extra fields are ignored (with a warning)
//   - rows without any non-empty field are dropped
//   - multi-value columns are split on ","
func BuildTable(header []string, rows [][]string, opts ParseOptions) *interfaces.Table {
	multi := make(map[string]bool, len(opts.MultiValueColumns))
	for _, c := range opts.MultiValueColumns {
		multi[c] = true
	}

	table := &interfaces.Table{
		Headers: header,
		Records: make([]interfaces.Record, 0, len(rows)),
	}
	for i, fields := range rows {
		if len(fields) != len(header) {
			table.Warnings = append(table.Warnings, fmt.Sprintf(
				"row %d has %d fields, header has %d; data may be misaligned", i+1, len(fields), len(header)))
		}

		rec := make(interfaces.Record, len(header))
		hasContent := false
		for j, h := range header {
			v := ""
			if j < len(fields) {
				v = strings.TrimSpace(fields[j])
			}
			cell := makeCell(v, multi[h])
			rec[h] = cell
			if !cell.IsEmpty() {
				hasContent = true
			}
		}
		if hasContent {
			table.Records = append(table.Records, rec)
		}
	}
	return table
}

func makeCell(v string, isMulti bool) interfaces.Cell {
	if !isMulti || !strings.Contains(v, multiValueSeparator) {
		return interfaces.ScalarCell(v)
	}
	parts := strings.Split(v, multiValueSeparator)
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	if len(values) == 1 {
		return interfaces.ScalarCell(values[0])
	}
	return interfaces.MultiCell(values)
}
