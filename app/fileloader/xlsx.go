package fileloader

import (
	"bytes"
	"fmt"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX builds a table from one sheet of a workbook: options.Sheet, or the
// first sheet when unset. Cells are read as their formatted text.
func ReadXLSX(data []byte, options FileOptions) (*interfaces.Table, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data is empty")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}
	sheetName := sheets[0]
	if options.Sheet != "" {
		found := false
		for _, s := range sheets {
			if s == options.Sheet {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet %q not found (available: %v)", options.Sheet, sheets)
		}
		sheetName = options.Sheet
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return &interfaces.Table{Headers: []string{}, Records: []interfaces.Record{}}, nil
	}

	var header []string
	dataRows := rows[1:]
	if options.NoHeaderRow {
		width := 0
		for _, r := range rows {
			if len(r) > width {
				width = len(r)
			}
		}
		header = NormalizeHeaders(make([]string, width))
		dataRows = rows
	} else {
		header = NormalizeHeaders(rows[0])
	}

	// GetRows trims trailing empty cells, so short rows here are not a shape problem
	padded := make([][]string, 0, len(dataRows))
	for _, r := range dataRows {
		if len(r) < len(header) {
			full := make([]string, len(header))
			copy(full, r)
			r = full
		}
		padded = append(padded, r)
	}
	return BuildTable(header, padded, options.ParseOptions()), nil
}

// SheetNames lists the sheets of a workbook
func SheetNames(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}
