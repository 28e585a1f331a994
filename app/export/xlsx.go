package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is used when WriteXLSX is given no sheet name
const DefaultSheetName = "Export"

// maxSheetNameLen is the spreadsheet limit on sheet names
const maxSheetNameLen = 31

// WriteXLSX writes rows as a single-sheet workbook with a bold header row.
// Integers are stored as numbers, everything else as text.
func WriteXLSX(w io.Writer, sheet string, rows [][]string) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	if r := []rune(sheet); len(r) > maxSheetNameLen {
		sheet = string(r[:maxSheetNameLen])
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("invalid sheet name %q: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = cellValue(v, i == 0)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(s string, header bool) any {
	if header {
		return s
	}
	if n, err := strconv.Atoi(s); err == nil && strconv.Itoa(n) == s {
		return n
	}
	return s
}
