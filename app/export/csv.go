package export

import (
	"fmt"
	"io"
	"strings"
)

// byteOrderMark prefixes exported files so spreadsheet tools detect UTF-8
const byteOrderMark = "\ufeff"

// EscapeField quotes a field that contains a comma, a quote or a line break,
// doubling any embedded quotes
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// JoinCSV renders rows as CSV text with CRLF line endings and no trailing newline
func JoinCSV(rows [][]string) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\r\n")
		}
		for j, field := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EscapeField(field))
		}
	}
	return b.String()
}

// WriteCSV writes a byte order mark followed by JoinCSV(rows)
func WriteCSV(w io.Writer, rows [][]string) error {
	if _, err := io.WriteString(w, byteOrderMark+JoinCSV(rows)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
