// Package export renders table views as spreadsheets.
package export

import (
	"fmt"
	"strings"

	"github.com/BradenHooton/admintable/internal/table"
	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook writes rows as a single-sheet workbook: one header row with the
// column headers, then one row per item in the given order.
func Workbook[T any](sheet string, columns []table.Column[T], rows []T) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	name := sanitizeSheetName(sheet)
	if err := xl.SetSheetName(xl.GetSheetName(0), name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := xl.SetSheetRow(name, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for ri, row := range rows {
		record := make([]any, len(columns))
		for ci, c := range columns {
			record[ci] = c.Value(row)
		}
		cellRef, err := excelize.CoordinatesToCellName(1, ri+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(name, cellRef, &record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", ri+1, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Sheet names cannot contain : \ / ? * [ ] and are at most 31 characters.
func sanitizeSheetName(name string) string {
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := strings.TrimSpace(replacer.Replace(name))
	if safe == "" {
		return "Sheet1"
	}
	if r := []rune(safe); len(r) > 31 {
		return string(r[:31])
	}
	return safe
}
