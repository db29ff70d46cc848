package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads rows from an .xlsx workbook. When sheetName is empty the
// first sheet is used. Cell values are the formatted strings a CSV export of
// the same sheet would contain.
func ReadWorkbook(r io.Reader, sheetName string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheetName = sheets[0]
	}
	cells, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	rows := make([]Row, 0, len(cells))
	for _, cellRow := range cells {
		row := make(Row, len(cellRow))
		for i, cell := range cellRow {
			row[i] = strings.TrimSpace(cell)
		}
		if len(row) == 0 {
			row = Row{""}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
