package loader

import (
	"bytes"
	"fmt"
	"os"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// readXLSX returns the cell grid of the named sheet, or the first sheet when
// sheet is empty. Raw cell values are used so number formats do not leak in.
func readXLSX(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// readXLS returns the first sheet of a legacy BIFF workbook. The reader
// only works from a file path, so the payload is spooled to a temp file.
func readXLS(data []byte) ([][]string, error) {
	tmp, err := os.CreateTemp("", "folio-holdings-*.xls")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		return nil, fmt.Errorf("failed to spool xls: %w", err)
	}
	tmp.Close()

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("no sheets found in xls")
	}

	var rows [][]string
	for _, row := range sheet.GetRows() {
		var vals []string
		for _, col := range row.GetCols() {
			vals = append(vals, col.GetString())
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
