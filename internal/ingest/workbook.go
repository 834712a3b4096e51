package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var errNoSheet = errors.New("workbook has no sheets")

// readXLSX returns the name and cell grid of the first sheet of an OOXML workbook.
func readXLSX(r io.Reader) (string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, errNoSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return sheets[0], rows, nil
}

// readXLS returns the name and cell grid of the first sheet of a legacy BIFF
// workbook. The decoder panics on some malformed files; that is reported as
// an ordinary error.
func readXLS(r io.ReadSeeker) (name string, grid [][]string, err error) {
	defer func() {
		if p := recover(); p != nil {
			name, grid, err = "", nil, fmt.Errorf("decode xls: %v", p)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return "", nil, fmt.Errorf("open xls: %w", err)
	}
	if wb.NumSheets() == 0 {
		return "", nil, errNoSheet
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return "", nil, errNoSheet
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		grid = append(grid, cells)
	}
	return sheet.Name, grid, nil
}
