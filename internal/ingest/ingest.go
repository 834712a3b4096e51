// Package ingest validates supplier price-book spreadsheets.
//
// Validation runs in a fixed order and stops at the first failure:
// extension, workbook parse (first sheet only), emptiness, required headers.
// Every failure is an *alert.Alert so callers can hand it straight to the
// alert surface. Rows are never validated individually.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/abelbrown/pricebook/internal/alert"
	"github.com/abelbrown/pricebook/internal/catalog"
)

// RequiredHeaders is the price-book schema, in the order missing columns
// are reported.
var RequiredHeaders = []string{
	"Supplier Name", "Trade Code", "Brand", "Product Name", "Description",
	"Code", "Price", "Unit", "Effective Date", "Update Date", "Storage",
	"Haz", "Grade", "Type", "Compliance", "L", "W", "T", "Weight Unit",
}

// Alert codes.
const (
	CodeInvalidFile     = 400
	CodeEmptyFile       = 400
	CodeMissingColumns  = 422
	CodeProcessingError = 500
)

// maxFileSize caps how much of an upload is read.
const maxFileSize = 64 << 20

// Result is an accepted spreadsheet.
type Result struct {
	Name    string
	Sheet   string
	Headers []string // header row as written in the file
	Rows    []catalog.IngestedRow
	Size    int64
}

// NormalizeHeader folds a header label for comparison: Unicode NFKC,
// lower-cased, trimmed, internal whitespace collapsed.
func NormalizeHeader(s string) string {
	return catalog.FoldLabel(norm.NFKC.String(s))
}

// MissingHeaders returns the required headers absent from headers, in
// RequiredHeaders order.
func MissingHeaders(headers []string) []string {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[NormalizeHeader(h)] = true
	}
	var missing []string
	for _, req := range RequiredHeaders {
		if !have[NormalizeHeader(req)] {
			missing = append(missing, req)
		}
	}
	return missing
}

// IngestFile opens path and ingests it under its base name.
func IngestFile(path string) (*Result, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, alert.New(CodeProcessingError, "Processing Error", fmt.Sprintf("Failed to read file content: %v", err))
	}
	defer f.Close()
	return Ingest(filepath.Base(path), f)
}

// Ingest validates the spreadsheet named name read from r. On success the
// full row collection is returned unmodified.
func Ingest(name string, r io.Reader) (*Result, error) {
	if err := checkExtension(name); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxFileSize))
	if err != nil {
		return nil, processingError()
	}

	var sheet string
	var grid [][]string
	if strings.HasSuffix(strings.ToLower(name), ".xls") {
		sheet, grid, err = readXLS(bytes.NewReader(data))
	} else {
		sheet, grid, err = readXLSX(bytes.NewReader(data))
	}
	if err != nil {
		return nil, processingError()
	}

	headers, rows := toRows(grid)
	if len(rows) == 0 {
		return nil, alert.New(CodeEmptyFile, "Empty File", "No data found in sheet")
	}

	if missing := MissingHeaders(headers); len(missing) > 0 {
		return nil, alert.New(CodeMissingColumns, "Missing Columns", "Missing: "+strings.Join(missing, ", "))
	}

	return &Result{
		Name:    name,
		Sheet:   sheet,
		Headers: headers,
		Rows:    rows,
		Size:    int64(len(data)),
	}, nil
}

func checkExtension(name string) error {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls") {
		return nil
	}
	return alert.New(CodeInvalidFile, "Invalid File", "Please upload an Excel file (.xlsx or .xls)")
}

func processingError() *alert.Alert {
	return alert.New(CodeProcessingError, "Processing Error", "Failed to read file content")
}

// toRows keys every data row by the header row. The header row is the first
// non-blank row; fully blank data rows are skipped. Blank header cells become
// __EMPTY, __EMPTY_1, ... and repeated headers get a _1, _2 suffix, so no
// column is silently merged into another.
func toRows(grid [][]string) ([]string, []catalog.IngestedRow) {
	start := 0
	for start < len(grid) && blank(grid[start]) {
		start++
	}
	if start == len(grid) {
		return nil, nil
	}

	raw := grid[start]
	headers := make([]string, len(raw))
	keys := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		headers[i] = h
		base := h
		if base == "" {
			base = "__EMPTY"
		}
		key := base
		if n := seen[base]; n > 0 {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		seen[base]++
		keys[i] = key
	}

	var rows []catalog.IngestedRow
	for _, cells := range grid[start+1:] {
		if blank(cells) {
			continue
		}
		row := make(catalog.IngestedRow, len(keys))
		for i, k := range keys {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
