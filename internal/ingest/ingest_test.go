package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abelbrown/pricebook/internal/alert"
)

// workbook builds an xlsx in memory with rows written to the first sheet.
func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func headerRow(labels []string) []any {
	out := make([]any, len(labels))
	for i, l := range labels {
		out[i] = l
	}
	return out
}

func dataRow(i int) []any {
	return []any{
		fmt.Sprintf("Supplier %d", i%3), "PL", "Brandex", fmt.Sprintf("Pipe %d", i), "Copper pipe",
		fmt.Sprintf("CP-%03d", i), 10.5 + float64(i), "m", "2024-01-01", "2024-06-01", "Dry",
		"No", "AS/NZ", "material", "AS1432", 6, 0.015, 0.001, "kg/m",
	}
}

func requireAlert(t *testing.T, err error, code int, title string) *alert.Alert {
	t.Helper()
	require.Error(t, err)
	a, ok := alert.From(err)
	require.True(t, ok, "want *alert.Alert, got %T", err)
	require.Equal(t, code, a.Code)
	require.Equal(t, title, a.Title)
	return a
}

func TestRejectsUnknownExtension(t *testing.T) {
	for _, name := range []string{"prices.csv", "prices.xlsx.txt", "prices", "prices.ods"} {
		_, err := Ingest(name, strings.NewReader("anything"))
		a := requireAlert(t, err, 400, "Invalid File")
		require.Equal(t, "Please upload an Excel file (.xlsx or .xls)", a.Message)
	}
}

func TestUnreadableWorkbookIsProcessingError(t *testing.T) {
	for _, name := range []string{"broken.xlsx", "broken.XLS"} {
		_, err := Ingest(name, strings.NewReader("this is not a spreadsheet"))
		a := requireAlert(t, err, 500, "Processing Error")
		require.Equal(t, "Failed to read file content", a.Message)
	}
}

func TestHeaderOnlyIsEmptyFile(t *testing.T) {
	buf := workbook(t, headerRow(RequiredHeaders))
	_, err := Ingest("prices.xlsx", buf)
	a := requireAlert(t, err, 400, "Empty File")
	require.Equal(t, "No data found in sheet", a.Message)
}

func TestBlankSheetIsEmptyFile(t *testing.T) {
	buf := workbook(t)
	_, err := Ingest("prices.xlsx", buf)
	requireAlert(t, err, 400, "Empty File")
}

func TestMissingColumnsInSchemaOrder(t *testing.T) {
	var headers []string
	for _, h := range RequiredHeaders {
		if h != "Weight Unit" && h != "Brand" {
			headers = append(headers, h)
		}
	}
	buf := workbook(t, headerRow(headers), []any{"Acme", "PL"})

	_, err := Ingest("prices.xlsx", buf)
	a := requireAlert(t, err, 422, "Missing Columns")
	require.Equal(t, "Missing: Brand, Weight Unit", a.Message)
}

func TestAcceptsFiftyRowsWithLooseHeaders(t *testing.T) {
	headers := append([]string(nil), RequiredHeaders...)
	headers[0] = "  SUPPLIER   name "
	headers[1] = "trade\tcode"
	headers[18] = "Weight Unit"

	rows := [][]any{headerRow(headers)}
	for i := range 50 {
		rows = append(rows, dataRow(i))
	}

	res, err := Ingest("Prices.XLSX", workbook(t, rows...))
	require.NoError(t, err)
	require.Len(t, res.Rows, 50)
	require.Equal(t, "Sheet1", res.Sheet)
	require.Equal(t, "Prices.XLSX", res.Name)
	require.Positive(t, res.Size)

	first := res.Rows[0]
	require.Equal(t, "Supplier 0", first.Get("Supplier Name"))
	require.Equal(t, "PL", first.Get("Trade Code"))
	require.Equal(t, "CP-000", first.Get("Code"))
	require.Equal(t, "10.5", first.Get("Price"))
	require.Equal(t, "Pipe 49", res.Rows[49].Get("Product Name"))
}

func TestRowsKeyedByHeaderRow(t *testing.T) {
	headers := append(append([]string(nil), RequiredHeaders...), "", "Notes", "Notes")
	full := append(dataRow(1), "orphan", "first", "second")
	sparse := []any{"Bolt Co", "EL"}

	res, err := Ingest("prices.xlsx", workbook(t, []any{}, headerRow(headers), full, []any{}, sparse))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2, "blank rows are skipped")

	require.Equal(t, "first", res.Rows[0]["Notes"])
	require.Equal(t, "second", res.Rows[0]["Notes_1"])
	require.Equal(t, "orphan", res.Rows[0]["__EMPTY"])

	// Every row carries every column, even when its cells are empty.
	require.Len(t, res.Rows[1], len(headers))
	require.Equal(t, "", res.Rows[1].Get("Price"))
	require.Equal(t, "Bolt Co", res.Rows[1].Get("supplier name"))
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Supplier Name", "supplier name"},
		{"  Weight\t\nUnit  ", "weight unit"},
		{"\uff30\uff52\uff49\uff43\uff45", "price"},
		{"Effective\u00a0Date", "effective date"},
		{"L", "l"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeHeader(tt.in), "NormalizeHeader(%q)", tt.in)
	}
}

func TestMissingHeaders(t *testing.T) {
	require.Empty(t, MissingHeaders(RequiredHeaders))
	require.Equal(t, RequiredHeaders, MissingHeaders(nil))
	require.Equal(t, []string{"T"}, MissingHeaders(append(RequiredHeaders[:17:17], "Weight Unit")))
}

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")
	buf := workbook(t, headerRow(RequiredHeaders), dataRow(0))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	res, err := IngestFile(path)
	require.NoError(t, err)
	require.Equal(t, "book.xlsx", res.Name)
	require.Len(t, res.Rows, 1)

	_, err = IngestFile(filepath.Join(dir, "missing.xlsx"))
	requireAlert(t, err, 500, "Processing Error")

	_, err = IngestFile(filepath.Join(dir, "notes.txt"))
	requireAlert(t, err, 400, "Invalid File")
}
