package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/store"
)

// previewColumnWidth is the width of each column in the ingest preview.
const previewColumnWidth = 16

// batchSummary describes the stored collection in one line.
func batchSummary(b store.Batch) string {
	parts := []string{b.FileName}
	if b.Sheet != "" {
		parts = append(parts, "sheet "+b.Sheet)
	}
	parts = append(parts,
		humanize.Comma(int64(b.RowCount))+" rows",
		humanize.Bytes(uint64(b.Size)),
		"ingested "+humanize.Time(b.IngestedAt),
	)
	return strings.Join(parts, " · ")
}

// renderIngest renders the ingest panel body below the path input.
func renderIngest(batch *store.Batch, rows []catalog.IngestedRow, ingesting bool, spin string, width int) string {
	var b strings.Builder
	if ingesting {
		b.WriteString(EmptyState.Render(spin + " Validating spreadsheet..."))
		b.WriteString("\n\n")
	}

	if batch == nil {
		b.WriteString(EmptyState.Render("No price book ingested. Enter the path of an .xlsx or .xls file."))
		return b.String()
	}

	b.WriteString(ListHeader.Render("CURRENT PRICE BOOK"))
	b.WriteString("\n")
	b.WriteString(NormalItem.Render(batchSummary(*batch)))
	b.WriteString("\n\n")
	b.WriteString(renderPreview(batch.Headers, rows, width))
	return b.String()
}

// renderPreview draws as many header columns as fit in width.
func renderPreview(headers []string, rows []catalog.IngestedRow, width int) string {
	n := (width + 1) / (previewColumnWidth + 1)
	if n < 1 {
		n = 1
	}
	if n > len(headers) {
		n = len(headers)
	}
	if n == 0 {
		return ""
	}
	shown := headers[:n]
	widths := make([]int, n)
	for i := range widths {
		widths[i] = previewColumnWidth
	}

	var b strings.Builder
	b.WriteString(ColumnHeader.Render(joinCells(shown, widths)))
	b.WriteString("\n")
	for _, r := range rows {
		cells := make([]string, n)
		for i, h := range shown {
			cells[i] = r.Get(h)
		}
		b.WriteString(joinCells(cells, widths))
		b.WriteString("\n")
	}
	if hidden := len(headers) - n; hidden > 0 {
		b.WriteString(MutedText.Render(fmt.Sprintf("+%d more columns", hidden)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
