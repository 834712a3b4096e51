package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/grouping"
	"github.com/abelbrown/pricebook/internal/search"
)

// Result table column widths for fixed-width roles. Text columns share
// what is left.
const (
	codeColumnWidth  = 14
	priceColumnWidth = 16
	minTextWidth     = 10
)

const cheapestLabel = "BEST"

// renderCandidates renders the candidate list. Returns "" while the set is
// unresolved and nothing is in flight, so the area stays blank.
func renderCandidates(m search.Machine, cursor, width int, spin string) string {
	cands, ok := m.Candidates()
	if !ok {
		if m.Resolving() {
			return EmptyState.Render(spin + " Resolving " + fmt.Sprintf("%q", m.SearchedQuery()) + "...")
		}
		return ""
	}

	label := "QUERY_MATCHES"
	if _, busy := m.Selecting(); busy {
		label = spin + " SCANNING"
	}
	count := ListCount.Render(fmt.Sprintf("%d UNITS", len(cands)))
	header := ListHeader.Render(label)
	gap := width - lipgloss.Width(header) - lipgloss.Width(count) - 1
	if gap < 1 {
		gap = 1
	}

	var b strings.Builder
	b.WriteString(header + strings.Repeat(" ", gap) + count)
	b.WriteString("\n")

	if len(cands) == 0 {
		b.WriteString(EmptyState.Render("No Matches Found in Registry"))
		return b.String()
	}

	for i, c := range cands {
		b.WriteString(renderCandidate(c, i == cursor, width))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderCandidate(c catalog.Candidate, selected bool, width int) string {
	badge := KindBadge.Render(strings.ToUpper(string(c.Kind)))
	text := c.DisplayName
	if c.ID != "" && c.ID != c.DisplayName {
		text += "  " + c.ID
	}
	avail := width - lipgloss.Width(badge) - 2
	if avail < minTextWidth {
		avail = minTextWidth
	}
	text = runewidth.Truncate(text, avail, "…")

	style := NormalItem
	if selected {
		style = SelectedItem
	}
	return badge + style.Render(text)
}

// renderResults renders the grouped table, one section per trade. An empty
// table renders the empty-state line.
func renderResults(t grouping.Table, width int) string {
	if t.Empty() {
		return EmptyState.Render("No products listed for this selection")
	}

	cols := grouping.Visible(t.Columns)
	widths := columnWidths(cols, width)

	var b strings.Builder
	for i, section := range grouping.Sections(t.Rows) {
		if i > 0 {
			b.WriteString("\n")
		}
		head := section[0]
		title := "Trade Info  " + head.TradeCode
		if head.TradeName != "" && head.TradeName != head.TradeCode {
			title += "  " + head.TradeName
		}
		b.WriteString(SectionHeader.Render(title))
		b.WriteString("\n")

		titles := make([]string, len(cols))
		for j, c := range cols {
			titles[j] = c.Title
		}
		b.WriteString(ColumnHeader.Render(joinCells(titles, widths)))
		b.WriteString("\n")

		for _, row := range section {
			cells := make([]string, len(cols))
			for j, c := range cols {
				cells[j] = grouping.FormatCell(c.Role, row.Value(c.Key))
				if c.Role == grouping.RolePrice && row.IsCheapestInSet {
					cells[j] += " " + cheapestLabel
				}
			}
			line := joinCells(cells, widths)
			if row.IsCheapestInSet {
				line = CheapestBadge.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func columnWidths(cols []grouping.FieldDescriptor, width int) []int {
	widths := make([]int, len(cols))
	fixed, text := len(cols)-1, 0
	for i, c := range cols {
		switch c.Role {
		case grouping.RoleCode, grouping.RoleID:
			widths[i] = codeColumnWidth
			fixed += codeColumnWidth
		case grouping.RolePrice:
			widths[i] = priceColumnWidth
			fixed += priceColumnWidth
		default:
			text++
		}
	}
	if text == 0 {
		return widths
	}
	share := (width - fixed) / text
	if share < minTextWidth {
		share = minTextWidth
	}
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = share
		}
	}
	return widths
}

func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = runewidth.FillRight(runewidth.Truncate(c, widths[i], "…"), widths[i])
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}
