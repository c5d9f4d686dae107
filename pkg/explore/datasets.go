package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// sortField defines which column to sort by.
type sortField int

const (
	sortByName sortField = iota
	sortByRows
	sortByVariables
	sortBySource
	sortByDiagnostics
	sortFieldCount // sentinel
)

var sortFieldNames = [sortFieldCount]string{
	"Name", "Rows", "Variables", "Source", "Diagnostics",
}

// datasetsPane is the top-right datasets table.
type datasetsPane struct {
	rows    []*datasetRow // filtered rows
	allRows []*datasetRow // all rows (unfiltered)
	cursor  int
	offset  int
	width   int
	height  int
	focused bool
	sortBy  sortField
	sortAsc bool

	// Column widths
	colName   int
	colLabel  int
	colRows   int
	colVars   int
	colDiag   int
	colSource int
}

func newDatasetsPane(rows []*datasetRow) datasetsPane {
	dp := datasetsPane{
		allRows: rows,
		rows:    rows,
		sortAsc: true,
	}
	dp.sort()
	return dp
}

func (dp *datasetsPane) setFilteredRows(rows []*datasetRow) {
	dp.rows = rows
	dp.sort()
	if dp.cursor >= len(dp.rows) {
		dp.cursor = max(0, len(dp.rows)-1)
	}
	dp.ensureVisible()
}

func (dp datasetsPane) selectedDataset() *datasetRow {
	if dp.cursor < 0 || dp.cursor >= len(dp.rows) {
		return nil
	}
	return dp.rows[dp.cursor]
}

func (dp datasetsPane) Update(msg tea.Msg) (datasetsPane, tea.Cmd) {
	if !dp.focused {
		return dp, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keyMatches(msg, defaultKeys.Up):
			if dp.cursor > 0 {
				dp.cursor--
				dp.ensureVisible()
			}
		case keyMatches(msg, defaultKeys.Down):
			if dp.cursor < len(dp.rows)-1 {
				dp.cursor++
				dp.ensureVisible()
			}
		case keyMatches(msg, defaultKeys.Home):
			dp.cursor = 0
			dp.offset = 0
		case keyMatches(msg, defaultKeys.End):
			dp.cursor = max(0, len(dp.rows)-1)
			dp.ensureVisible()
		case keyMatches(msg, defaultKeys.PageDown):
			dp.cursor = max(0, min(dp.cursor+dp.visibleRows(), len(dp.rows)-1))
			dp.ensureVisible()
		case keyMatches(msg, defaultKeys.PageUp):
			dp.cursor = max(dp.cursor-dp.visibleRows(), 0)
			dp.ensureVisible()
		case keyMatches(msg, defaultKeys.SortNext):
			dp.sortBy = (dp.sortBy + 1) % sortFieldCount
			dp.sort()
		case keyMatches(msg, defaultKeys.SortReverse):
			dp.sortAsc = !dp.sortAsc
			dp.sort()
		}
	}

	return dp, nil
}

func (dp *datasetsPane) sort() {
	switch dp.sortBy {
	case sortByName:
		sortSlice(dp.rows, func(a, b *datasetRow) bool { return a.Name < b.Name }, dp.sortAsc)
	case sortByRows:
		sortSlice(dp.rows, func(a, b *datasetRow) bool { return a.RowCount < b.RowCount }, dp.sortAsc)
	case sortByVariables:
		sortSlice(dp.rows, func(a, b *datasetRow) bool { return len(a.Variables) < len(b.Variables) }, dp.sortAsc)
	case sortBySource:
		sortSlice(dp.rows, func(a, b *datasetRow) bool { return a.Source < b.Source }, dp.sortAsc)
	case sortByDiagnostics:
		sortSlice(dp.rows, func(a, b *datasetRow) bool { return len(a.Diagnostics) < len(b.Diagnostics) }, dp.sortAsc)
	}
}

// sortSlice is a stable insertion sort; equal elements keep their order.
func sortSlice[T any](s []T, less func(a, b T) bool, asc bool) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0; j-- {
			if asc {
				if !less(s[j], s[j-1]) {
					break
				}
			} else if !less(s[j-1], s[j]) {
				break
			}
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func (dp datasetsPane) View() string {
	if dp.width <= 0 || dp.height <= 0 {
		return ""
	}

	// Calculate column widths
	contentWidth := dp.width - 4 // borders
	dp.colName = 10
	dp.colRows = 9
	dp.colVars = 6
	dp.colDiag = 6
	dp.colSource = min(30, contentWidth/4)
	dp.colLabel = contentWidth - dp.colName - dp.colRows - dp.colVars - dp.colDiag - dp.colSource - 6 // separators
	if dp.colLabel < 10 {
		dp.colLabel = 10
	}

	var b strings.Builder

	sortIndicator := func(f sortField) string {
		if dp.sortBy == f {
			if dp.sortAsc {
				return " ^"
			}
			return " v"
		}
		return ""
	}

	header := fmt.Sprintf(" %-*s %-*s %*s %*s %*s %-*s",
		dp.colName, "Name"+sortIndicator(sortByName),
		dp.colLabel, "Label",
		dp.colRows, "Rows"+sortIndicator(sortByRows),
		dp.colVars, "Vars"+sortIndicator(sortByVariables),
		dp.colDiag, "Diag"+sortIndicator(sortByDiagnostics),
		dp.colSource, "Source"+sortIndicator(sortBySource),
	)
	b.WriteString(headerRowStyle.Width(contentWidth).Render(truncateString(header, contentWidth)))
	b.WriteString("\n")

	b.WriteString(strings.Repeat("─", contentWidth))
	b.WriteString("\n")

	visibleEnd := min(dp.offset+dp.visibleRows(), len(dp.rows))
	for i := dp.offset; i < visibleEnd; i++ {
		row := dp.rows[i]
		isCurrent := i == dp.cursor

		line := fmt.Sprintf(" %-*s %-*s %*d %*d %*s %-*s",
			dp.colName, truncateString(row.Name, dp.colName),
			dp.colLabel, truncateString(row.Label, dp.colLabel),
			dp.colRows, row.RowCount,
			dp.colVars, len(row.Variables),
			dp.colDiag, renderDiagnosticCount(len(row.Diagnostics)),
			dp.colSource, truncateLeft(row.Source, dp.colSource),
		)

		if isCurrent && dp.focused {
			line = selectedRowStyle.Width(contentWidth).Render(stripAnsi(line))
		}

		b.WriteString(padRight(line, contentWidth))
		if i < visibleEnd-1 {
			b.WriteString("\n")
		}
	}

	// Fill empty rows
	for i := visibleEnd - dp.offset; i < dp.visibleRows(); i++ {
		b.WriteString(strings.Repeat(" ", contentWidth))
		if i < dp.visibleRows()-1 {
			b.WriteString("\n")
		}
	}

	title := titleStyle.Render(fmt.Sprintf(" Datasets (%d/%d) [sort: %s] ", len(dp.rows), len(dp.allRows), sortFieldNames[dp.sortBy]))

	borderStyle := inactiveBorderStyle
	if dp.focused {
		borderStyle = activeBorderStyle
	}

	content := borderStyle.
		Width(dp.width - 2).
		Height(dp.height - 3).
		Render(b.String())

	return lipgloss.JoinVertical(lipgloss.Left, title, content)
}

func (dp datasetsPane) visibleRows() int {
	return max(1, dp.height-6) // title + border + header + separator
}

func (dp *datasetsPane) ensureVisible() {
	if dp.cursor < dp.offset {
		dp.offset = dp.cursor
	}
	if dp.cursor >= dp.offset+dp.visibleRows() {
		dp.offset = dp.cursor - dp.visibleRows() + 1
	}
}

func (dp *datasetsPane) setSize(w, h int) {
	dp.width = w
	dp.height = h
}

// truncateLeft keeps the tail of s, which is the informative part of a path.
func truncateLeft(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[len(s)-maxLen:]
	}
	return "..." + s[len(s)-maxLen+3:]
}
