package explore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// filterPane lists the facets (source file, dataset type, diagnostic kind)
// with their values. Toggling a value narrows the dataset list.
type filterPane struct {
	facets *facetState
	folded map[facetID]bool

	rows   []facetRow
	cursor int
	top    int // first visible row

	width, height int
	focused       bool
}

// facetRow is one line of the pane: a facet heading when value is nil,
// otherwise one of its values.
type facetRow struct {
	facet facetID
	title string
	value *facetValue
}

func (r facetRow) heading() bool { return r.value == nil }

func newFilterPane(facets *facetState) filterPane {
	fp := filterPane{facets: facets, folded: make(map[facetID]bool)}
	fp.layoutRows()
	return fp
}

// layoutRows lists every non-empty facet followed by its values unless the
// facet is folded.
func (fp *filterPane) layoutRows() {
	fp.rows = nil
	for _, def := range facetDefs {
		values := fp.facets.Values[def.ID]
		if len(values) == 0 {
			continue
		}
		fp.rows = append(fp.rows, facetRow{facet: def.ID, title: def.Label})
		if fp.folded[def.ID] {
			continue
		}
		for _, v := range values {
			fp.rows = append(fp.rows, facetRow{facet: def.ID, title: v.Value, value: v})
		}
	}
}

func (fp filterPane) Update(msg tea.Msg) (filterPane, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !fp.focused || !ok {
		return fp, nil
	}

	page := fp.visibleRows()
	switch {
	case keyMatches(km, defaultKeys.Up):
		fp.moveTo(fp.cursor - 1)
	case keyMatches(km, defaultKeys.Down):
		fp.moveTo(fp.cursor + 1)
	case keyMatches(km, defaultKeys.PageUp):
		fp.moveTo(fp.cursor - page)
	case keyMatches(km, defaultKeys.PageDown):
		fp.moveTo(fp.cursor + page)
	case keyMatches(km, defaultKeys.Home):
		fp.moveTo(0)
	case keyMatches(km, defaultKeys.End):
		fp.moveTo(len(fp.rows) - 1)
	case keyMatches(km, defaultKeys.ToggleFilter):
		fp.toggleCurrent()
	case keyMatches(km, defaultKeys.ResetFilter):
		fp.facets.resetAll()
	}
	return fp, nil
}

// moveTo puts the cursor on row i, clamped to the list, and scrolls it into view.
func (fp *filterPane) moveTo(i int) {
	fp.cursor = max(0, min(i, len(fp.rows)-1))
	page := fp.visibleRows()
	switch {
	case fp.cursor < fp.top:
		fp.top = fp.cursor
	case fp.cursor >= fp.top+page:
		fp.top = fp.cursor - page + 1
	}
}

// toggleCurrent folds or unfolds a heading, or flips the selection of a value.
func (fp *filterPane) toggleCurrent() {
	if fp.cursor < 0 || fp.cursor >= len(fp.rows) {
		return
	}
	r := fp.rows[fp.cursor]
	if !r.heading() {
		r.value.Selected = !r.value.Selected
		return
	}

	fp.folded[r.facet] = !fp.folded[r.facet]
	fp.layoutRows()
	for i, row := range fp.rows {
		if row.heading() && row.facet == r.facet {
			fp.moveTo(i)
			return
		}
	}
}

func (fp filterPane) View() string {
	if fp.width <= 0 || fp.height <= 0 {
		return ""
	}
	inner := fp.width - 2
	page := fp.visibleRows()

	lines := make([]string, 0, page)
	for i := fp.top; i < len(fp.rows) && len(lines) < page; i++ {
		var line string
		if r := fp.rows[i]; r.heading() {
			line = fp.headingLine(r)
		} else {
			line = fp.valueLine(r, inner)
		}
		if i == fp.cursor && fp.focused {
			line = selectedRowStyle.Width(inner).Render(stripAnsi(line))
		}
		lines = append(lines, padRight(line, inner))
	}
	for len(lines) < page {
		lines = append(lines, strings.Repeat(" ", inner))
	}

	border := inactiveBorderStyle
	if fp.focused {
		border = activeBorderStyle
	}
	body := border.Width(inner).Height(fp.height - 3).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(" Filters "), body)
}

func (fp filterPane) headingLine(r facetRow) string {
	arrow := "▾"
	if fp.folded[r.facet] {
		arrow = "▸"
	}
	text := " " + arrow + " " + r.title
	if n := len(fp.facets.selectedValues(r.facet)); n > 0 {
		text += fmt.Sprintf(" [%d]", n)
	}
	return facetLabelStyle.Render(text)
}

// valueLine renders "   + label   12" with the count right-aligned at the
// pane edge.
func (fp filterPane) valueLine(r facetRow, inner int) string {
	count := fmt.Sprintf("%d", r.value.Count)
	room := inner - 6 - len(count)

	label := truncateString(r.title, room)
	if r.facet == facetSource {
		label = shortSource(r.title, room)
	}
	gap := strings.Repeat(" ", max(1, room-lipgloss.Width(label)+1))

	marker := " "
	if r.value.Selected {
		marker = facetSelectedStyle.Render("+")
		label = facetSelectedStyle.Render(label)
	}
	return "   " + marker + " " + label + gap + facetCountStyle.Render(count)
}

// shortSource fits a source location into n columns: the whole location,
// then the file name, then the tail of the file name.
func shortSource(loc string, n int) string {
	if len(loc) <= n {
		return loc
	}
	if base := filepath.Base(loc); len(base)+4 <= n {
		return ".../" + base
	}
	return truncateLeft(loc, n)
}

func (fp filterPane) visibleRows() int {
	return max(1, fp.height-4) // title and border
}

func (fp *filterPane) setSize(w, h int) {
	fp.width, fp.height = w, h
}

func keyMatches(msg tea.KeyMsg, binding key.Binding) bool {
	pressed := msg.String()
	for _, k := range binding.Keys() {
		if pressed == k {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	switch {
	case maxLen <= 0:
		return ""
	case len(s) <= maxLen:
		return s
	case maxLen <= 3:
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// stripAnsi drops ANSI escape sequences so a line can be restyled.
func stripAnsi(s string) string {
	var out strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case r == '\033':
			escaped = true
		case escaped:
			escaped = !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z')
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
