package explore

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xpttools/xpt/pkg/types"
)

// detailsPane shows metadata and variables of the selected dataset.
type detailsPane struct {
	dataset   *datasetRow
	varCursor int
	width     int
	height    int
	offset    int // scroll offset for content
	focused   bool
}

func newDetailsPane() detailsPane {
	return detailsPane{}
}

func (dp *detailsPane) setDataset(d *datasetRow) {
	dp.dataset = d
	dp.varCursor = 0
	dp.offset = 0
}

func (dp detailsPane) selectedVariable() *types.VarMeta {
	if dp.dataset == nil || dp.varCursor < 0 || dp.varCursor >= len(dp.dataset.Variables) {
		return nil
	}
	return &dp.dataset.Variables[dp.varCursor]
}

func (dp detailsPane) Update(msg tea.Msg) (detailsPane, tea.Cmd) {
	if !dp.focused {
		return dp, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keyMatches(msg, defaultKeys.Up):
			if dp.offset > 0 {
				dp.offset--
			}
		case keyMatches(msg, defaultKeys.Down):
			dp.offset++
		case keyMatches(msg, defaultKeys.Left):
			if dp.varCursor > 0 {
				dp.varCursor--
			}
		case keyMatches(msg, defaultKeys.Right):
			if dp.dataset != nil && dp.varCursor < len(dp.dataset.Variables)-1 {
				dp.varCursor++
			}
		case keyMatches(msg, defaultKeys.Home):
			dp.offset = 0
		case keyMatches(msg, defaultKeys.PageDown):
			dp.offset += dp.visibleRows()
		case keyMatches(msg, defaultKeys.PageUp):
			dp.offset = max(0, dp.offset-dp.visibleRows())
		}
	}

	return dp, nil
}

func (dp detailsPane) View() string {
	if dp.width <= 0 || dp.height <= 0 {
		return ""
	}

	contentWidth := dp.width - 4

	var lines []string

	if dp.dataset == nil {
		lines = append(lines, "  No dataset selected")
	} else {
		d := dp.dataset
		lines = append(lines, renderDatasetHeader(d)...)
		lines = append(lines, "")

		if len(d.Variables) > 0 {
			lines = append(lines, fmt.Sprintf("  %s",
				headerRowStyle.Render(fmt.Sprintf("Variable %d/%d (h/l to navigate)", dp.varCursor+1, len(d.Variables)))))
			lines = append(lines, "  "+strings.Repeat("─", max(0, min(40, contentWidth-4))))
			if v := dp.selectedVariable(); v != nil {
				lines = append(lines, renderVariableDetails(v)...)
			}
			lines = append(lines, "")
			lines = append(lines, renderVariableList(d.Variables, dp.varCursor)...)
		} else {
			lines = append(lines, "  No variables")
		}
	}

	// Apply scroll offset
	if dp.offset >= len(lines) {
		dp.offset = max(0, len(lines)-1)
	}
	visibleLines := lines
	if dp.offset < len(visibleLines) {
		visibleLines = visibleLines[dp.offset:]
	}
	if len(visibleLines) > dp.visibleRows() {
		visibleLines = visibleLines[:dp.visibleRows()]
	}

	var b strings.Builder
	for i, line := range visibleLines {
		b.WriteString(padRight(line, contentWidth))
		if i < len(visibleLines)-1 {
			b.WriteString("\n")
		}
	}
	// Fill empty
	for i := len(visibleLines); i < dp.visibleRows(); i++ {
		b.WriteString(strings.Repeat(" ", contentWidth))
		if i < dp.visibleRows()-1 {
			b.WriteString("\n")
		}
	}

	title := titleStyle.Render(" Details ")

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

func field(label, value string) string {
	return fmt.Sprintf("  %s %s", fieldLabelStyle.Render(label), fieldValueStyle.Render(value))
}

func renderDatasetHeader(d *datasetRow) []string {
	name := d.Name
	if d.Label != "" {
		name = fmt.Sprintf("%s (%s)", d.Name, d.Label)
	}
	lines := []string{
		field("Dataset:", name),
		field("Source:", d.Source),
	}
	if d.Type != "" {
		lines = append(lines, field("Type:", d.Type))
	}
	if d.SASVersion != "" || d.OS != "" {
		lines = append(lines, field("Written by:", strings.TrimSpace("SAS "+d.SASVersion+" "+d.OS)))
	}
	if !d.Created.IsZero() {
		lines = append(lines, field("Created:", d.Created.Format(time.DateTime)))
	}
	if !d.Modified.IsZero() {
		lines = append(lines, field("Modified:", d.Modified.Format(time.DateTime)))
	}
	lines = append(lines, field("Rows:", fmt.Sprintf("%d", d.RowCount)))

	for _, diag := range d.Diagnostics {
		msg := diag.Message
		if diag.Count > 1 {
			msg = fmt.Sprintf("%s (x%d)", msg, diag.Count)
		}
		lines = append(lines, fmt.Sprintf("  %s %s @%d: %s",
			fieldLabelStyle.Render("Diagnostic:"),
			diagnosticStyle.Render(diag.Kind), diag.Offset, msg))
	}
	return lines
}

func renderVariableDetails(v *types.VarMeta) []string {
	kind := "numeric"
	if !v.IsNumeric() {
		kind = "character"
	}
	lines := []string{
		field("Name:", v.Name),
		field("Kind:", renderKind(kind)),
		field("Length:", fmt.Sprintf("%d", v.Length)),
		field("Position:", fmt.Sprintf("%d", v.Position)),
	}
	if v.Label != "" {
		lines = append(lines, field("Label:", v.Label))
	}
	if f := v.Format.String(); f != "" {
		lines = append(lines, field("Format:", f))
	}
	if f := v.Informat.String(); f != "" {
		lines = append(lines, field("Informat:", f))
	}
	return lines
}

func renderVariableList(vars []types.VarMeta, cursor int) []string {
	lines := []string{fmt.Sprintf("  %s", fieldLabelStyle.Render("Variables:"))}
	for i, v := range vars {
		marker := " "
		if i == cursor {
			marker = ">"
		}
		kind := "N"
		if !v.IsNumeric() {
			kind = "C"
		}
		line := fmt.Sprintf("  %s %3d %-8s %s %4d  %s", marker, v.Number, v.Name, kind, v.Length, v.Label)
		if i == cursor {
			line = varSelectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (dp detailsPane) visibleRows() int {
	return max(1, dp.height-4)
}

func (dp *detailsPane) setSize(w, h int) {
	dp.width = w
	dp.height = h
}
