package explore

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#2F6DB5") // blue
	colorSecondary = lipgloss.Color("10")      // green
	colorWarn      = lipgloss.Color("#D4AF37") // gold
	colorMuted     = lipgloss.Color("8")       // gray
	colorAccent    = lipgloss.Color("#11C3DB") // cyan
	colorHighlight = lipgloss.Color("15")      // white
)

// Pane border styles
var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted)
)

// Title style for pane headers
var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Background(colorPrimary).
	Padding(0, 1)

// Table row styles
var (
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("17")).
				Foreground(colorHighlight)

	headerRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)
)

// Variable styles
var (
	numericStyle     = lipgloss.NewStyle().Foreground(colorAccent)
	characterStyle   = lipgloss.NewStyle().Foreground(colorSecondary)
	varSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHighlight)
)

var diagnosticStyle = lipgloss.NewStyle().
	Foreground(colorWarn).
	Bold(true)

// Status bar
var statusBarStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// Help styles
var (
	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// Facet styles
var (
	facetLabelStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	facetSelectedStyle = lipgloss.NewStyle().Foreground(colorSecondary)
	facetCountStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

// Detail field styles
var (
	fieldLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	fieldValueStyle = lipgloss.NewStyle().Foreground(colorHighlight)
)

// Modal overlay style
var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// renderKind returns a styled string for a variable kind.
func renderKind(kind string) string {
	switch kind {
	case "numeric":
		return numericStyle.Render(kind)
	case "character":
		return characterStyle.Render(kind)
	default:
		return kind
	}
}

// renderDiagnosticCount returns a styled diagnostic count, blank for zero.
func renderDiagnosticCount(n int) string {
	if n == 0 {
		return ""
	}
	return diagnosticStyle.Render(fmt.Sprintf("%d", n))
}
