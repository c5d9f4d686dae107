package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xpttools/xpt/pkg/store"
)

// focusedPane tracks which pane has keyboard focus.
type focusedPane int

const (
	paneFilters focusedPane = iota
	paneDatasets
	paneDetails
)

// overlay tracks which modal overlay is active.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayPreview
)

// Model is the root Bubble Tea model for the explore TUI.
type Model struct {
	data     *exploreData
	filters  filterPane
	datasets datasetsPane
	details  detailsPane

	focus         focusedPane
	activeOverlay overlay
	showFilters   bool

	// Help state
	helpContent string
	helpOffset  int

	// Row preview state
	previewTitle   string
	previewContent string
	previewOffset  int

	width  int
	height int
}

// New creates a new Model by loading datasets from the given store path.
func New(storePath string) (Model, error) {
	data, err := loadData(storePath)
	if err != nil {
		return Model{}, err
	}
	return newModel(data), nil
}

// NewFromStore creates a Model over an already open store. The model owns
// s from then on and closes it in Close.
func NewFromStore(s store.Store) (Model, error) {
	data, err := newExploreData(s)
	if err != nil {
		return Model{}, err
	}
	return newModel(data), nil
}

func newModel(data *exploreData) Model {
	m := Model{
		data:        data,
		filters:     newFilterPane(buildFacets(data.datasets)),
		datasets:    newDatasetsPane(data.datasets),
		details:     newDetailsPane(),
		focus:       paneDatasets,
		showFilters: true,
	}

	m.datasets.focused = true
	if d := m.datasets.selectedDataset(); d != nil {
		m.details.setDataset(d)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("xpt explore")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.MouseMsg:
		if m.activeOverlay != overlayNone {
			return m, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.handleMouseClick(msg.X, msg.Y)
		return m, nil

	case tea.KeyMsg:
		// Handle overlays first
		if m.activeOverlay != overlayNone {
			return m.updateOverlay(msg)
		}

		// Global keys (work regardless of focus)
		switch {
		case keyMatches(msg, defaultKeys.ForceQuit):
			return m, tea.Quit
		case keyMatches(msg, defaultKeys.Quit):
			return m, tea.Quit
		case keyMatches(msg, defaultKeys.ToggleHelp):
			m.activeOverlay = overlayHelp
			m.helpOffset = 0
			m.helpContent = renderHelp()
			return m, nil
		case keyMatches(msg, defaultKeys.ToggleFilters):
			m.showFilters = !m.showFilters
			if !m.showFilters && m.focus == paneFilters {
				m.setFocus(paneDatasets)
			}
			return m, nil
		case keyMatches(msg, defaultKeys.FocusFilters):
			m.setFocus(paneFilters)
			return m, nil
		case keyMatches(msg, defaultKeys.FocusDatasets):
			m.setFocus(paneDatasets)
			return m, nil
		case keyMatches(msg, defaultKeys.FocusDetails):
			m.setFocus(paneDetails)
			return m, nil
		}

		if m.focus != paneFilters && keyMatches(msg, defaultKeys.Preview) {
			m.openPreview()
			return m, nil
		}

		// Delegate to focused pane
		switch m.focus {
		case paneFilters:
			var cmd tea.Cmd
			m.filters, cmd = m.filters.Update(msg)
			m.applyFilters()
			return m, cmd
		case paneDatasets:
			prev := m.datasets.selectedDataset()
			var cmd tea.Cmd
			m.datasets, cmd = m.datasets.Update(msg)
			if d := m.datasets.selectedDataset(); d != prev {
				m.details.setDataset(d)
			}
			return m, cmd
		case paneDetails:
			var cmd tea.Cmd
			m.details, cmd = m.details.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var offset *int
	closeKey := defaultKeys.ToggleHelp
	switch m.activeOverlay {
	case overlayHelp:
		offset = &m.helpOffset
	case overlayPreview:
		offset = &m.previewOffset
		closeKey = defaultKeys.Preview
	default:
		return m, nil
	}

	switch {
	case keyMatches(msg, defaultKeys.Quit),
		keyMatches(msg, defaultKeys.ForceQuit),
		keyMatches(msg, closeKey),
		msg.String() == "esc":
		m.activeOverlay = overlayNone
	case keyMatches(msg, defaultKeys.Down):
		*offset++
	case keyMatches(msg, defaultKeys.Up):
		if *offset > 0 {
			*offset--
		}
	case keyMatches(msg, defaultKeys.PageDown):
		*offset += m.height / 2
	case keyMatches(msg, defaultKeys.PageUp):
		*offset = max(0, *offset-m.height/2)
	case keyMatches(msg, defaultKeys.Home):
		*offset = 0
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.activeOverlay != overlayNone {
		return m.renderOverlay()
	}

	statusBar := m.renderStatusBar()

	contentHeight := m.height - 2 // status bar + padding
	datasetsHeight := contentHeight * 40 / 100
	detailsHeight := contentHeight - datasetsHeight

	dataWidth := m.width
	if m.showFilters {
		filtersWidth := m.filtersWidth()
		dataWidth = m.width - filtersWidth
		m.filters.setSize(filtersWidth, contentHeight)
	}
	m.datasets.setSize(dataWidth, datasetsHeight)
	m.details.setSize(dataWidth, detailsHeight)

	mainContent := lipgloss.JoinVertical(lipgloss.Left, m.datasets.View(), m.details.View())
	if m.showFilters {
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, m.filters.View(), mainContent)
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) filtersWidth() int {
	return min(m.width*30/100, 50)
}

func (m *Model) renderStatusBar() string {
	var rows int
	for _, d := range m.datasets.rows {
		rows += d.RowCount
	}
	left := statusBarStyle.Render(fmt.Sprintf(" %d datasets | %d shown | %d rows",
		len(m.data.datasets), len(m.datasets.rows), rows))

	right := fmt.Sprintf("%s:%s  %s:%s  %s:%s  %s:%s  %s:%s  %s:%s",
		helpKeyStyle.Render("j/k"), helpDescStyle.Render("nav"),
		helpKeyStyle.Render("f/d"), helpDescStyle.Render("focus"),
		helpKeyStyle.Render("s"), helpDescStyle.Render("sort"),
		helpKeyStyle.Render("o"), helpDescStyle.Render("rows"),
		helpKeyStyle.Render("F7"), helpDescStyle.Render("filters"),
		helpKeyStyle.Render("?"), helpDescStyle.Render("help"),
	)

	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) renderOverlay() string {
	overlayWidth := m.width * 90 / 100
	overlayHeight := m.height * 80 / 100

	var title, content string
	switch m.activeOverlay {
	case overlayHelp:
		title = " Help (q to close) "
		content = scrollLines(m.helpContent, &m.helpOffset, overlayHeight-4)
	case overlayPreview:
		title = fmt.Sprintf(" %s (q to close) ", m.previewTitle)
		content = scrollLines(m.previewContent, &m.previewOffset, overlayHeight-4)
	}

	box := modalStyle.
		Width(overlayWidth - 4).
		Height(overlayHeight - 2).
		Render(content)

	overlayView := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), box)

	// Center on screen
	hPad := (m.width - lipgloss.Width(overlayView)) / 2
	vPad := (m.height - lipgloss.Height(overlayView)) / 2

	return strings.Repeat("\n", max(0, vPad)) +
		lipgloss.NewStyle().PaddingLeft(max(0, hPad)).Render(overlayView)
}

// scrollLines returns the window of text starting at *offset, clamping it.
func scrollLines(text string, offset *int, height int) string {
	lines := strings.Split(text, "\n")
	if *offset >= len(lines) {
		*offset = max(0, len(lines)-1)
	}
	end := min(*offset+max(1, height), len(lines))
	return strings.Join(lines[*offset:end], "\n")
}

func (m *Model) setFocus(p focusedPane) {
	m.filters.focused = p == paneFilters
	m.datasets.focused = p == paneDatasets
	m.details.focused = p == paneDetails
	m.focus = p
}

func (m *Model) handleMouseClick(x, y int) {
	contentHeight := m.height - 2
	datasetsHeight := contentHeight * 40 / 100

	left := 0
	if m.showFilters {
		left = m.filtersWidth()
		if x < left && y < contentHeight {
			m.setFocus(paneFilters)
			row := y - 2 // title + border top
			if row >= 0 {
				idx := row + m.filters.top
				if idx < len(m.filters.rows) {
					m.filters.cursor = idx
					m.filters.toggleCurrent()
					m.applyFilters()
				}
			}
			return
		}
	}

	if x >= left && y < datasetsHeight {
		m.setFocus(paneDatasets)
		row := y - 4 // title + border top + header + separator
		if row >= 0 {
			idx := row + m.datasets.offset
			if idx < len(m.datasets.rows) {
				m.datasets.cursor = idx
				m.details.setDataset(m.datasets.selectedDataset())
			}
		}
	} else if x >= left {
		m.setFocus(paneDetails)
	}
}

func (m *Model) applyFilters() {
	if !m.filters.facets.hasActiveFilters() {
		m.datasets.setFilteredRows(m.data.datasets)
	} else {
		var filtered []*datasetRow
		for _, d := range m.data.datasets {
			if m.filters.facets.matchesDataset(d) {
				filtered = append(filtered, d)
			}
		}
		m.datasets.setFilteredRows(filtered)
	}
	m.filters.facets.updateCounts(m.data.datasets)

	if d := m.datasets.selectedDataset(); d != m.details.dataset {
		m.details.setDataset(d)
	}
}

func (m *Model) openPreview() {
	d := m.datasets.selectedDataset()
	if d == nil {
		return
	}

	m.previewTitle = "Rows of " + d.Name
	content, err := m.data.preview(d)
	if err != nil {
		content = "  " + err.Error()
	} else if d.RowCount == 0 {
		content = "  No rows"
	}
	m.previewContent = content
	m.previewOffset = 0
	m.activeOverlay = overlayPreview
}

// Close releases resources held by the model.
func (m *Model) Close() error {
	if m.data != nil {
		return m.data.close()
	}
	return nil
}

// renderHelp generates help text.
func renderHelp() string {
	return `xpt explore - Interactive Dataset Browser

NAVIGATION
  j/k or Up/Down    Move cursor up/down (scroll in details)
  h/l or Left/Right Previous/next variable (details)
  Ctrl+f/Ctrl+b     Page down/up
  g/G               Jump to top/bottom

FOCUS
  F1                Focus filters pane
  f                 Focus datasets pane
  d                 Focus details pane
  F7                Toggle filters pane visibility

FILTERS
  x or Space        Toggle filter value, collapse/expand facet
  Ctrl+r            Reset all filters

VIEWS
  s                 Cycle sort column
  S                 Reverse sort order
  o or p            Preview rows of the selected dataset
  ?                 Toggle this help screen

QUIT
  q                 Quit
  Ctrl+c            Force quit
`
}
