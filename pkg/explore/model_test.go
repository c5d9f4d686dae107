package explore

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestModel_SelectsFirstDataset(t *testing.T) {
	m := newModel(memoryData(t, sampleDataset("DM", 2), sampleDataset("AE", 1)))

	// Sorted by name: AE first
	if m.details.dataset == nil || m.details.dataset.Name != "AE" {
		t.Fatalf("expected AE selected, got %+v", m.details.dataset)
	}

	m = press(m, "j")
	if m.details.dataset.Name != "DM" {
		t.Errorf("expected DM after moving down, got %s", m.details.dataset.Name)
	}
}

func TestModel_SortCycle(t *testing.T) {
	m := newModel(memoryData(t, sampleDataset("AE", 5), sampleDataset("DM", 1)))

	m = press(m, "s") // rows ascending
	if m.datasets.sortBy != sortByRows {
		t.Fatalf("expected sort by rows, got %v", m.datasets.sortBy)
	}
	if m.datasets.rows[0].Name != "DM" {
		t.Errorf("expected DM (1 row) first, got %s", m.datasets.rows[0].Name)
	}

	m = press(m, "S")
	if m.datasets.rows[0].Name != "AE" {
		t.Errorf("expected AE first after reversing, got %s", m.datasets.rows[0].Name)
	}
}

func TestModel_PreviewOverlay(t *testing.T) {
	m := sized(t, newModel(memoryData(t, sampleDataset("DM", 2))))

	m = press(m, "o")
	if m.activeOverlay != overlayPreview {
		t.Fatal("expected preview overlay")
	}
	if !strings.Contains(m.View(), "USUBJID") {
		t.Error("expected preview to render column names")
	}

	m = press(m, "q")
	if m.activeOverlay != overlayNone {
		t.Error("expected q to close the overlay")
	}
}

func TestModel_DetailsNavigation(t *testing.T) {
	m := sized(t, newModel(memoryData(t, sampleDataset("DM", 1))))

	m = press(m, "d", "l")
	if v := m.details.selectedVariable(); v == nil || v.Name != "AGE" {
		t.Fatalf("expected AGE selected, got %+v", v)
	}
	m = press(m, "l") // already at last variable
	if m.details.varCursor != 1 {
		t.Errorf("expected cursor to stay at 1, got %d", m.details.varCursor)
	}

	view := m.View()
	if !strings.Contains(view, "Variable 2/2") {
		t.Error("expected details to show the variable position")
	}
}

func TestModel_FilterBySource(t *testing.T) {
	m := newModel(memoryData(t, sampleDataset("DM", 1), sampleDataset("AE", 1)))

	// Items: [Source header, AE source, DM source, ...]
	m.setFocus(paneFilters)
	m = press(m, "j", "x")

	if len(m.datasets.rows) != 1 || m.datasets.rows[0].Name != "AE" {
		t.Fatalf("expected only AE after filtering, got %d rows", len(m.datasets.rows))
	}
	if m.details.dataset == nil || m.details.dataset.Name != "AE" {
		t.Error("expected details to follow the filtered selection")
	}
}

func TestModel_Help(t *testing.T) {
	m := sized(t, newModel(memoryData(t, sampleDataset("DM", 1))))

	m = press(m, "?")
	if !strings.Contains(m.View(), "Interactive Dataset Browser") {
		t.Error("expected help text")
	}
	m = press(m, "?")
	if m.activeOverlay != overlayNone {
		t.Error("expected ? to close help")
	}
}
