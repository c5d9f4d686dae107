package explore

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xpttools/xpt/pkg/store"
	"github.com/xpttools/xpt/pkg/types"
)

func sampleDataset(name string, rows int) *types.Dataset {
	ds := &types.Dataset{
		Name:  name,
		Label: name + " label",
		Type:  "DATA",
		Variables: []types.VarMeta{
			{Name: "USUBJID", Kind: types.Character, Length: 8, Number: 1},
			{Name: "AGE", Kind: types.Numeric, Length: 8, Number: 2, Position: 8},
		},
		Diagnostics: []types.Diagnostic{{Kind: "padded_stride", Offset: 1040, Message: "rows padded to 16 bytes"}},
	}
	for i := 0; i < rows; i++ {
		ds.Rows = append(ds.Rows, types.Row{types.StringCell("S" + strings.Repeat("0", i+1)), types.NumberCell(float64(40 + i))})
	}
	return ds
}

func memoryData(t *testing.T, datasets ...*types.Dataset) *exploreData {
	t.Helper()
	s, err := store.New(store.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	for _, ds := range datasets {
		if _, err := s.AddDataset("study/"+ds.Name+".xpt", ds); err != nil {
			t.Fatalf("AddDataset: %v", err)
		}
	}
	d, err := newExploreData(s)
	if err != nil {
		t.Fatalf("newExploreData: %v", err)
	}
	t.Cleanup(func() { d.close() })
	return d
}

func TestBuildDatasetRow(t *testing.T) {
	info := &store.DatasetInfo{
		ID:       7,
		Source:   "dm.xpt",
		Name:     "DM",
		Label:    "Demographics",
		RowCount: 12,
		Diagnostics: []types.Diagnostic{
			{Kind: "padded_stride"},
			{Kind: "count_mismatch"},
		},
	}
	vars := []types.VarMeta{{Name: "USUBJID"}, {Name: "AGE"}}

	row := buildDatasetRow(info, vars)

	if row.ID != 7 || row.Name != "DM" {
		t.Errorf("unexpected identity %d/%s", row.ID, row.Name)
	}
	if row.RowCount != 12 {
		t.Errorf("expected 12 rows, got %d", row.RowCount)
	}
	if len(row.Variables) != 2 {
		t.Errorf("expected 2 variables, got %d", len(row.Variables))
	}
	if len(row.DiagnosticKinds) != 2 || row.DiagnosticKinds[1] != "count_mismatch" {
		t.Errorf("unexpected diagnostic kinds %v", row.DiagnosticKinds)
	}
}

func TestNewExploreData(t *testing.T) {
	d := memoryData(t, sampleDataset("DM", 3), sampleDataset("AE", 1))

	if len(d.datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(d.datasets))
	}
	dm := d.datasets[0]
	if dm.Name != "DM" || dm.Source != "study/DM.xpt" {
		t.Errorf("unexpected first dataset %s from %s", dm.Name, dm.Source)
	}
	if len(dm.Variables) != 2 || dm.Variables[1].Name != "AGE" {
		t.Errorf("expected variables loaded in order, got %v", dm.Variables)
	}
	if dm.RowCount != 3 {
		t.Errorf("expected 3 rows, got %d", dm.RowCount)
	}
}

func TestPreview(t *testing.T) {
	d := memoryData(t, sampleDataset("DM", 2))

	out, err := d.preview(d.datasets[0])
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	for _, want := range []string{"USUBJID", "AGE", "S0", "S00", "41"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected preview to contain %q:\n%s", want, out)
		}
	}
}

func TestPreview_Truncated(t *testing.T) {
	d := memoryData(t, sampleDataset("DM", 1))
	row := d.datasets[0]
	row.RowCount = previewRows + 5

	out, err := d.preview(row)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(out, "5 more rows") {
		t.Errorf("expected truncation notice, got:\n%s", out)
	}
}

func TestLoadData_Directory(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(store.Config{Path: filepath.Join(dir, DefaultStoreFile)})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	if _, err := s.AddDataset("dm.xpt", sampleDataset("DM", 1)); err != nil {
		t.Fatalf("AddDataset: %v", err)
	}
	s.Close()

	d, err := loadData(dir)
	if err != nil {
		t.Fatalf("loadData: %v", err)
	}
	defer d.close()

	if len(d.datasets) != 1 || d.datasets[0].Name != "DM" {
		t.Errorf("expected DM loaded from directory, got %d datasets", len(d.datasets))
	}
}

func TestLoadData_Missing(t *testing.T) {
	if _, err := loadData(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Error("expected error for missing store")
	}
}

func TestTruncateLeft(t *testing.T) {
	tests := []struct {
		in       string
		max      int
		expected string
	}{
		{"short", 10, "short"},
		{"/very/long/path/dm.xpt", 10, ".../dm.xpt"},
		{"abcdef", 3, "def"},
		{"abc", 0, ""},
	}

	for _, tt := range tests {
		if got := truncateLeft(tt.in, tt.max); got != tt.expected {
			t.Errorf("truncateLeft(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.expected)
		}
	}
}
