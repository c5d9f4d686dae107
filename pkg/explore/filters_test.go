package explore

import (
	"strings"
	"testing"
)

func TestShortSource(t *testing.T) {
	tests := []struct {
		in       string
		max      int
		expected string
	}{
		{"dm.xpt", 20, "dm.xpt"},
		{"s3://bucket/study/sdtm/dm.xpt", 12, ".../dm.xpt"},
		{"s3://bucket/study/sdtm/adverse_events.xpt", 12, "...vents.xpt"},
		{"dm.xpt", 0, ""},
	}
	for _, tt := range tests {
		if got := shortSource(tt.in, tt.max); got != tt.expected {
			t.Errorf("shortSource(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.expected)
		}
	}
}

func TestFilterPane_FoldKeepsCursorOnHeading(t *testing.T) {
	fp := newFilterPane(buildFacets([]*datasetRow{
		{Name: "DM", Source: "a.xpt", Type: "DATA"},
		{Name: "AE", Source: "b.xpt"},
	}))
	fp.setSize(30, 20)
	before := len(fp.rows)

	fp.toggleCurrent() // fold Source

	if len(fp.rows) != before-2 {
		t.Fatalf("expected the two sources hidden, got %d rows from %d", len(fp.rows), before)
	}
	if !fp.rows[fp.cursor].heading() || fp.rows[fp.cursor].facet != facetSource {
		t.Errorf("expected cursor on the Source heading, got %+v", fp.rows[fp.cursor])
	}

	fp.toggleCurrent() // unfold
	if len(fp.rows) != before {
		t.Errorf("expected %d rows after unfolding, got %d", before, len(fp.rows))
	}
}

func TestFilterPane_ValueLineShowsCount(t *testing.T) {
	fp := newFilterPane(buildFacets([]*datasetRow{
		{Name: "DM", Source: "a.xpt"},
		{Name: "AE", Source: "a.xpt"},
	}))
	fp.setSize(30, 10)

	line := stripAnsi(fp.valueLine(fp.rows[1], 28))

	if !strings.Contains(line, "a.xpt") || !strings.HasSuffix(line, "2") {
		t.Errorf("expected source and its count, got %q", line)
	}

	fp.cursor = 1
	fp.toggleCurrent()
	if !fp.rows[1].value.Selected {
		t.Error("expected value selected after toggle")
	}
	if got := stripAnsi(fp.headingLine(fp.rows[0])); !strings.Contains(got, "[1]") {
		t.Errorf("expected heading to count the selection, got %q", got)
	}
}
