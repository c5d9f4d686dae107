package explore

import (
	"sort"
	"time"

	"github.com/xpttools/xpt/pkg/types"
)

// facetID identifies a facet category.
type facetID int

const (
	facetSource facetID = iota
	facetType
	facetDiagnostic
)

// noneValue stands for "no value" in a facet (no type, no diagnostics).
const noneValue = "-"

// facetDef defines a facet category.
type facetDef struct {
	ID    facetID
	Label string
}

var facetDefs = []facetDef{
	{facetSource, "Source"},
	{facetType, "Type"},
	{facetDiagnostic, "Diagnostics"},
}

// facetValue is a single selectable value within a facet.
type facetValue struct {
	FacetID  facetID
	Value    string
	Count    int
	Selected bool
}

// facetState holds the complete filter state.
type facetState struct {
	Values map[facetID][]*facetValue
}

func newFacetState() *facetState {
	return &facetState{
		Values: make(map[facetID][]*facetValue),
	}
}

// facetValuesOf returns the values a dataset contributes to a facet.
func facetValuesOf(id facetID, d *datasetRow) []string {
	switch id {
	case facetSource:
		return []string{d.Source}
	case facetType:
		if d.Type == "" {
			return []string{noneValue}
		}
		return []string{d.Type}
	case facetDiagnostic:
		if len(d.DiagnosticKinds) == 0 {
			return []string{noneValue}
		}
		return uniqueStrings(d.DiagnosticKinds)
	}
	return nil
}

// buildFacets builds facet values from the loaded datasets.
func buildFacets(datasets []*datasetRow) *facetState {
	fs := newFacetState()

	for _, def := range facetDefs {
		counts := make(map[string]int)
		for _, d := range datasets {
			for _, v := range facetValuesOf(def.ID, d) {
				counts[v]++
			}
		}
		fs.Values[def.ID] = mapToFacetValues(def.ID, counts)
	}

	return fs
}

func mapToFacetValues(id facetID, counts map[string]int) []*facetValue {
	values := make([]*facetValue, 0, len(counts))
	for v, c := range counts {
		values = append(values, &facetValue{FacetID: id, Value: v, Count: c})
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].Value < values[j].Value
	})
	return values
}

// selectedValues returns the set of selected values for a facet.
func (fs *facetState) selectedValues(id facetID) map[string]bool {
	selected := make(map[string]bool)
	for _, v := range fs.Values[id] {
		if v.Selected {
			selected[v.Value] = true
		}
	}
	return selected
}

// hasActiveFilters returns true if any facet has selections.
func (fs *facetState) hasActiveFilters() bool {
	for _, values := range fs.Values {
		for _, v := range values {
			if v.Selected {
				return true
			}
		}
	}
	return false
}

// resetAll deselects all facet values.
func (fs *facetState) resetAll() {
	for _, values := range fs.Values {
		for _, v := range values {
			v.Selected = false
		}
	}
}

// matchesDataset returns true if a dataset passes all active filters.
// Within a facet: OR (union). Across facets: AND (intersection).
func (fs *facetState) matchesDataset(d *datasetRow) bool {
	for _, def := range facetDefs {
		selected := fs.selectedValues(def.ID)
		if len(selected) == 0 {
			continue // no filter active for this facet
		}

		found := false
		for _, v := range facetValuesOf(def.ID, d) {
			if selected[v] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// updateCounts recounts facet values based on currently visible datasets.
func (fs *facetState) updateCounts(datasets []*datasetRow) {
	for _, values := range fs.Values {
		for _, v := range values {
			v.Count = 0
		}
	}

	for _, d := range datasets {
		if !fs.matchesDataset(d) {
			continue
		}
		for _, def := range facetDefs {
			for _, val := range facetValuesOf(def.ID, d) {
				for _, v := range fs.Values[def.ID] {
					if v.Value == val {
						v.Count++
					}
				}
			}
		}
	}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// datasetRow is the denormalized view model for a dataset in the TUI.
// Built from store.DatasetInfo plus the dataset's variables.
type datasetRow struct {
	ID              int64
	Name            string
	Label           string
	Source          string
	Type            string
	SASVersion      string
	OS              string
	Created         time.Time
	Modified        time.Time
	RowCount        int
	Diagnostics     []types.Diagnostic
	DiagnosticKinds []string
	Variables       []types.VarMeta
}
