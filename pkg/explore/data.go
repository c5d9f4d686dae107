package explore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xpttools/xpt/pkg/export"
	"github.com/xpttools/xpt/pkg/store"
	"github.com/xpttools/xpt/pkg/types"
)

// DefaultStoreFile is the database name looked up when a directory is given.
const DefaultStoreFile = "xpt.db"

// previewRows caps the rows loaded for the preview overlay.
const previewRows = 500

// exploreData holds all loaded data for the TUI.
type exploreData struct {
	store    store.Store
	datasets []*datasetRow
}

// loadData opens a store and loads every dataset with its variables.
// The storePath can be a directory holding xpt.db or a direct .db file path.
func loadData(storePath string) (*exploreData, error) {
	info, err := os.Stat(storePath)
	if err != nil {
		return nil, fmt.Errorf("store not found: %s", storePath)
	}
	if info.IsDir() {
		storePath = filepath.Join(storePath, DefaultStoreFile)
	}

	s, err := store.New(store.Config{Path: storePath})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	d, err := newExploreData(s)
	if err != nil {
		s.Close()
		return nil, err
	}
	return d, nil
}

// newExploreData builds the view models from an open store.
func newExploreData(s store.Store) (*exploreData, error) {
	infos, err := s.GetDatasets()
	if err != nil {
		return nil, fmt.Errorf("retrieving datasets: %w", err)
	}

	rows := make([]*datasetRow, 0, len(infos))
	for _, info := range infos {
		vars, err := s.GetVariables(info.ID)
		if err != nil {
			return nil, fmt.Errorf("retrieving variables of %s: %w", info.Name, err)
		}
		rows = append(rows, buildDatasetRow(info, vars))
	}

	return &exploreData{store: s, datasets: rows}, nil
}

// buildDatasetRow creates a datasetRow from stored metadata.
func buildDatasetRow(info *store.DatasetInfo, vars []types.VarMeta) *datasetRow {
	row := &datasetRow{
		ID:          info.ID,
		Name:        info.Name,
		Label:       info.Label,
		Source:      info.Source,
		Type:        info.Type,
		SASVersion:  info.SASVersion,
		OS:          info.OS,
		Created:     info.Created,
		Modified:    info.Modified,
		RowCount:    info.RowCount,
		Diagnostics: info.Diagnostics,
		Variables:   vars,
	}
	for _, d := range info.Diagnostics {
		row.DiagnosticKinds = append(row.DiagnosticKinds, d.Kind)
	}
	return row
}

// dataset rebuilds a types.Dataset holding at most limit rows of r.
func (d *exploreData) dataset(r *datasetRow, limit int) (*types.Dataset, error) {
	rows, err := d.store.GetRows(r.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieving rows of %s: %w", r.Name, err)
	}
	return &types.Dataset{
		Name:      r.Name,
		Label:     r.Label,
		Variables: r.Variables,
		Rows:      rows,
	}, nil
}

// preview renders the first rows of r as a plain table.
func (d *exploreData) preview(r *datasetRow) (string, error) {
	ds, err := d.dataset(r, previewRows)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := export.PrintRows(&buf, ds, previewRows); err != nil {
		return "", err
	}
	if r.RowCount > previewRows {
		fmt.Fprintf(&buf, "\n  ... %d more rows\n", r.RowCount-previewRows)
	}
	return buf.String(), nil
}

// close closes the underlying store.
func (d *exploreData) close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
