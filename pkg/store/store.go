package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xpttools/xpt/pkg/ibm370"
	"github.com/xpttools/xpt/pkg/types"
)

// Store provides persistence for decoded datasets.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (SQLite, in-memory).
type Store interface {
	// AddDataset stores a dataset with its variables and rows and returns
	// its id. A dataset already stored under the same source and name is
	// left untouched and its existing id is returned.
	AddDataset(source string, ds *types.Dataset) (int64, error)

	// DatasetExists checks if a dataset from source has been stored.
	DatasetExists(source, name string) (bool, error)

	// GetDatasets retrieves the metadata of every stored dataset.
	GetDatasets() ([]*DatasetInfo, error)

	// GetVariables retrieves the variables of a dataset in column order.
	GetVariables(id int64) ([]types.VarMeta, error)

	// GetRows retrieves up to limit rows of a dataset (all when limit < 0).
	GetRows(id int64, limit int) ([]types.Row, error)

	// Close closes the database connection.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path is the database file path.
	// Use ":memory:" for an in-memory store (useful for testing).
	Path string
}

// DatasetInfo is the stored metadata of one dataset, without its rows.
type DatasetInfo struct {
	ID          int64              `json:"id"`
	Source      string             `json:"source"`
	Name        string             `json:"name"`
	Label       string             `json:"label,omitempty"`
	Type        string             `json:"type,omitempty"`
	SASVersion  string             `json:"sas_version,omitempty"`
	OS          string             `json:"os,omitempty"`
	Created     time.Time          `json:"created,omitempty"`
	Modified    time.Time          `json:"modified,omitempty"`
	RowCount    int                `json:"row_count"`
	Variables   int                `json:"variables"`
	Diagnostics []types.Diagnostic `json:"diagnostics,omitempty"`
}

func newDatasetInfo(id int64, source string, ds *types.Dataset) *DatasetInfo {
	return &DatasetInfo{
		ID:          id,
		Source:      source,
		Name:        ds.Name,
		Label:       ds.Label,
		Type:        ds.Type,
		SASVersion:  ds.SASVersion,
		OS:          ds.OS,
		Created:     ds.Created,
		Modified:    ds.Modified,
		RowCount:    len(ds.Rows),
		Variables:   len(ds.Variables),
		Diagnostics: ds.Diagnostics,
	}
}

// encodeRow renders a row as a JSON array. Numeric missing values are kept
// as their SAS notation (".", ".A", "._") so the special code survives.
func encodeRow(row types.Row) (string, error) {
	values := make([]interface{}, len(row))
	for i, c := range row {
		switch {
		case c.Kind == types.Character:
			values[i] = c.Str
		case c.IsMissing():
			values[i] = c.Missing.String()
		default:
			values[i] = c.Num
		}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encoding row: %w", err)
	}
	return string(data), nil
}

// decodeRow is the inverse of encodeRow; vars supplies the column kinds.
func decodeRow(data string, vars []types.VarMeta) (types.Row, error) {
	var values []interface{}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("decoding row: %w", err)
	}
	if len(values) != len(vars) {
		return nil, fmt.Errorf("row has %d cells, dataset has %d variables", len(values), len(vars))
	}
	row := make(types.Row, len(values))
	for i, v := range values {
		if !vars[i].IsNumeric() {
			s, _ := v.(string)
			row[i] = types.StringCell(s)
			continue
		}
		switch x := v.(type) {
		case float64:
			row[i] = types.NumberCell(x)
		case string:
			row[i] = types.MissingCell(parseMissing(x))
		default:
			row[i] = types.MissingCell(ibm370.Dot)
		}
	}
	return row, nil
}

func parseMissing(s string) ibm370.Missing {
	if len(s) == 2 && s[0] == '.' {
		return ibm370.Missing(s[1])
	}
	return ibm370.Dot
}
