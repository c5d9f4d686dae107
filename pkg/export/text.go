// Package export writes decoded datasets in other formats: delimited text,
// JSON, YAML, console tables, Arrow records and Parquet files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/xpttools/xpt/pkg/types"
)

// Header returns the variable names of ds.
func Header(ds *types.Dataset) []string {
	names := make([]string, len(ds.Variables))
	for i, v := range ds.Variables {
		names[i] = v.Name
	}
	return names
}

// WriteCSV writes ds with a header line. Missing numerics are empty fields.
func WriteCSV(w io.Writer, ds *types.Dataset) error {
	return writeDelimited(w, ds, ',', -1)
}

// WriteTSV writes the first limit rows of ds as tab-separated text
// (every row when limit < 0).
func WriteTSV(w io.Writer, ds *types.Dataset, limit int) error {
	return writeDelimited(w, ds, '\t', limit)
}

func writeDelimited(w io.Writer, ds *types.Dataset, comma rune, limit int) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(Header(ds)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range ds.Rows {
		if limit >= 0 && i >= limit {
			break
		}
		if err := cw.Write(row.Strings()); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes datasets including their rows.
func WriteJSON(w io.Writer, datasets []*types.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(datasets); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes the metadata of datasets; rows are left out.
func WriteYAML(w io.Writer, datasets []*types.Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(datasets); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
