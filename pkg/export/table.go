package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/xpttools/xpt/pkg/types"
)

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

// VariableRows renders the column listing of ds: number, name, kind,
// length, position, format, informat and label.
func VariableRows(ds *types.Dataset) [][]string {
	rows := make([][]string, 0, len(ds.Variables))
	for _, v := range ds.Variables {
		kind := "NUM"
		if !v.IsNumeric() {
			kind = "CHAR"
		}
		rows = append(rows, []string{
			strconv.Itoa(v.Number),
			v.Name,
			kind,
			strconv.Itoa(v.Length),
			strconv.Itoa(v.Position),
			v.Format.String(),
			v.Informat.String(),
			v.Label,
		})
	}
	return rows
}

// PrintVariables writes the column listing of ds as a table.
func PrintVariables(w io.Writer, ds *types.Dataset) error {
	table := newTable(w, []string{"#", "NAME", "TYPE", "LEN", "POS", "FORMAT", "INFORMAT", "LABEL"})
	for _, row := range VariableRows(ds) {
		table.Append(row)
	}
	table.Render()
	return nil
}

// PrintRows writes up to limit rows of ds as a table (all when limit < 0).
func PrintRows(w io.Writer, ds *types.Dataset, limit int) error {
	table := newTable(w, Header(ds))
	for i, row := range ds.Rows {
		if limit >= 0 && i >= limit {
			break
		}
		table.Append(row.Strings())
	}
	table.Render()
	return nil
}

// PrintDiagnostics writes the diagnostics of ds as a table.
func PrintDiagnostics(w io.Writer, ds *types.Dataset) error {
	if len(ds.Diagnostics) == 0 {
		return nil
	}
	table := newTable(w, []string{"KIND", "OFFSET", "MESSAGE"})
	for _, d := range ds.Diagnostics {
		table.Append([]string{d.Kind, fmt.Sprintf("%d", d.Offset), d.Message})
	}
	table.Render()
	return nil
}
