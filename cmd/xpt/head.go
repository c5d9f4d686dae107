package main

import (
	"github.com/spf13/cobra"

	"github.com/xpttools/xpt/pkg/export"
	"github.com/xpttools/xpt/pkg/types"
)

var (
	headRows    int
	headDataset string
	headTable   bool
)

var headCmd = &cobra.Command{
	Use:   "head <input>",
	Short: "Print the first rows of a dataset",
	Long: `Print the first rows of one dataset as tab-separated text with a header
line. Missing numeric values print as empty fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runHead,
}

func init() {
	headCmd.Flags().IntVarP(&headRows, "rows", "n", 10, "Number of rows to print")
	headCmd.Flags().StringVar(&headDataset, "dataset", "", "Dataset index (1-based) or name (default: first)")
	headCmd.Flags().BoolVar(&headTable, "table", false, "Print an aligned table instead of TSV")
}

func runHead(cmd *cobra.Command, args []string) error {
	t, err := loadTransport(commandContext(cmd), args[0], headRows)
	if err != nil {
		return err
	}
	ds, err := types.Select(t.Datasets, headDataset)
	if err != nil {
		return err
	}

	if headTable {
		return export.PrintRows(cmd.OutOrStdout(), ds, headRows)
	}
	return export.WriteTSV(cmd.OutOrStdout(), ds, headRows)
}
