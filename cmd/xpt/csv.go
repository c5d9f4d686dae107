package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xpttools/xpt/pkg/export"
	"github.com/xpttools/xpt/pkg/logger"
	"github.com/xpttools/xpt/pkg/types"
)

var (
	csvDataset string
	csvOut     string
)

var csvCmd = &cobra.Command{
	Use:   "csv <input>",
	Short: "Convert a dataset to CSV",
	Long: `Write every row of one dataset as CSV with a header line. Missing
numeric values are written as empty fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runCSV,
}

func init() {
	csvCmd.Flags().StringVar(&csvDataset, "dataset", "", "Dataset index (1-based) or name (default: first)")
	csvCmd.Flags().StringVarP(&csvOut, "out", "o", "", "Output file (default: stdout)")
}

func runCSV(cmd *cobra.Command, args []string) error {
	t, err := loadTransport(commandContext(cmd), args[0], 0)
	if err != nil {
		return err
	}
	ds, err := types.Select(t.Datasets, csvDataset)
	if err != nil {
		return err
	}

	if csvOut == "" {
		return export.WriteCSV(cmd.OutOrStdout(), ds)
	}

	f, err := os.Create(csvOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", csvOut, err)
	}
	if err := export.WriteCSV(f, ds); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", csvOut, err)
	}
	logger.L().Info("wrote csv", "dataset", ds.Name, "rows", len(ds.Rows), "path", csvOut)
	return nil
}
