package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xpttools/xpt/pkg/export"
	"github.com/xpttools/xpt/pkg/logger"
	"github.com/xpttools/xpt/pkg/store"
	"github.com/xpttools/xpt/pkg/types"
)

var (
	exportTo          string
	exportOut         string
	exportDSN         string
	exportTablePrefix string
	exportDataset     string
)

var exportCmd = &cobra.Command{
	Use:   "export <input>",
	Short: "Export datasets to another format",
	Long: `Export the datasets of a transport file.

Targets:
  sqlite    every dataset into a SQLite database (--out, default xpt.db)
  postgres  one table per dataset via COPY (--dsn, --table-prefix)
  parquet   one dataset as a Parquet file (--out, --dataset)
  json      every dataset including rows (--out or stdout)
  yaml      dataset metadata (--out or stdout)`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportTo, "to", "json", "Target: sqlite, postgres, parquet, json, yaml")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path")
	exportCmd.Flags().StringVar(&exportDSN, "dsn", "", "Postgres connection string (postgres target)")
	exportCmd.Flags().StringVar(&exportTablePrefix, "table-prefix", "", "Prefix for Postgres table names")
	exportCmd.Flags().StringVar(&exportDataset, "dataset", "", "Dataset index (1-based) or name for parquet (default: first)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	location := args[0]

	t, err := loadTransport(ctx, location, 0)
	if err != nil {
		return err
	}

	switch exportTo {
	case "sqlite":
		return exportSQLite(cmd, location, t.Datasets)
	case "postgres":
		return exportPostgres(ctx, cmd, t.Datasets)
	case "parquet":
		ds, err := types.Select(t.Datasets, exportDataset)
		if err != nil {
			return err
		}
		if exportOut == "" {
			return fmt.Errorf("--out is required for parquet")
		}
		return writeFile(exportOut, func(w io.Writer) error { return export.WriteParquet(w, ds) })
	case "json":
		return writeOutput(cmd, func(w io.Writer) error { return export.WriteJSON(w, t.Datasets) })
	case "yaml":
		return writeOutput(cmd, func(w io.Writer) error { return export.WriteYAML(w, t.Datasets) })
	default:
		return fmt.Errorf("unknown export target: %s", exportTo)
	}
}

func exportSQLite(cmd *cobra.Command, location string, datasets []*types.Dataset) error {
	path := exportOut
	if path == "" {
		path = "xpt.db"
	}
	s, err := store.New(store.Config{Path: path})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	for _, ds := range datasets {
		if _, err := s.AddDataset(location, ds); err != nil {
			return fmt.Errorf("storing %s: %w", ds.Name, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d datasets to %s\n", len(datasets), path)
	return nil
}

func exportPostgres(ctx context.Context, cmd *cobra.Command, datasets []*types.Dataset) error {
	if exportDSN == "" {
		return fmt.Errorf("--dsn is required for postgres")
	}
	sink, err := store.NewPostgres(ctx, exportDSN, logger.L())
	if err != nil {
		return err
	}
	defer sink.Close()

	for _, ds := range datasets {
		table := store.TableName(exportTablePrefix, ds)
		n, err := sink.WriteDataset(ctx, table, ds)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows\n", table, n)
	}
	return nil
}

// writeOutput writes to --out when set, stdout otherwise.
func writeOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	if exportOut == "" {
		return write(cmd.OutOrStdout())
	}
	return writeFile(exportOut, write)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	logger.L().Info("wrote export", "path", path, "target", exportTo)
	return nil
}
