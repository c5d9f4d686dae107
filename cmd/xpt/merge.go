package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xpttools/xpt/pkg/store"
)

var (
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source1.db> <source2.db> [source3.db...]",
	Short: "Merge multiple xpt databases",
	Long: `Merge multiple databases written by "xpt scan" or "xpt export --to sqlite"
into a single output database.

This is useful for combining results from scans of different directories
or machines. Deduplication is automatic: a dataset with the same source
and name is only stored once in the merged database.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
}

func runMerge(cmd *cobra.Command, args []string) error {
	stats, err := store.Merge(store.MergeConfig{
		SourcePaths: args,
		DestPath:    mergeOutput,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merge complete:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Sources processed: %d\n", stats.SourcesProcessed)
	fmt.Fprintf(cmd.OutOrStdout(), "  Datasets merged: %d\n", stats.DatasetsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Datasets skipped: %d\n", stats.DatasetsSkipped)
	fmt.Fprintf(cmd.OutOrStdout(), "  Variables merged: %d\n", stats.VariablesMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Rows merged: %d\n", stats.RowsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", mergeOutput)

	return nil
}
