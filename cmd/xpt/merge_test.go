package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpttools/xpt/pkg/store"
	"github.com/xpttools/xpt/pkg/types"
)

// newMergeCmd creates a fresh merge command for testing
func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "merge <source1.db> <source2.db> [source3.db...]",
		Args: cobra.MinimumNArgs(2),
		RunE: runMerge,
	}
	cmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
	return cmd
}

func dataset(name string) *types.Dataset {
	return &types.Dataset{
		Name: name,
		Variables: []types.VarMeta{
			{Name: "USUBJID", Kind: types.Character, Length: 6, Number: 1},
			{Name: "AGE", Kind: types.Numeric, Length: 8, Number: 2, Position: 6},
		},
		Rows: []types.Row{
			{types.StringCell("S-001"), types.NumberCell(54)},
		},
	}
}

func writeStore(t *testing.T, path, source string, datasets ...*types.Dataset) {
	t.Helper()
	s, err := store.NewSQLite(path)
	require.NoError(t, err)
	for _, ds := range datasets {
		_, err := s.AddDataset(source, ds)
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())
}

func TestMergeCmd_RequiresMinimumArgs(t *testing.T) {
	cmd := newMergeCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")

	cmd = newMergeCmd()
	cmd.SetArgs([]string{"source1.db"})
	err = cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")
}

func TestMergeCmd_MergesTwoDatabases(t *testing.T) {
	tmpDir := t.TempDir()

	source1Path := filepath.Join(tmpDir, "source1.db")
	writeStore(t, source1Path, "a/dm.xpt", dataset("DM"))
	source2Path := filepath.Join(tmpDir, "source2.db")
	writeStore(t, source2Path, "b/ae.xpt", dataset("AE"))

	destPath := filepath.Join(tmpDir, "merged.db")
	var buf bytes.Buffer
	cmd := newMergeCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{source1Path, source2Path, "--output", destPath})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Merge complete")
	assert.Contains(t, output, "Sources processed: 2")
	assert.Contains(t, output, "Datasets merged: 2")
	assert.Contains(t, output, "Rows merged: 2")

	dest, err := store.NewSQLite(destPath)
	require.NoError(t, err)
	defer dest.Close()

	exists1, _ := dest.DatasetExists("a/dm.xpt", "DM")
	exists2, _ := dest.DatasetExists("b/ae.xpt", "AE")
	assert.True(t, exists1)
	assert.True(t, exists2)
}

func TestMergeCmd_ReportsDeduplication(t *testing.T) {
	tmpDir := t.TempDir()

	source1Path := filepath.Join(tmpDir, "source1.db")
	writeStore(t, source1Path, "dm.xpt", dataset("DM"))
	source2Path := filepath.Join(tmpDir, "source2.db")
	writeStore(t, source2Path, "dm.xpt", dataset("DM"))

	destPath := filepath.Join(tmpDir, "merged.db")
	var buf bytes.Buffer
	cmd := newMergeCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{source1Path, source2Path, "--output", destPath})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Datasets merged: 1")
	assert.Contains(t, output, "Datasets skipped: 1")
}

func TestMergeCmd_FailsWithInvalidSource(t *testing.T) {
	destPath := filepath.Join(t.TempDir(), "merged.db")
	cmd := newMergeCmd()
	cmd.SetArgs([]string{"/nonexistent/source1.db", "/nonexistent/source2.db", "--output", destPath})

	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "merge failed")
}
