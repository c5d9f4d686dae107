//go:build !wasm

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_EmptySources(t *testing.T) {
	_, err := Merge(MergeConfig{
		SourcePaths: []string{},
		DestPath:    "/tmp/dest.db",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no source databases")
}

func TestMerge_NoDestination(t *testing.T) {
	_, err := Merge(MergeConfig{
		SourcePaths: []string{"/tmp/source.db"},
		DestPath:    "",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "destination path is required")
}

func writeSource(t *testing.T, path, source string, names ...string) {
	t.Helper()
	s, err := NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	for _, name := range names {
		_, err := s.AddDataset(source, sample(name))
		require.NoError(t, err)
	}
}

func TestMerge_MultipleSources(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	src1 := filepath.Join(dir, "one.db")
	src2 := filepath.Join(dir, "two.db")
	dest := filepath.Join(dir, "merged.db")
	writeSource(t, src1, "ae.xpt", "AE")
	writeSource(t, src2, "dm.xpt", "DM", "SUPPDM")

	// Act
	stats, err := Merge(MergeConfig{SourcePaths: []string{src1, src2}, DestPath: dest})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SourcesProcessed)
	assert.Equal(t, 3, stats.DatasetsMerged)
	assert.Equal(t, 6, stats.VariablesMerged)
	assert.Equal(t, 9, stats.RowsMerged)

	merged, err := NewSQLite(dest)
	require.NoError(t, err)
	defer merged.Close()
	infos, err := merged.GetDatasets()
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "SUPPDM", infos[2].Name)

	rows, err := merged.GetRows(infos[2].ID, -1)
	require.NoError(t, err)
	assert.Equal(t, sample("SUPPDM").Rows, rows)
}

func TestMerge_Deduplication(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	src := filepath.Join(dir, "one.db")
	dest := filepath.Join(dir, "merged.db")
	writeSource(t, src, "ae.xpt", "AE")

	// Act - merge the same source twice
	first, err := Merge(MergeConfig{SourcePaths: []string{src}, DestPath: dest})
	require.NoError(t, err)
	second, err := Merge(MergeConfig{SourcePaths: []string{src}, DestPath: dest})
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, first.DatasetsMerged)
	assert.Equal(t, 0, second.DatasetsMerged)
	assert.Equal(t, 1, second.DatasetsSkipped)
	assert.Equal(t, 0, second.RowsMerged)
}
