//go:build !wasm

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpttools/xpt/pkg/ibm370"
	"github.com/xpttools/xpt/pkg/types"
)

func TestStore_Interface(t *testing.T) {
	var _ Store = (*SQLiteStore)(nil)
	var _ Store = (*MemoryStore)(nil)
}

func sample(name string) *types.Dataset {
	return &types.Dataset{
		Name:       name,
		Label:      "Adverse Events",
		Type:       "DATA",
		SASVersion: "9.4",
		OS:         "X64_10PR",
		Created:    time.Date(2024, time.March, 14, 10, 30, 0, 0, time.UTC),
		Variables: []types.VarMeta{
			{Name: "USUBJID", Kind: types.Character, Length: 8, Number: 1},
			{Name: "AESEQ", Kind: types.Numeric, Length: 8, Position: 8, Number: 2, Format: types.Format{Width: 8, Decimals: 2, Justify: 1}},
		},
		Rows: []types.Row{
			{types.StringCell("01-001"), types.NumberCell(1)},
			{types.StringCell("01-002"), types.MissingCell(ibm370.Dot)},
			{types.StringCell("01-003"), types.MissingCell('A')},
		},
		Diagnostics: []types.Diagnostic{{Kind: types.DiagPaddedStride, Offset: 960, Message: "rows padded to 16 bytes"}},
	}
}

// backends returns a fresh store of every native implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "xpt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func TestStore_E2E(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// Arrange
			ds := sample("AE")

			// Act
			id, err := s.AddDataset("study/ae.xpt", ds)
			require.NoError(t, err)

			// Assert
			exists, err := s.DatasetExists("study/ae.xpt", "AE")
			require.NoError(t, err)
			assert.True(t, exists)

			infos, err := s.GetDatasets()
			require.NoError(t, err)
			require.Len(t, infos, 1)
			assert.Equal(t, id, infos[0].ID)
			assert.Equal(t, "Adverse Events", infos[0].Label)
			assert.Equal(t, 3, infos[0].RowCount)
			assert.Equal(t, 2, infos[0].Variables)
			assert.True(t, ds.Created.Equal(infos[0].Created))
			require.Len(t, infos[0].Diagnostics, 1)
			assert.Equal(t, types.DiagPaddedStride, infos[0].Diagnostics[0].Kind)

			vars, err := s.GetVariables(id)
			require.NoError(t, err)
			assert.Equal(t, ds.Variables, vars)

			rows, err := s.GetRows(id, -1)
			require.NoError(t, err)
			assert.Equal(t, ds.Rows, rows)
		})
	}
}

func TestStore_AddDataset_Duplicate(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.AddDataset("a.xpt", sample("AE"))
			require.NoError(t, err)

			second, err := s.AddDataset("a.xpt", sample("AE"))
			require.NoError(t, err)
			other, err := s.AddDataset("b.xpt", sample("AE"))
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.NotEqual(t, first, other)
			infos, err := s.GetDatasets()
			require.NoError(t, err)
			assert.Len(t, infos, 2)
		})
	}
}

func TestStore_GetRows_Limit(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			id, err := s.AddDataset("a.xpt", sample("AE"))
			require.NoError(t, err)

			rows, err := s.GetRows(id, 2)
			require.NoError(t, err)

			require.Len(t, rows, 2)
			assert.Equal(t, "01-002", rows[1][0].Str)
			assert.True(t, rows[1][1].IsMissing())
		})
	}
}

func TestStore_DatasetExists_Unknown(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			exists, err := s.DatasetExists("nowhere.xpt", "AE")

			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestEncodeRow_KeepsMissingCodes(t *testing.T) {
	vars := sample("AE").Variables
	row := types.Row{types.StringCell(".A"), types.MissingCell('Z')}

	data, err := encodeRow(row)
	require.NoError(t, err)
	back, err := decodeRow(data, vars)
	require.NoError(t, err)

	assert.Equal(t, `[".A",".Z"]`, data)
	assert.Equal(t, row, back)
}

func TestDecodeRow_WidthMismatch(t *testing.T) {
	_, err := decodeRow(`["x"]`, sample("AE").Variables)

	assert.Error(t, err)
}
