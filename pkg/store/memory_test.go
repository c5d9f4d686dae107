package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpttools/xpt/pkg/types"
)

func TestNewMemory(t *testing.T) {
	store := NewMemory()

	require.NotNil(t, store)
	require.NotNil(t, store.byKey)
	assert.Empty(t, store.datasets)
}

func TestMemory_GetVariables_Unknown(t *testing.T) {
	store := NewMemory()

	_, err := store.GetVariables(7)

	assert.Error(t, err)
}

func TestMemory_RowsAreCopied(t *testing.T) {
	// Arrange
	store := NewMemory()
	ds := &types.Dataset{
		Name:      "DM",
		Variables: []types.VarMeta{{Name: "ID", Kind: types.Character, Length: 4}},
		Rows:      []types.Row{{types.StringCell("a")}},
	}
	id, err := store.AddDataset("dm.xpt", ds)
	require.NoError(t, err)

	// Act
	ds.Rows[0] = types.Row{types.StringCell("changed")}
	ds.Rows = append(ds.Rows, types.Row{types.StringCell("b")})
	rows, err := store.GetRows(id, -1)

	// Assert
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0][0].Str)
}

func TestMemory_Close(t *testing.T) {
	assert.NoError(t, NewMemory().Close())
}
