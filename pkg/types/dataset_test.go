package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	datasets := []*Dataset{{Name: "DM"}, {Name: "AE"}}

	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"", "DM", false},
		{"2", "AE", false},
		{"ae", "AE", false},
		{"3", "", true},
		{"0", "", true},
		{"LB", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ds, err := Select(datasets, tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ds.Name)
		})
	}
}

func TestSelect_Empty(t *testing.T) {
	_, err := Select(nil, "")

	assert.True(t, errors.Is(err, ErrNoDatasets))
}

func TestDataset_VariableIndex(t *testing.T) {
	ds := &Dataset{Variables: []VarMeta{{Name: "AGE"}, {Name: "SEX"}}}

	assert.Equal(t, 1, ds.VariableIndex("sex"))
	assert.Equal(t, -1, ds.VariableIndex("RACE"))
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "", Format{}.String())
	assert.Equal(t, "DATE9.", Format{Name: "DATE", Width: 9}.String())
	assert.Equal(t, "8.2", Format{Width: 8, Decimals: 2}.String())
	assert.Equal(t, "$CHAR20.", Format{Name: "$CHAR", Width: 20}.String())
}

func TestCell_Rendering(t *testing.T) {
	assert.Equal(t, "1.5", NumberCell(1.5).String())
	assert.Equal(t, "", MissingCell('.').String())
	assert.Nil(t, MissingCell('Z').Value())
	assert.Equal(t, "abc", StringCell("abc").Value())

	b, err := MissingCell('.').MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}
