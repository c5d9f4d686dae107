package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvenance_Kinds(t *testing.T) {
	tests := []struct {
		prov Provenance
		kind string
		path string
	}{
		{FileProvenance{FilePath: "/data/dm.xpt"}, "file", "/data/dm.xpt"},
		{ArchiveProvenance{ArchivePath: "/data/sdtm.zip", MemberPath: "dm.xpt"}, "archive", "/data/sdtm.zip:dm.xpt"},
		{RemoteProvenance{URL: "s3://bucket/dm.xpt"}, "remote", "s3://bucket/dm.xpt"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.prov.Kind())
			assert.Equal(t, tt.path, tt.prov.Path())
		})
	}
}

func TestComputeBlobID_GitCompatible(t *testing.T) {
	// git hash-object of an empty file
	id := ComputeBlobID(nil)

	assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", id.Hex())
	assert.Equal(t, "e69de29bb2d1", id.String())

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"e69de29bb2d1d6434b8b29ae775ad8c2e48c5391"`, string(data))
}
