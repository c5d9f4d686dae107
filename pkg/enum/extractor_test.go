package enum

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTransportFiles_Zip(t *testing.T) {
	// Arrange
	content := zipBytes(t, map[string]string{
		"a/dm.xpt":      "dm",
		"a/AE.XPT":      "ae",
		"readme.txt":    "hello",
		"a/.hidden.xpt": "x",
	})

	// Act
	got, err := ExtractTransportFiles("study.zip", content, Config{})

	// Assert
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a/AE.XPT", got[0].Name)
	assert.Equal(t, []byte("ae"), got[0].Content)
	assert.Equal(t, "a/dm.xpt", got[1].Name)
}

func TestExtractTransportFiles_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"corrupt zip", "broken.zip"},
		{"corrupt 7z", "broken.7z"},
		{"unsupported", "data.tar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractTransportFiles(tt.path, []byte("not an archive"), Config{})
			assert.Error(t, err)
		})
	}
}

func TestExtractionLimits(t *testing.T) {
	content := zipBytes(t, map[string]string{
		"a.xpt": strings.Repeat("a", 100),
		"b.xpt": strings.Repeat("b", 100),
		"c.xpt": strings.Repeat("c", 100),
	})

	tests := []struct {
		name   string
		limits ExtractLimits
		kept   int
	}{
		{"max members", ExtractLimits{MaxMembers: 2}, 2},
		{"max member size", ExtractLimits{MaxMemberSize: 50}, 0},
		{"max total size", ExtractLimits{MaxTotalSize: 250}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTransportFiles("x.zip", content, Config{ExtractLimits: tt.limits})

			assert.ErrorIs(t, err, ErrLimitExceeded)
			assert.Len(t, got, tt.kept)
		})
	}
}

func TestReadMember_LongerThanClaimed(t *testing.T) {
	m := archiveMember{
		name: "dm.xpt",
		size: 4,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(make([]byte, 64))), nil
		},
	}

	_, err := readMember(m, 16)

	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestIsArchive(t *testing.T) {
	assert.True(t, isArchive("x.ZIP"))
	assert.True(t, isArchive("x.7z"))
	assert.False(t, isArchive("x.xpt"))
}

func TestHasHiddenElement(t *testing.T) {
	assert.True(t, hasHiddenElement("__MACOSX/dm.xpt"))
	assert.True(t, hasHiddenElement("a/.b/dm.xpt"))
	assert.False(t, hasHiddenElement("a/b/dm.xpt"))
}
