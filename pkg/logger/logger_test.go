package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_TextLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	L().Debug("hidden")
	L().Info("decoded member", "member", "DM", "rows", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] decoded member")
	assert.Contains(t, out, "member=DM")
	assert.Contains(t, out, "rows=3")
}

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "DEBUG", "json", false)

	L().Debug("tolerated deviation", "kind", "padded_stride")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "padded_stride", rec["kind"])
	assert.Equal(t, "DEBUG", rec["level"])
}

func TestColorTextHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	L().WithGroup("store").With("path", "x.db").Info("opened")

	assert.Contains(t, buf.String(), "store.path=x.db")
}

func TestColorTextHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text", true)

	L().Warn("careful")

	assert.True(t, strings.Contains(buf.String(), "\x1b["), "expected ANSI escapes")
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xpt.log")

	require.NoError(t, Init(Config{Level: "error", Format: "text", Output: path}))
	L().Error("boom")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
}

func TestSetLevel_Unknown(t *testing.T) {
	assert.Error(t, SetLevel("LOUD"))
	assert.Error(t, SetFormat("xml"))
}
