package serve

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpttools/xpt/pkg/core"
	"github.com/xpttools/xpt/pkg/store"
	"github.com/xpttools/xpt/pkg/xpttest"
)

func newCore(t *testing.T) *core.Core {
	t.Helper()
	c, err := core.NewCore("", nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func transportB64(name string) string {
	f := xpttest.File{
		Library: true,
		Members: []xpttest.Member{{
			Name: name,
			Vars: []xpttest.Var{
				{Name: "USUBJID", Length: 6, Position: -1},
				{Name: "AGE", Numeric: true, Position: -1},
			},
			Rows: [][]any{{"S-001", 54}, {"S-002", nil}},
		}},
	}
	return base64.StdEncoding.EncodeToString(f.Bytes())
}

func responses(t *testing.T, out string) []Response {
	t.Helper()
	var resps []Response
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var resp Response
		require.NoError(t, json.Unmarshal([]byte(line), &resp))
		resps = append(resps, resp)
	}
	return resps
}

func TestServer_SendsReadyOnStart(t *testing.T) {
	c := newCore(t)

	in := strings.NewReader("")
	out := &bytes.Buffer{}

	srv := NewServer(c, in, out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately to exit after ready

	_ = srv.Run(ctx)

	resps := responses(t, out.String())
	require.NotEmpty(t, resps)
	assert.True(t, resps[0].Success)
	assert.Equal(t, "ready", resps[0].Type)

	var ready ReadyData
	require.NoError(t, json.Unmarshal(resps[0].Data, &ready))
	assert.Equal(t, Version, ready.Version)
}

func TestServer_Decode(t *testing.T) {
	// Arrange
	c := newCore(t)
	request := fmt.Sprintf(`{"type":"decode","payload":{"content":%q,"source":"upload:dm.xpt"}}`, transportB64("DM")) + "\n"
	out := &bytes.Buffer{}
	srv := NewServer(c, strings.NewReader(request), out)

	// Act
	err := srv.Run(context.Background())

	// Assert
	require.NoError(t, err) // Should exit cleanly on EOF
	resps := responses(t, out.String())
	require.Len(t, resps, 2) // ready + decode response
	assert.True(t, resps[1].Success)
	assert.Equal(t, "decode", resps[1].Type)

	var result core.DecodeResult
	require.NoError(t, json.Unmarshal(resps[1].Data, &result))
	assert.Equal(t, "upload:dm.xpt", result.Source)
	require.Len(t, result.Datasets, 1)
	assert.Equal(t, "DM", result.Datasets[0].Name)
	assert.Len(t, result.Datasets[0].Rows, 2)
}

func TestServer_DecodeInvalidContent(t *testing.T) {
	c := newCore(t)
	content := base64.StdEncoding.EncodeToString([]byte("plainly not a transport file"))
	request := fmt.Sprintf(`{"type":"decode","payload":{"content":%q,"source":"junk"}}`, content) + "\n"
	out := &bytes.Buffer{}

	srv := NewServer(c, strings.NewReader(request), out)
	require.NoError(t, srv.Run(context.Background()))

	resps := responses(t, out.String())
	require.Len(t, resps, 2)
	assert.False(t, resps[1].Success)
	assert.Equal(t, "decode", resps[1].Type)
	assert.NotEmpty(t, resps[1].Error)
}

func TestServer_GracefulShutdownOnContext(t *testing.T) {
	c := newCore(t)

	// Slow reader that blocks
	pr, pw := io.Pipe()
	out := &bytes.Buffer{}

	srv := NewServer(c, pr, out)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() {
		done <- srv.Run(ctx)
	}()

	// Wait for ready signal
	time.Sleep(100 * time.Millisecond)

	cancel()
	pw.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestServer_DecodeBatch(t *testing.T) {
	// Arrange
	c := newCore(t)
	junk := base64.StdEncoding.EncodeToString([]byte("junk"))
	request := fmt.Sprintf(`{"type":"decode_batch","payload":{"items":[{"source":"dm.xpt","content":%q},{"source":"junk","content":%q},{"source":"ae.xpt","content":%q}]}}`,
		transportB64("DM"), junk, transportB64("AE")) + "\n"
	out := &bytes.Buffer{}
	srv := NewServer(c, strings.NewReader(request), out)

	// Act
	require.NoError(t, srv.Run(context.Background()))

	// Assert
	resps := responses(t, out.String())
	require.Len(t, resps, 2)
	assert.True(t, resps[1].Success)
	assert.Equal(t, "decode_batch", resps[1].Type)

	var result core.BatchDecodeResult
	require.NoError(t, json.Unmarshal(resps[1].Data, &result))
	assert.Len(t, result.Results, 3)
	assert.Equal(t, 2, result.Datasets)
	assert.Equal(t, 1, result.Failed)
}

func TestServer_List(t *testing.T) {
	c := newCore(t)
	request := fmt.Sprintf(`{"type":"decode","payload":{"content":%q,"source":"dm.xpt"}}`, transportB64("DM")) + "\n" +
		`{"type":"list","payload":{}}` + "\n"
	out := &bytes.Buffer{}

	srv := NewServer(c, strings.NewReader(request), out)
	require.NoError(t, srv.Run(context.Background()))

	resps := responses(t, out.String())
	require.Len(t, resps, 3)
	assert.Equal(t, "list", resps[2].Type)

	var infos []store.DatasetInfo
	require.NoError(t, json.Unmarshal(resps[2].Data, &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "DM", infos[0].Name)
	assert.Equal(t, "dm.xpt", infos[0].Source)
	assert.Equal(t, 2, infos[0].Variables)
}

func TestServer_CloseCommand(t *testing.T) {
	c := newCore(t)

	request := `{"type":"close","payload":{}}` + "\n" + `{"type":"list","payload":{}}` + "\n"
	out := &bytes.Buffer{}

	srv := NewServer(c, strings.NewReader(request), out)
	require.NoError(t, srv.Run(context.Background()))

	resps := responses(t, out.String())
	require.Len(t, resps, 1) // Only ready signal
}

func TestServer_UnknownCommand(t *testing.T) {
	c := newCore(t)

	request := `{"type":"scan","payload":{}}` + "\n"
	out := &bytes.Buffer{}

	srv := NewServer(c, strings.NewReader(request), out)
	_ = srv.Run(context.Background())

	resps := responses(t, out.String())
	require.Len(t, resps, 2)
	assert.False(t, resps[1].Success)
	assert.Equal(t, "unknown", resps[1].Type)
	assert.Contains(t, resps[1].Error, "unknown request type")
}

func TestServer_MalformedJSON(t *testing.T) {
	c := newCore(t)

	request := `{invalid json}` + "\n"
	out := &bytes.Buffer{}

	srv := NewServer(c, strings.NewReader(request), out)
	_ = srv.Run(context.Background())

	resps := responses(t, out.String())
	require.GreaterOrEqual(t, len(resps), 2)
	assert.False(t, resps[1].Success)
	assert.Equal(t, "error", resps[1].Type)
	assert.Contains(t, resps[1].Error, "malformed request")
}
