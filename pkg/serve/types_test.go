package serve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_DecodeUnmarshal(t *testing.T) {
	input := `{"type":"decode","payload":{"content":"SEVBREVS","source":"test"}}`

	var req Request
	err := json.Unmarshal([]byte(input), &req)
	require.NoError(t, err)

	assert.Equal(t, "decode", req.Type)

	var payload DecodePayload
	err = json.Unmarshal(req.Payload, &payload)
	require.NoError(t, err)

	assert.Equal(t, []byte("HEADER"), payload.Content)
	assert.Equal(t, "test", payload.Source)
}

func TestRequest_DecodeBatchUnmarshal(t *testing.T) {
	input := `{"items":[{"source":"a","content":"QQ=="},{"source":"b","content":""}]}`

	var payload DecodeBatchPayload
	require.NoError(t, json.Unmarshal([]byte(input), &payload))

	require.Len(t, payload.Items, 2)
	assert.Equal(t, []byte("A"), payload.Items[0].Content)
	assert.Equal(t, "b", payload.Items[1].Source)
}

func TestResponse_Marshal(t *testing.T) {
	resp := Response{
		Success: true,
		Type:    "ready",
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"success":true`)
	assert.Contains(t, string(data), `"type":"ready"`)
	assert.NotContains(t, string(data), `"error"`)
}
