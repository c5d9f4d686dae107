package serve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServer_DecodeBatch_EOFRace checks that a decode_batch response is sent
// even when EOF arrives before the main loop picks up the pending request.
func TestServer_DecodeBatch_EOFRace(t *testing.T) {
	c := newCore(t)

	for i := range 10 {
		request := fmt.Sprintf(`{"type":"decode_batch","payload":{"items":[{"source":"s1","content":%q},{"source":"s2","content":%q}]}}`,
			transportB64("DM"), transportB64("AE")) + "\n"
		in := strings.NewReader(request)
		out := &strings.Builder{}

		srv := NewServer(c, in, out)
		err := srv.Run(context.Background())
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 2, "iteration %d: expected 2 lines (ready + decode_batch response), got %d", i, len(lines))

		var resp Response
		err = json.Unmarshal([]byte(lines[1]), &resp)
		require.NoError(t, err, "iteration %d: failed to unmarshal response", i)

		assert.True(t, resp.Success, "iteration %d: expected success", i)
		assert.Equal(t, "decode_batch", resp.Type, "iteration %d: expected decode_batch type", i)
	}
}
