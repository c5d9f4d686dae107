package serve

import (
	"encoding/json"

	"github.com/xpttools/xpt/pkg/core"
)

// Request represents an incoming NDJSON request
type Request struct {
	Type    string          `json:"type"` // "decode" | "decode_batch" | "list" | "close"
	Payload json.RawMessage `json:"payload"`
}

// DecodePayload is the payload for "decode" requests
type DecodePayload struct {
	Content []byte `json:"content"` // base64 transport file
	Source  string `json:"source"`
}

// DecodeBatchPayload is the payload for "decode_batch" requests
type DecodeBatchPayload struct {
	Items []core.ContentItem `json:"items"`
}

// Response represents an outgoing NDJSON response
type Response struct {
	Success bool            `json:"success"`
	Type    string          `json:"type"` // "ready" | "decode" | "decode_batch" | "list" | "error"
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string `json:"version"`
}
