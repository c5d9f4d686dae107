package core

import (
	"github.com/xpttools/xpt/pkg/types"
)

// Options configures a Core. It is usually supplied as JSON by embedding
// hosts (serve loop, WASM).
type Options struct {
	Layout      string `json:"layout,omitempty"`          // "sequential" (default) or "declared"
	Charset     string `json:"charset,omitempty"`         // WHATWG encoding label, default windows-1252
	MaxRows     int    `json:"max_rows,omitempty"`        // 0 = every row
	Placeholder string `json:"placeholder,omitempty"`     // dataset name used when the header has none
	KeepBlank   bool   `json:"keep_blank_rows,omitempty"` // keep all-blank rows in the last card's padding
}

// ContentItem is one transport file to decode.
type ContentItem struct {
	Source  string `json:"source"`  // e.g. "upload:dm.xpt"
	Content []byte `json:"content"` // raw file bytes, base64 in JSON
}

// DecodeResult is the outcome of decoding one item.
type DecodeResult struct {
	Source   string           `json:"source"`
	BlobID   types.BlobID     `json:"blob_id"`
	Library  types.Library    `json:"library"`
	Datasets []*types.Dataset `json:"datasets"`
	Error    string           `json:"error,omitempty"`
}

// BatchDecodeResult is the outcome of a batch.
type BatchDecodeResult struct {
	Results  []DecodeResult `json:"results"`
	Datasets int            `json:"datasets"` // decoded across all items
	Failed   int            `json:"failed"`   // items that could not be decoded
}

// DebugLogger provides platform-specific logging
type DebugLogger interface {
	Log(format string, args ...interface{})
}

// NoopLogger is a no-op logger
type NoopLogger struct{}

func (NoopLogger) Log(format string, args ...interface{}) {}
