//go:build wasm

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/xpttools/xpt/pkg/core"
)

var (
	decoders   = make(map[int]*core.Core)
	decodersMu sync.RWMutex
	nextID     int
)

func errorResult(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}

func lookup(handle int) (*core.Core, bool) {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	c, ok := decoders[handle]
	return c, ok
}

// contentArg accepts a Uint8Array or a base64 string.
func contentArg(v js.Value) ([]byte, error) {
	if v.Type() == js.TypeString {
		return base64.StdEncoding.DecodeString(v.String())
	}
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf, nil
}

func marshalResult(v any) interface{} {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return errorResult("failed to marshal results: " + err.Error())
	}
	return string(jsonBytes)
}

// newDecoder creates a decoder from an options JSON string ("" for defaults).
// JS: XptNewDecoder(optionsJSON) -> {handle} or {error}
func newDecoder(this js.Value, args []js.Value) interface{} {
	optionsJSON := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		optionsJSON = args[0].String()
	}

	c, err := core.NewCore(optionsJSON, core.NoopLogger{})
	if err != nil {
		return errorResult("failed to create decoder: " + err.Error())
	}

	decodersMu.Lock()
	id := nextID
	nextID++
	decoders[id] = c
	decodersMu.Unlock()

	return map[string]interface{}{"handle": id}
}

// decode decodes one transport file.
// JS: XptDecode(handle, content, source) -> JSON DecodeResult or {error}
func decode(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and content arguments required")
	}

	c, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid decoder handle")
	}
	content, err := contentArg(args[1])
	if err != nil {
		return errorResult("invalid content: " + err.Error())
	}
	source := ""
	if len(args) > 2 {
		source = args[2].String()
	}

	result, err := c.Decode(context.Background(), content, source)
	if err != nil {
		return errorResult("decode failed: " + err.Error())
	}
	return marshalResult(result)
}

// decodeBatch decodes a JSON array of {source, content(base64)} items.
// JS: XptDecodeBatch(handle, itemsJSON) -> JSON BatchDecodeResult or {error}
func decodeBatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("handle and itemsJSON arguments required")
	}

	c, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid decoder handle")
	}

	var items []core.ContentItem
	if err := json.Unmarshal([]byte(args[1].String()), &items); err != nil {
		return errorResult("failed to parse items JSON: " + err.Error())
	}

	result, err := c.DecodeBatch(context.Background(), items)
	if err != nil {
		return errorResult("batch decode failed: " + err.Error())
	}
	return marshalResult(result)
}

// listDatasets returns the datasets decoded so far.
// JS: XptListDatasets(handle) -> JSON array or {error}
func listDatasets(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("handle argument required")
	}

	c, ok := lookup(args[0].Int())
	if !ok {
		return errorResult("invalid decoder handle")
	}

	infos, err := c.Datasets()
	if err != nil {
		return errorResult("listing datasets failed: " + err.Error())
	}
	return marshalResult(infos)
}

// closeDecoder closes a decoder and releases resources.
// JS: XptCloseDecoder(handle)
func closeDecoder(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("handle argument required")
	}

	handle := args[0].Int()

	decodersMu.Lock()
	c, ok := decoders[handle]
	if ok {
		delete(decoders, handle)
	}
	decodersMu.Unlock()

	if !ok {
		return errorResult("invalid decoder handle")
	}

	c.Close()
	return nil
}
