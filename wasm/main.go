//go:build wasm

package main

import (
	"syscall/js"
)

func main() {
	// Export functions to JavaScript
	js.Global().Set("XptNewDecoder", js.FuncOf(newDecoder))
	js.Global().Set("XptDecode", js.FuncOf(decode))
	js.Global().Set("XptDecodeBatch", js.FuncOf(decodeBatch))
	js.Global().Set("XptListDatasets", js.FuncOf(listDatasets))
	js.Global().Set("XptCloseDecoder", js.FuncOf(closeDecoder))

	// Keep WASM running
	<-make(chan struct{})
}
