//go:build js && wasm
// +build js,wasm

package main

import (
	"syscall/js"

	"github.com/recera/transitmap/internal/livereload"
	"github.com/recera/transitmap/pkg/components/mapviewer"
	"github.com/recera/transitmap/pkg/debug"
)

var document js.Value

func main() {
	document = js.Global().Get("document")
	debug.Log("🚀 transit map client starting...")

	// Wait for DOM ready
	if document.Get("readyState").String() != "loading" {
		onReady()
	} else {
		document.Call("addEventListener", "DOMContentLoaded", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			onReady()
			return nil
		}))
	}

	// Keep the WASM runtime alive
	select {}
}

func onReady() {
	if _, err := mapviewer.Mount(mapviewer.DefaultMountConfig(), nil); err != nil {
		// the page has no map, nothing to drive
		debug.Warnf("%v", err)
	}

	if isDevHost(js.Global().Get("location").Get("hostname").String()) {
		livereload.Connect()
	}
}

func isDevHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "[::1]"
}
