//go:build js && wasm
// +build js,wasm

package livereload

import (
	"syscall/js"
	"time"

	"github.com/recera/transitmap/pkg/debug"
)

// reconnectDelay is the wait before retrying a dropped connection
const reconnectDelay = 2 * time.Second

// Client listens for dev server notifications in the browser
type Client struct {
	url   string
	ws    js.Value
	funcs []js.Func
}

// Connect opens a connection to the hub of the server that served the page.
// The client reconnects when the server restarts.
func Connect() *Client {
	location := js.Global().Get("location")
	c := &Client{url: URL(location.Get("protocol").String(), location.Get("host").String())}
	c.open()
	return c
}

func (c *Client) open() {
	c.release()
	c.ws = js.Global().Get("WebSocket").New(c.url)

	c.on("onopen", func(js.Value) {
		debug.Log("[LiveReload] Connected")
		c.ws.Call("send", `{"type":"HELLO"}`)
	})
	c.on("onmessage", func(event js.Value) {
		msg, err := ParseMessage([]byte(event.Get("data").String()))
		if err != nil {
			debug.Warnf("[LiveReload] %v", err)
			return
		}
		switch {
		case msg.ShouldReload():
			debug.Logf("[LiveReload] %s %s", msg.Type, msg.Path)
			js.Global().Get("location").Call("reload")
		case msg.Type == TypeError:
			js.Global().Get("console").Call("error", "[LiveReload] build failed:", msg.Error)
		}
	})
	c.on("onclose", func(js.Value) {
		debug.Log("[LiveReload] Disconnected, retrying")
		time.AfterFunc(reconnectDelay, c.open)
	})
}

func (c *Client) on(event string, fn func(js.Value)) {
	f := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ev := js.Undefined()
		if len(args) > 0 {
			ev = args[0]
		}
		fn(ev)
		return nil
	})
	c.funcs = append(c.funcs, f)
	c.ws.Set(event, f)
}

// release frees the callbacks of the previous connection
func (c *Client) release() {
	for _, f := range c.funcs {
		f.Release()
	}
	c.funcs = nil
}

// Close closes the connection without reconnecting
func (c *Client) Close() {
	if c.ws.Truthy() {
		c.ws.Set("onclose", js.Null())
		c.ws.Call("close")
	}
	c.release()
}
