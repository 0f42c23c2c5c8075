package livereload

import (
	"encoding/json"
	"fmt"
)

// Path is the route the dev server mounts the hub on
const Path = "/livereload"

// Message is a notification as received by a client
type Message struct {
	Type  string `json:"type"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// ParseMessage decodes a notification frame
func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("invalid livereload message: %w", err)
	}
	return m, nil
}

// ShouldReload reports whether the page must be reloaded. A rebuilt
// WebAssembly binary can only be picked up by reloading.
func (m Message) ShouldReload() bool {
	return m.Type == TypeReload || m.Type == TypeRebuild
}

// URL returns the WebSocket address of the hub for a page served from
// host with the given location protocol
func URL(protocol, host string) string {
	scheme := "ws:"
	if protocol == "https:" {
		scheme = "wss:"
	}
	return scheme + "//" + host + Path
}
