package mapviewer

import "errors"

// ErrNotWASM is returned by Mount outside of js/wasm builds
var ErrNotWASM = errors.New("mapviewer: DOM mounting requires a js/wasm build")

// MountConfig names the page elements a DOM viewer binds to. Only the
// container and object ids are required.
type MountConfig struct {
	ContainerID  string // element receiving pointer, touch and wheel input
	ObjectID     string // <object> embedding the SVG map
	TooltipID    string
	ZoomInID     string
	ZoomOutID    string
	ResetID      string
	FullscreenID string
}

// DefaultMountConfig matches the markup served from public/index.html
func DefaultMountConfig() MountConfig {
	return MountConfig{
		ContainerID:  "map-container",
		ObjectID:     "transit-map",
		TooltipID:    "map-tooltip",
		ZoomInID:     "zoom-in",
		ZoomOutID:    "zoom-out",
		ResetID:      "reset-zoom",
		FullscreenID: "fullscreen-btn",
	}
}
