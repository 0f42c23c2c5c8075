//go:build !js || !wasm

package mapviewer

import (
	"errors"
	"testing"
)

func TestMount_OutsideBrowser(t *testing.T) {
	v, err := Mount(DefaultMountConfig(), nil)
	if !errors.Is(err, ErrNotWASM) {
		t.Errorf("Expected ErrNotWASM, got %v", err)
	}
	if v == nil || v.Enabled() {
		t.Fatal("Expected an inert viewer")
	}

	// every operation is a no-op
	v.ZoomIn()
	v.StartPan(10, 10)
	v.Pan(20, 20)
	v.ToggleFullscreen()
	if got := v.Viewport(); got != initialViewport {
		t.Errorf("Expected initial viewport, got %+v", got)
	}
}
