//go:build !js || !wasm

package mapviewer

// Mount is stubbed out for non-WASM builds: it returns an inert viewer
func Mount(_ MountConfig, opts *Options) (*Viewer, error) {
	return New(nil, nil, opts), ErrNotWASM
}
