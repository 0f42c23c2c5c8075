package mapviewer

import (
	"math"

	"github.com/recera/transitmap/pkg/debug"
)

// Point is a pointer position in container-relative or client coordinates
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned box in client coordinates
type Rect struct {
	X, Y, W, H float64
}

// Viewport is the pan/zoom state applied to the displayed graphic
type Viewport struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// initialViewport is the state at construction and after ResetZoom
var initialViewport = Viewport{Scale: 1}

// PanGesture exists only while a pointer is held down
type PanGesture struct {
	Active  bool
	AnchorX float64
	AnchorY float64
}

// Options configures the viewer behavior and style
type Options struct {
	// Viewport
	MinScale float64 // default 0.5
	MaxScale float64 // default 3.0
	ZoomStep float64 // default 0.2

	// Station hover
	HoverScale    float64 // default 1.5
	HoverColor    string  // default "#ff6b35"
	TooltipOffset *float64 // default 10, distance above the pointer; zero is allowed

	// Logf receives diagnostics, defaults to debug.Logf
	Logf func(format string, args ...interface{})

	// Interaction callbacks (optional)
	OnViewportChange func(v Viewport)
	OnStationClick   func(label string)
}

func (o *Options) withDefaults() Options {
	d := Options{
		MinScale:      0.5,
		MaxScale:      3.0,
		ZoomStep:      0.2,
		HoverScale:    1.5,
		HoverColor:    "#ff6b35",
		TooltipOffset: Offset(10),
		Logf:          debug.Logf,
	}
	if o == nil {
		return d
	}
	if o.MinScale > 0 {
		d.MinScale = o.MinScale
	}
	if o.MaxScale > 0 {
		d.MaxScale = o.MaxScale
	}
	// Keep MinScale <= MaxScale
	if d.MinScale > d.MaxScale {
		d.MinScale, d.MaxScale = d.MaxScale, d.MinScale
	}
	// The initial and reset scale of 1 must lie within the bounds
	d.MinScale = math.Min(d.MinScale, initialViewport.Scale)
	d.MaxScale = math.Max(d.MaxScale, initialViewport.Scale)
	if o.ZoomStep > 0 {
		d.ZoomStep = o.ZoomStep
	}
	if o.HoverScale > 0 {
		d.HoverScale = o.HoverScale
	}
	if o.HoverColor != "" {
		d.HoverColor = o.HoverColor
	}
	// Negative offsets place the tooltip below the pointer
	if o.TooltipOffset != nil {
		d.TooltipOffset = Offset(*o.TooltipOffset)
	}
	if o.Logf != nil {
		d.Logf = o.Logf
	}
	d.OnViewportChange = o.OnViewportChange
	d.OnStationClick = o.OnStationClick
	return d
}

// Offset returns a pointer to a tooltip offset for Options.TooltipOffset
func Offset(px float64) *float64 { return &px }
