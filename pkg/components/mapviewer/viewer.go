package mapviewer

import "math"

// Viewer owns the pan/zoom state of an embedded map graphic and the hover
// tooltip for the stations inside it. A Viewer is driven from a single UI
// thread and carries no locks.
type Viewer struct {
	surface Surface
	opts    Options

	view    Viewport
	gesture PanGesture

	stations []*Station
	hovered  *Station
}

// New creates a viewer rendering to surface. A nil surface yields an inert
// viewer whose operations are no-ops. Station interaction is wired when load
// settles; a nil load leaves it unwired.
func New(surface Surface, load *Load, opts *Options) *Viewer {
	v := &Viewer{
		surface: surface,
		opts:    opts.withDefaults(),
		view:    initialViewport,
	}
	if surface == nil {
		return v
	}
	v.update()
	if load != nil {
		load.Then(v.setupStationInteraction)
	}
	return v
}

// Enabled reports whether the viewer has a surface to drive
func (v *Viewer) Enabled() bool { return v != nil && v.surface != nil }

// Viewport returns a copy of the current pan/zoom state
func (v *Viewer) Viewport() Viewport { return v.view }

// Gesture returns a copy of the current pan gesture
func (v *Viewer) Gesture() PanGesture { return v.gesture }

// Panning reports whether a pan gesture is active
func (v *Viewer) Panning() bool { return v.gesture.Active }

// ZoomIn increases the scale by one step, clamped to MaxScale
func (v *Viewer) ZoomIn() {
	if !v.Enabled() || v.view.Scale >= v.opts.MaxScale {
		return
	}
	v.view.Scale = roundScale(math.Min(v.opts.MaxScale, v.view.Scale+v.opts.ZoomStep))
	v.update()
}

// ZoomOut decreases the scale by one step, clamped to MinScale
func (v *Viewer) ZoomOut() {
	if !v.Enabled() || v.view.Scale <= v.opts.MinScale {
		return
	}
	v.view.Scale = roundScale(math.Max(v.opts.MinScale, v.view.Scale-v.opts.ZoomStep))
	v.update()
}

// ResetZoom restores scale 1 and a zero translation
func (v *Viewer) ResetZoom() {
	if !v.Enabled() {
		return
	}
	v.view = initialViewport
	v.update()
}

// StartPan begins a pan gesture at the given pointer position
func (v *Viewer) StartPan(x, y float64) {
	if !v.Enabled() {
		return
	}
	v.gesture = PanGesture{
		Active:  true,
		AnchorX: x - v.view.TranslateX,
		AnchorY: y - v.view.TranslateY,
	}
	v.surface.SetGrabbing(true)
}

// Pan moves the graphic so the gesture anchor follows the pointer. The
// translation is unbounded.
func (v *Viewer) Pan(x, y float64) {
	if !v.Enabled() || !v.gesture.Active {
		return
	}
	v.view.TranslateX = x - v.gesture.AnchorX
	v.view.TranslateY = y - v.gesture.AnchorY
	v.update()
}

// EndPan finishes the current gesture. Safe to call when not panning.
func (v *Viewer) EndPan() {
	if !v.Enabled() {
		return
	}
	v.gesture.Active = false
	v.surface.SetGrabbing(false)
}

// Wheel zooms in for negative deltaY and out otherwise
func (v *Viewer) Wheel(deltaY float64) {
	if deltaY < 0 {
		v.ZoomIn()
		return
	}
	v.ZoomOut()
}

// TouchStart starts a pan from the primary touch point
func (v *Viewer) TouchStart(touches []Point) {
	if len(touches) == 0 {
		return
	}
	v.StartPan(touches[0].X, touches[0].Y)
}

// TouchMove pans to the primary touch point
func (v *Viewer) TouchMove(touches []Point) {
	if len(touches) == 0 {
		return
	}
	v.Pan(touches[0].X, touches[0].Y)
}

// TouchEnd ends the touch pan
func (v *Viewer) TouchEnd() { v.EndPan() }

// ToggleFullscreen requests or exits full-screen presentation when the
// surface supports it
func (v *Viewer) ToggleFullscreen() {
	if !v.Enabled() {
		return
	}
	fs, ok := v.surface.(Fullscreener)
	if !ok {
		v.opts.Logf("[MapViewer] full screen is not supported by this surface")
		return
	}
	if fs.IsFullscreen() {
		if err := fs.ExitFullscreen(); err != nil {
			v.opts.Logf("[MapViewer] exit full screen failed: %v", err)
			return
		}
		fs.SetFullscreenIcon(false)
		return
	}
	if err := fs.RequestFullscreen(); err != nil {
		v.opts.Logf("[MapViewer] full screen request failed: %v", err)
		return
	}
	fs.SetFullscreenIcon(true)
}

func (v *Viewer) update() {
	v.surface.ApplyTransform(v.view.Scale, v.view.TranslateX, v.view.TranslateY)
	if v.opts.OnViewportChange != nil {
		v.opts.OnViewportChange(v.view)
	}
}

// roundScale drops accumulated float error from repeated zoom steps
func roundScale(s float64) float64 {
	return math.Round(s*1e9) / 1e9
}
