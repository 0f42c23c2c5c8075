package mapviewer

import (
	"errors"
	"fmt"
)

type tooltipState struct {
	Text    string
	X, Y    float64
	Visible bool
}

type markerStyle struct {
	Radius float64
	Color  string
}

// fakeSurface records everything the viewer renders
type fakeSurface struct {
	transforms []Viewport
	tooltip    tooltipState
	markers    map[string]markerStyle
	grabbing   bool
	left, top  float64

	fullscreen    bool
	fullscreenErr error
	iconExpanded  bool
	notices       []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{markers: make(map[string]markerStyle)}
}

func (f *fakeSurface) ApplyTransform(scale, tx, ty float64) {
	f.transforms = append(f.transforms, Viewport{Scale: scale, TranslateX: tx, TranslateY: ty})
}

func (f *fakeSurface) SetTooltip(text string, x, y float64, visible bool) {
	f.tooltip = tooltipState{Text: text, X: x, Y: y, Visible: visible}
}

func (f *fakeSurface) SetMarkerStyle(key string, radius float64, color string) {
	f.markers[key] = markerStyle{Radius: radius, Color: color}
}

func (f *fakeSurface) SetGrabbing(grabbing bool) { f.grabbing = grabbing }

func (f *fakeSurface) Origin() (float64, float64) { return f.left, f.top }

func (f *fakeSurface) last() Viewport {
	if len(f.transforms) == 0 {
		return Viewport{}
	}
	return f.transforms[len(f.transforms)-1]
}

// fullscreenSurface adds Fullscreener and Notifier
type fullscreenSurface struct {
	*fakeSurface
}

func (f fullscreenSurface) IsFullscreen() bool { return f.fullscreen }

func (f fullscreenSurface) RequestFullscreen() error {
	if f.fullscreenErr != nil {
		return f.fullscreenErr
	}
	f.fullscreen = true
	return nil
}

func (f fullscreenSurface) ExitFullscreen() error {
	f.fullscreen = false
	return nil
}

func (f fullscreenSurface) SetFullscreenIcon(expanded bool) { f.iconExpanded = expanded }

func (f fullscreenSurface) Notify(message string) { f.notices = append(f.notices, message) }

// fakeElement is a node of a fakeDocument
type fakeElement struct {
	key, id, title, text string
	kind                 Kind
	radius               float64
	events               StationEvents
	listened             int
}

func (e *fakeElement) Key() string {
	if e.key != "" {
		return e.key
	}
	return e.id
}
func (e *fakeElement) ID() string { return e.id }
func (e *fakeElement) Title() string { return e.title }
func (e *fakeElement) Text() string { return e.text }
func (e *fakeElement) Kind() Kind { return e.kind }
func (e *fakeElement) Radius() float64 { return e.radius }
func (e *fakeElement) Listen(events StationEvents) { e.events = events; e.listened++ }

type fakeDocument struct {
	elements []Element
	err      error
}

func (d *fakeDocument) Elements() ([]Element, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.elements, nil
}

var errCrossOrigin = errors.New("blocked a frame with origin from accessing a cross-origin frame")

// logRecorder captures viewer diagnostics
type logRecorder struct {
	lines []string
}

func (l *logRecorder) Logf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}
