package explorer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/transitmap/pkg/components/mapviewer"
)

// headerHeight is the number of terminal rows above the map canvas
const headerHeight = 1

type tooltip struct {
	text    string
	x, y    float64
	visible bool
}

type markerStyle struct {
	radius float64
	color  string
}

// termSurface records what the viewer asks to display. Coordinates are
// terminal cells; the canvas starts below the header row.
type termSurface struct {
	view       mapviewer.Viewport
	tip        tooltip
	markers    map[string]markerStyle
	grabbing   bool
	fullscreen bool
	expanded   bool
	banner     string
	status     string

	// pending holds terminal commands produced while handling a message
	pending []tea.Cmd
}

func newTermSurface() *termSurface {
	return &termSurface{markers: make(map[string]markerStyle)}
}

func (s *termSurface) ApplyTransform(scale, tx, ty float64) {
	s.view = mapviewer.Viewport{Scale: scale, TranslateX: tx, TranslateY: ty}
}

func (s *termSurface) SetTooltip(text string, x, y float64, visible bool) {
	s.tip = tooltip{text: text, x: x, y: y, visible: visible}
}

func (s *termSurface) SetMarkerStyle(key string, radius float64, color string) {
	if color == "" {
		delete(s.markers, key)
		return
	}
	s.markers[key] = markerStyle{radius: radius, color: color}
}

func (s *termSurface) SetGrabbing(grabbing bool) { s.grabbing = grabbing }

func (s *termSurface) Origin() (float64, float64) { return 0, headerHeight }

// The alternate screen stands in for browser fullscreen

func (s *termSurface) IsFullscreen() bool { return s.fullscreen }

func (s *termSurface) RequestFullscreen() error {
	s.fullscreen = true
	s.pending = append(s.pending, tea.EnterAltScreen)
	return nil
}

func (s *termSurface) ExitFullscreen() error {
	s.fullscreen = false
	s.pending = append(s.pending, tea.ExitAltScreen)
	return nil
}

func (s *termSurface) SetFullscreenIcon(expanded bool) { s.expanded = expanded }

func (s *termSurface) Notify(message string) { s.banner = message }

// logf receives viewer diagnostics; writing to stdout would corrupt the
// terminal, so the last message is shown in the status line instead
func (s *termSurface) logf(format string, args ...interface{}) {
	s.status = fmt.Sprintf(format, args...)
}

// flush returns and clears the queued terminal commands
func (s *termSurface) flush() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}
