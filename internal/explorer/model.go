// Package explorer is a terminal front end for the map viewer. It drives the
// same mapviewer.Viewer as the browser client, with a bubbletea program as
// its surface: the mouse pans, hovers and zooms, the keyboard does the rest.
package explorer

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"seehuhn.de/go/geom/matrix"

	"github.com/recera/transitmap/internal/svgmap"
	"github.com/recera/transitmap/pkg/components/mapviewer"
)

const (
	// Keyboard pan distance in cells
	panStepX = 4
	panStepY = 2

	// Terminal cells are roughly twice as tall as they are wide
	cellAspect = 2
)

// Model is the bubbletea model of the explorer
type Model struct {
	doc     *svgmap.Map
	viewer  *mapviewer.Viewer
	surface *termSurface
	keys    KeyMap
	help    help.Model

	width  int
	height int

	// hover is the station under the pointer or the keyboard cursor
	hover  *svgmap.Node
	cursor int
}

// New creates an explorer for a parsed map. Nil options use the viewer
// defaults; the tooltip offset is always one row.
func New(doc *svgmap.Map, opts *mapviewer.Options) Model {
	s := newTermSurface()

	var o mapviewer.Options
	if opts != nil {
		o = *opts
	}
	o.TooltipOffset = mapviewer.Offset(1)
	o.Logf = s.logf

	load := mapviewer.NewLoad()
	v := mapviewer.New(s, load, &o)
	load.Resolve(doc)

	return Model{
		doc:     doc,
		viewer:  v,
		surface: s,
		keys:    DefaultKeyMap,
		help:    help.New(),
		cursor:  -1,
	}
}

// Run starts the explorer and blocks until the user quits or ctx is done
func Run(ctx context.Context, doc *svgmap.Map, opts *mapviewer.Options) error {
	p := tea.NewProgram(New(doc, opts), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("explorer: %w", err)
	}
	return nil
}

// Viewer returns the viewer driven by the model
func (m Model) Viewer() *mapviewer.Viewer { return m.viewer }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, m.surface.flush()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.surface.banner = ""
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.ZoomIn):
		m.viewer.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.viewer.ZoomOut()
	case key.Matches(msg, m.keys.Reset):
		m.viewer.ResetZoom()
	case key.Matches(msg, m.keys.Up):
		m.nudge(0, -panStepY)
	case key.Matches(msg, m.keys.Down):
		m.nudge(0, panStepY)
	case key.Matches(msg, m.keys.Left):
		m.nudge(-panStepX, 0)
	case key.Matches(msg, m.keys.Right):
		m.nudge(panStepX, 0)
	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)
	case key.Matches(msg, m.keys.Select):
		if m.hover != nil {
			fire(m.hover.Events().Click)
		}
	case key.Matches(msg, m.keys.Fullscreen):
		m.viewer.ToggleFullscreen()
	}
	return m, m.surface.flush()
}

// nudge drags the map by a fixed distance, as a short mouse drag would
func (m *Model) nudge(dx, dy float64) {
	if m.viewer.Panning() {
		return
	}
	m.viewer.StartPan(0, 0)
	m.viewer.Pan(dx, dy)
	m.viewer.EndPan()
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := float64(msg.X), float64(msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.viewer.Wheel(-1)
		case tea.MouseButtonWheelDown:
			m.viewer.Wheel(1)
		case tea.MouseButtonLeft:
			m.viewer.StartPan(x, y)
		}
	case tea.MouseActionMotion:
		if m.viewer.Panning() {
			m.viewer.Pan(x, y)
			return
		}
		m.hoverAt(x, y)
	case tea.MouseActionRelease:
		m.viewer.EndPan()
	}
}

// hoverAt dispatches enter, move and leave events for the pointer at the
// given terminal cell
func (m *Model) hoverAt(x, y float64) {
	hit := m.stationAt(x, y-headerHeight)
	p := mapviewer.Point{X: x, Y: y}
	switch {
	case hit == m.hover && hit != nil:
		if ev := hit.Events().Move; ev != nil {
			ev(p)
		}
	case hit != m.hover:
		m.setHover(hit, p)
	}
}

func (m *Model) setHover(n *svgmap.Node, p mapviewer.Point) {
	if m.hover != nil {
		fire(m.hover.Events().Leave)
	}
	m.hover = n
	if n != nil {
		if ev := n.Events().Enter; ev != nil {
			ev(p)
		}
	}
}

// cycle moves the keyboard cursor over the station markers
func (m *Model) cycle(dir int) {
	targets := m.targets()
	if len(targets) == 0 {
		return
	}
	m.cursor = (m.cursor + dir + len(targets)) % len(targets)
	n := targets[m.cursor]
	cx, cy, _ := m.project(n)
	m.setHover(n, mapviewer.Point{X: cx, Y: cy + headerHeight})
}

// targets lists the wired circle markers, or every positioned station when
// the map has none
func (m *Model) targets() []*svgmap.Node {
	var circles, all []*svgmap.Node
	for _, n := range m.stationNodes() {
		if _, _, ok := n.Position(); !ok {
			continue
		}
		all = append(all, n)
		if n.Kind() == mapviewer.KindCircle {
			circles = append(circles, n)
		}
	}
	if len(circles) > 0 {
		return circles
	}
	return all
}

func (m *Model) stationNodes() []*svgmap.Node {
	var nodes []*svgmap.Node
	for _, st := range m.viewer.Stations() {
		if n, ok := st.Element().(*svgmap.Node); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// stationAt returns the station nearest to the canvas cell, if any is close
// enough to be under the pointer
func (m *Model) stationAt(x, y float64) *svgmap.Node {
	scale := m.viewer.Viewport().Scale * m.fit()
	var best *svgmap.Node
	bestDist := math.Inf(1)
	for _, n := range m.stationNodes() {
		cx, cy, ok := m.project(n)
		if !ok {
			continue
		}
		rx, ry := 1.0, 0.5
		switch n.Kind() {
		case mapviewer.KindCircle:
			rx = math.Max(rx, n.Radius()*scale)
			ry = math.Max(ry, n.Radius()*scale/cellAspect)
		case mapviewer.KindText:
			// text is anchored at its start, the label extends to the right
			w := float64(len([]rune(n.Text())))
			if y >= cy-ry && y <= cy+ry && x >= cx && x < cx+w {
				if d := math.Abs(y - cy); d < bestDist {
					best, bestDist = n, d
				}
			}
			continue
		}
		dx, dy := x-cx, y-cy
		if math.Abs(dx) > rx || math.Abs(dy) > ry {
			continue
		}
		if d := math.Hypot(dx, dy); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// canvasSize returns the map area in cells
func (m Model) canvasSize() (int, int) {
	h := m.height - headerHeight - 1 - lipgloss.Height(m.help.View(m.keys))
	if h < 1 {
		h = 1
	}
	w := m.width
	if w < 1 {
		w = 1
	}
	return w, h
}

// fit is the number of cells per map unit that fits the view box into the
// canvas at scale 1
func (m Model) fit() float64 {
	w, h := m.canvasSize()
	vb := m.doc.ViewBox()
	return math.Min(float64(w)/vb.W, cellAspect*float64(h)/vb.H)
}

// base maps map units to canvas cells at scale 1
func (m Model) base() matrix.Matrix {
	vb := m.doc.ViewBox()
	k := m.fit()
	return matrix.Translate(-vb.X, -vb.Y).Mul(matrix.Matrix{k, 0, 0, k / cellAspect, 0, 0})
}

// projection maps map units to canvas cells under the current viewport
func (m Model) projection() matrix.Matrix {
	return m.base().Mul(m.viewer.Transform())
}

// project returns the canvas cell of a node's anchor point
func (m Model) project(n *svgmap.Node) (float64, float64, bool) {
	x, y, ok := n.Position()
	if !ok {
		return 0, 0, false
	}
	cx, cy := m.projection().Apply(x, y)
	return cx, cy, true
}

func fire(fn func()) {
	if fn != nil {
		fn()
	}
}
