package explorer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/transitmap/internal/svgmap"
	"github.com/recera/transitmap/pkg/components/mapviewer"
)

// Style definitions
var (
	primaryColor = lipgloss.Color("#3b82f6")
	mutedColor   = lipgloss.Color("#94a3b8")
	warningColor = lipgloss.Color("#f59e0b")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	bannerStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	tooltipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#333333"))
)

const (
	labelColor   = "#cbd5e1"
	markerColor  = "#e2e8f0"
	defaultLine  = "#64748b"
	tooltipColor = "tooltip"
)

type cell struct {
	ch rune
	fg string
}

// canvas is a grid of colored terminal cells
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{ch: ' '}
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) set(x, y int, ch rune, fg string) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = cell{ch: ch, fg: fg}
}

func (c *canvas) text(x, y int, s string, fg string) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, fg)
	}
}

// line plots a segment between two cells
func (c *canvas) line(x0, y0, x1, y1 float64, ch rune, fg string) {
	steps := math.Max(math.Abs(x1-x0), math.Abs(y1-y0))
	if steps < 1 {
		c.set(round(x0), round(y0), ch, fg)
		return
	}
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		c.set(round(x0+(x1-x0)*t), round(y0+(y1-y0)*t), ch, fg)
	}
}

func (c *canvas) String() string {
	styles := make(map[string]lipgloss.Style)
	style := func(fg string) lipgloss.Style {
		if s, ok := styles[fg]; ok {
			return s
		}
		s := lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
		if fg == tooltipColor {
			s = tooltipStyle
		}
		styles[fg] = s
		return s
	}

	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].fg == row[start].fg {
				continue
			}
			var run strings.Builder
			for _, cl := range row[start:x] {
				run.WriteRune(cl.ch)
			}
			if fg := row[start].fg; fg == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(style(fg).Render(run.String()))
			}
			start = x
		}
	}
	return b.String()
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading map…"
	}

	vp := m.viewer.Viewport()
	title := "transitmap"
	if t := m.mapTitle(); t != "" {
		title += " ─ " + t
	}
	zoom := fmt.Sprintf("%.0f%%", vp.Scale*100)
	if m.surface.expanded {
		zoom += " ⤡"
	}
	header := titleStyle.Render(title)
	if gap := m.width - lipgloss.Width(header) - lipgloss.Width(zoom); gap > 0 {
		header += strings.Repeat(" ", gap)
	}
	header += mutedStyle.Render(zoom)

	status := mutedStyle.Render(m.surface.status)
	if m.surface.banner != "" {
		status = bannerStyle.Render(m.surface.banner)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderMap(),
		status,
		m.help.View(m.keys),
	)
}

func (m Model) mapTitle() string {
	for _, c := range m.doc.Root.Children {
		if c.Tag == "title" {
			return strings.TrimSpace(c.Text())
		}
	}
	return ""
}

func (m Model) renderMap() string {
	w, h := m.canvasSize()
	c := newCanvas(w, h)
	proj := m.projection()
	scale := m.viewer.Viewport().Scale * m.fit()

	els, _ := m.doc.Elements()
	// lines first so markers and labels stay readable
	for _, el := range els {
		n := el.(*svgmap.Node)
		pts := linePoints(n)
		for i := 1; i < len(pts); i++ {
			x0, y0 := proj.Apply(pts[i-1][0], pts[i-1][1])
			x1, y1 := proj.Apply(pts[i][0], pts[i][1])
			c.line(x0, y0, x1, y1, '•', strokeColor(n))
		}
	}
	for _, el := range els {
		n := el.(*svgmap.Node)
		if n.Kind() != mapviewer.KindText {
			continue
		}
		x, y, _ := n.Position()
		cx, cy := proj.Apply(x, y)
		c.text(round(cx), round(cy), strings.TrimSpace(n.Text()), labelColor)
	}
	for _, el := range els {
		n := el.(*svgmap.Node)
		if n.Kind() != mapviewer.KindCircle {
			continue
		}
		x, y, _ := n.Position()
		cx, cy := proj.Apply(x, y)
		ch, fg := '●', markerColor
		if n.Radius()*scale >= 2 {
			ch = '◎'
		}
		if st, ok := m.surface.markers[n.Key()]; ok {
			fg = st.color
			if st.radius > n.Radius() {
				ch = '◉'
			}
		}
		c.set(round(cx), round(cy), ch, fg)
	}

	if tip := m.surface.tip; tip.visible {
		c.text(round(tip.x), round(tip.y), " "+tip.text+" ", tooltipColor)
	}
	return c.String()
}

// linePoints returns the vertices of polylines, polygons and lines
func linePoints(n *svgmap.Node) [][2]float64 {
	switch n.Tag {
	case "polyline", "polygon":
		f := strings.FieldsFunc(n.Attrs["points"], func(r rune) bool { return r == ' ' || r == ',' || r == '\n' || r == '\t' })
		pts := make([][2]float64, 0, len(f)/2)
		for i := 0; i+1 < len(f); i += 2 {
			x, errX := strconv.ParseFloat(f[i], 64)
			y, errY := strconv.ParseFloat(f[i+1], 64)
			if errX != nil || errY != nil {
				return nil
			}
			pts = append(pts, [2]float64{x, y})
		}
		if n.Tag == "polygon" && len(pts) > 2 {
			pts = append(pts, pts[0])
		}
		return pts
	case "line":
		return [][2]float64{
			{attrFloat(n, "x1"), attrFloat(n, "y1")},
			{attrFloat(n, "x2"), attrFloat(n, "y2")},
		}
	}
	return nil
}

// strokeColor reads the stroke from the attribute or the inline style
func strokeColor(n *svgmap.Node) string {
	stroke := n.Attrs["stroke"]
	for _, decl := range strings.Split(n.Attrs["style"], ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(k) == "stroke" {
			stroke = strings.TrimSpace(v)
		}
	}
	if !strings.HasPrefix(stroke, "#") {
		return defaultLine
	}
	return stroke
}

func attrFloat(n *svgmap.Node, name string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(n.Attrs[name]), 64)
	return v
}

func round(f float64) int {
	return int(math.Round(f))
}
