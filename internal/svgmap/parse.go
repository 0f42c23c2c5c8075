// Package svgmap reads and writes SVG transit maps outside the browser. A
// parsed Map implements mapviewer.Document so that non-DOM surfaces can drive
// the same viewer the WASM client uses.
package svgmap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/recera/transitmap/pkg/components/mapviewer"
)

// ErrNotSVG is returned when the document root is not an <svg> element
var ErrNotSVG = errors.New("svgmap: root element is not <svg>")

// Rect is an axis-aligned rectangle in map units
type Rect struct {
	X, Y, W, H float64
}

// Map is a parsed SVG document
type Map struct {
	Root    *Node
	nodes   []*Node
	byKey   map[string]*Node
	viewBox Rect
}

// Node is an element of a parsed SVG document
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
	Parent   *Node

	key    string
	text   strings.Builder
	events mapviewer.StationEvents
}

// ParseFile parses the SVG file at path
func ParseFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map: %w", err)
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}

// Parse reads an SVG document into a node tree
func Parse(r io.Reader) (*Map, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	m := &Map{byKey: make(map[string]*Node)}
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid SVG: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: strings.ToLower(t.Name.Local), Attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if m.Root != nil {
					return nil, fmt.Errorf("invalid SVG: multiple root elements")
				}
				m.Root = n
			} else {
				parent := stack[len(stack)-1]
				n.Parent = parent
				parent.Children = append(parent.Children, n)
			}
			n.key = n.Attrs["id"]
			if n.key == "" || m.byKey[n.key] != nil {
				n.key = "marker-" + strconv.Itoa(len(m.nodes))
			}
			m.byKey[n.key] = n
			m.nodes = append(m.nodes, n)
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			// textContent includes the text of every descendant
			for _, open := range stack {
				open.text.Write(t)
			}
		}
	}

	if m.Root == nil || m.Root.Tag != "svg" {
		return nil, ErrNotSVG
	}
	m.viewBox = parseViewBox(m.Root)
	return m, nil
}

// Elements returns every node below the root in document order
func (m *Map) Elements() ([]mapviewer.Element, error) {
	elements := make([]mapviewer.Element, 0, len(m.nodes))
	for _, n := range m.nodes {
		if n == m.Root {
			continue
		}
		elements = append(elements, n)
	}
	return elements, nil
}

// Node returns the node with the given key, or nil
func (m *Map) Node(key string) *Node {
	return m.byKey[key]
}

// ViewBox returns the drawing bounds declared by the root element
func (m *Map) ViewBox() Rect {
	return m.viewBox
}

func parseViewBox(root *Node) Rect {
	if vb := root.Attrs["viewBox"]; vb != "" {
		f := strings.FieldsFunc(vb, func(r rune) bool { return r == ' ' || r == ',' })
		if len(f) == 4 {
			var v [4]float64
			ok := true
			for i := range f {
				x, err := strconv.ParseFloat(f[i], 64)
				if err != nil {
					ok = false
					break
				}
				v[i] = x
			}
			if ok && v[2] > 0 && v[3] > 0 {
				return Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
			}
		}
	}
	return Rect{W: length(root.Attrs["width"], 300), H: length(root.Attrs["height"], 150)}
}

// length parses an SVG length such as "800" or "800px", falling back to def
func length(s string, def float64) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// Key addresses the node: its id, or a generated "marker-N" when the id is
// missing or duplicated
func (n *Node) Key() string { return n.key }

func (n *Node) ID() string { return n.Attrs["id"] }

// Title returns the title attribute or the text of a <title> child
func (n *Node) Title() string {
	if t := n.Attrs["title"]; t != "" {
		return t
	}
	for _, c := range n.Children {
		if c.Tag == "title" {
			return strings.TrimSpace(c.text.String())
		}
	}
	return ""
}

// Text returns the concatenated character data of the node and its descendants
func (n *Node) Text() string { return n.text.String() }

func (n *Node) Kind() mapviewer.Kind {
	switch n.Tag {
	case "circle":
		return mapviewer.KindCircle
	case "text":
		return mapviewer.KindText
	case "g":
		return mapviewer.KindGroup
	default:
		return mapviewer.KindOther
	}
}

func (n *Node) Radius() float64 {
	if n.Tag != "circle" {
		return 0
	}
	return number(n.Attrs["r"])
}

// Listen stores the station callbacks so a surface can dispatch to them
func (n *Node) Listen(events mapviewer.StationEvents) { n.events = events }

// Events returns the callbacks attached by the viewer
func (n *Node) Events() mapviewer.StationEvents { return n.events }

// Position returns the anchor point of the node in map units: the center of
// a circle, the origin of a text, or the mean of a group's positioned
// descendants
func (n *Node) Position() (x, y float64, ok bool) {
	switch n.Tag {
	case "circle":
		return number(n.Attrs["cx"]), number(n.Attrs["cy"]), true
	case "text":
		return number(n.Attrs["x"]), number(n.Attrs["y"]), true
	case "g":
		var sx, sy float64
		count := 0
		for _, c := range n.Children {
			if cx, cy, ok := c.Position(); ok {
				sx += cx
				sy += cy
				count++
			}
		}
		if count == 0 {
			return 0, 0, false
		}
		return sx / float64(count), sy / float64(count), true
	default:
		return 0, 0, false
	}
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	if err != nil {
		return 0
	}
	return v
}
