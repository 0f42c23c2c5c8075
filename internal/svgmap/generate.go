package svgmap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// Station is a stop drawn on a generated map
type Station struct {
	Name string
	X, Y int
}

// ID returns the element id of the station marker, e.g. "Raffles_Place_Station"
func (s Station) ID() string {
	return strings.ReplaceAll(s.Name, " ", "_") + "_Station"
}

// Line is a service drawn through a sequence of stations
type Line struct {
	Code     string
	Name     string
	Color    string
	Stations []Station
}

// Network is the input of Generate
type Network struct {
	Title  string
	Width  int
	Height int
	Lines  []Line
}

// DemoNetwork returns a small downtown network used by `transitmap gen-map`
func DemoNetwork() Network {
	var (
		tanjongPagar = Station{"Tanjong Pagar", 140, 420}
		rafflesPlace = Station{"Raffles Place", 300, 360}
		cityHall     = Station{"City Hall", 380, 260}
		bugis        = Station{"Bugis", 520, 200}
		marinaBay    = Station{"Marina Bay", 360, 480}
		dhobyGhaut   = Station{"Dhoby Ghaut", 300, 160}
		orchard      = Station{"Orchard", 160, 100}
		brasBasah    = Station{"Bras Basah", 420, 180}
		esplanade    = Station{"Esplanade", 500, 300}
		promenade    = Station{"Promenade", 580, 380}
	)
	return Network{
		Title:  "Downtown Transit Map",
		Width:  800,
		Height: 600,
		Lines: []Line{
			{Code: "ew", Name: "East West Line", Color: "#009645", Stations: []Station{tanjongPagar, rafflesPlace, cityHall, bugis}},
			{Code: "ns", Name: "North South Line", Color: "#d42e12", Stations: []Station{marinaBay, rafflesPlace, cityHall, dhobyGhaut, orchard}},
			{Code: "cc", Name: "Circle Line", Color: "#fa9e0d", Stations: []Station{dhobyGhaut, brasBasah, esplanade, promenade, marinaBay}},
		},
	}
}

// Generate writes the network as an SVG map. Every station is a circle whose
// id ends in "_Station" with a title attribute and a text label beside it;
// stations served by more than one line are drawn as interchanges.
func Generate(w io.Writer, n Network) error {
	if n.Width <= 0 || n.Height <= 0 {
		return fmt.Errorf("invalid map size %dx%d", n.Width, n.Height)
	}
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(n.Width, n.Height, fmt.Sprintf(`viewBox="0 0 %d %d"`, n.Width, n.Height))
	canvas.Title(n.Title)
	canvas.Rect(0, 0, n.Width, n.Height, "fill:#ffffff")

	served := make(map[string]int)
	var order []Station
	for _, line := range n.Lines {
		xs := make([]int, 0, len(line.Stations))
		ys := make([]int, 0, len(line.Stations))
		for _, st := range line.Stations {
			xs = append(xs, st.X)
			ys = append(ys, st.Y)
			if served[st.ID()] == 0 {
				order = append(order, st)
			}
			served[st.ID()]++
		}
		canvas.Polyline(xs, ys,
			fmt.Sprintf(`id="%s_line"`, escapeAttr(line.Code)),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:6;stroke-linejoin:round", line.Color))
	}

	for _, st := range order {
		r, style := 6, "fill:#ffffff;stroke:#333333;stroke-width:2"
		if served[st.ID()] > 1 {
			r, style = 9, "fill:#ffffff;stroke:#000000;stroke-width:3"
		}
		canvas.Circle(st.X, st.Y, r,
			fmt.Sprintf(`id="%s"`, escapeAttr(st.ID())),
			fmt.Sprintf(`title="%s"`, escapeAttr(st.Name)),
			style)
		canvas.Text(st.X+12, st.Y-10, st.Name, "font-family:sans-serif;font-size:12px;fill:#222222")
	}
	canvas.End()
	return ew.err
}

// escapeAttr escapes a value for a double-quoted attribute
func escapeAttr(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// errWriter remembers the first write error, svgo does not report them
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
