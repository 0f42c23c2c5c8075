package mapviewer

import (
	"fmt"
	"regexp"
	"strings"
)

var stationWord = regexp.MustCompile(`(?i)station`)

// DisplayLabel derives the tooltip text of a station from the first
// non-empty of its id, title and text content: underscores become spaces,
// the word "station" is dropped in any case, and the result is trimmed.
//
//	DisplayLabel("Raffles_Place_Station", "", "") == "Raffles Place"
func DisplayLabel(id, title, text string) string {
	name := id
	if name == "" {
		name = title
	}
	if name == "" {
		name = text
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = stationWord.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// IsStationLike reports whether an element takes part in station
// interaction: circles, text labels, and groups whose id mentions "station".
func IsStationLike(el Element) bool {
	switch el.Kind() {
	case KindCircle, KindText:
		return true
	case KindGroup:
		return strings.Contains(strings.ToLower(el.ID()), "station")
	default:
		return false
	}
}

// StationMessage is the notification shown when a station is clicked
func StationMessage(label string) string {
	return fmt.Sprintf("Station: %s (details coming soon)", label)
}

// Station is an element of the embedded graphic wired for hover and click
type Station struct {
	el      Element
	label   string
	radius  float64
	hovered bool
}

// Element returns the underlying graphic node
func (s *Station) Element() Element { return s.el }

// Label returns the derived display label
func (s *Station) Label() string { return s.label }

// Radius returns the marker radius as last applied by the viewer
func (s *Station) Radius() float64 { return s.radius }

// Hovered reports whether the pointer is over the station
func (s *Station) Hovered() bool { return s.hovered }

// Stations returns the stations wired by the last station setup
func (v *Viewer) Stations() []*Station { return v.stations }

// HoveredStation returns the station under the pointer, or nil
func (v *Viewer) HoveredStation() *Station { return v.hovered }

// setupStationInteraction runs once the embedded document is available
func (v *Viewer) setupStationInteraction(doc Document, err error) {
	if err == nil && doc == nil {
		err = ErrDocumentUnavailable
	}
	if err != nil {
		v.opts.Logf("[MapViewer] station setup skipped: %v", err)
		return
	}
	elements, err := doc.Elements()
	if err != nil {
		v.opts.Logf("[MapViewer] cannot read embedded document: %v", err)
		return
	}

	stations := make([]*Station, 0, len(elements))
	for _, el := range elements {
		if el == nil || !IsStationLike(el) {
			continue
		}
		st := &Station{
			el:     el,
			label:  DisplayLabel(el.ID(), el.Title(), el.Text()),
			radius: el.Radius(),
		}
		el.Listen(StationEvents{
			Enter: func(p Point) { v.HoverEnter(st, p) },
			Move:  func(p Point) { v.HoverMove(st, p) },
			Leave: func() { v.HoverLeave(st) },
			Click: func() { v.Click(st) },
		})
		stations = append(stations, st)
	}
	v.stations = stations
	v.opts.Logf("[MapViewer] wired %d stations", len(stations))
}

// HoverEnter shows the station's tooltip near p and enlarges circle markers
func (v *Viewer) HoverEnter(st *Station, p Point) {
	if !v.Enabled() || st == nil {
		return
	}
	if v.hovered != nil && v.hovered != st {
		v.HoverLeave(v.hovered)
	}
	v.hovered = st
	v.showTooltip(st, p)
	if st.hovered {
		return
	}
	st.hovered = true
	if st.el.Kind() == KindCircle {
		st.radius *= v.opts.HoverScale
		v.surface.SetMarkerStyle(st.el.Key(), st.radius, v.opts.HoverColor)
	}
}

// HoverMove keeps the tooltip tracking the pointer
func (v *Viewer) HoverMove(st *Station, p Point) {
	if !v.Enabled() || st == nil || !st.hovered {
		return
	}
	v.showTooltip(st, p)
}

// HoverLeave hides the tooltip and restores circle markers
func (v *Viewer) HoverLeave(st *Station) {
	if !v.Enabled() || st == nil {
		return
	}
	v.surface.SetTooltip("", 0, 0, false)
	if v.hovered == st {
		v.hovered = nil
	}
	if !st.hovered {
		return
	}
	st.hovered = false
	if st.el.Kind() == KindCircle {
		st.radius /= v.opts.HoverScale
		v.surface.SetMarkerStyle(st.el.Key(), st.radius, "")
	}
}

// Click surfaces the station label as a notification
func (v *Viewer) Click(st *Station) {
	if !v.Enabled() || st == nil {
		return
	}
	if v.opts.OnStationClick != nil {
		v.opts.OnStationClick(st.label)
	}
	if n, ok := v.surface.(Notifier); ok {
		n.Notify(StationMessage(st.label))
	}
}

func (v *Viewer) showTooltip(st *Station, p Point) {
	left, top := v.surface.Origin()
	x := p.X - left
	y := p.Y - top - *v.opts.TooltipOffset
	v.surface.SetTooltip(st.label, x, y, st.label != "")
}
