package svgmap

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/recera/transitmap/pkg/components/mapviewer"
)

const sampleMap = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0, 0, 400 300">
  <title>Sample</title>
  <g id="legend"><text x="10" y="20">Legend</text></g>
  <circle id="Raffles_Place_Station" cx="100" cy="120" r="5"/>
  <circle cx="200" cy="80" r="4"><title>City Hall Station</title></circle>
  <g id="Bugis_Station">
    <circle cx="300" cy="40" r="6"/>
    <circle cx="310" cy="60" r="6"/>
  </g>
  <circle id="Raffles_Place_Station" cx="1" cy="1" r="1"/>
</svg>`

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleMap))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d := cmp.Diff(Rect{W: 400, H: 300}, m.ViewBox()); d != "" {
		t.Errorf("viewBox mismatch (-want +got):\n%s", d)
	}

	elements, err := m.Elements()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tags []string
	for _, el := range elements {
		tags = append(tags, el.Kind().String())
	}
	want := []string{"other", "g", "text", "circle", "circle", "other", "g", "circle", "circle", "circle"}
	if d := cmp.Diff(want, tags); d != "" {
		t.Errorf("element kinds mismatch (-want +got):\n%s", d)
	}

	raffles := m.Node("Raffles_Place_Station")
	if raffles == nil {
		t.Fatal("Expected node keyed by id")
	}
	if raffles.Radius() != 5 {
		t.Errorf("Expected radius 5, got %v", raffles.Radius())
	}
	if x, y, ok := raffles.Position(); !ok || x != 100 || y != 120 {
		t.Errorf("Expected position (100, 120), got (%v, %v, %v)", x, y, ok)
	}

	// Duplicate ids get a generated key
	last := elements[len(elements)-1]
	if last.ID() != "Raffles_Place_Station" || last.Key() == "Raffles_Place_Station" {
		t.Errorf("Expected duplicate id to get its own key, got id=%q key=%q", last.ID(), last.Key())
	}
}

func TestNode_TitleAndText(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleMap))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elements, _ := m.Elements()

	titled := elements[4]
	if got := titled.Title(); got != "City Hall Station" {
		t.Errorf("Title() = %q, want %q", got, "City Hall Station")
	}
	if got := mapviewer.DisplayLabel(titled.ID(), titled.Title(), titled.Text()); got != "City Hall" {
		t.Errorf("DisplayLabel() = %q, want %q", got, "City Hall")
	}

	legend := elements[1]
	if got := strings.TrimSpace(legend.Text()); got != "Legend" {
		t.Errorf("group Text() = %q, want %q", got, "Legend")
	}

	group := m.Node("Bugis_Station")
	if x, y, ok := group.Position(); !ok || x != 305 || y != 50 {
		t.Errorf("Expected group position (305, 50), got (%v, %v, %v)", x, y, ok)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not svg", `<html><body/></html>`},
		{"empty", ``},
		{"broken", `<svg><circle></svg`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := Parse(strings.NewReader(`<html/>`)); !errors.Is(err, ErrNotSVG) {
		t.Errorf("Expected ErrNotSVG, got %v", err)
	}
}

func TestParse_SizeFallback(t *testing.T) {
	m, err := Parse(strings.NewReader(`<svg width="640px" height="480"></svg>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := cmp.Diff(Rect{W: 640, H: 480}, m.ViewBox()); d != "" {
		t.Errorf("size fallback mismatch (-want +got):\n%s", d)
	}
}

func TestMap_DrivesViewer(t *testing.T) {
	m, err := Parse(strings.NewReader(sampleMap))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	load := mapviewer.NewLoad()
	v := mapviewer.New(nopSurface{}, load, &mapviewer.Options{Logf: func(string, ...interface{}) {}})
	load.Resolve(m)

	var labels []string
	for _, st := range v.Stations() {
		labels = append(labels, st.Label())
	}
	want := []string{"Legend", "Raffles Place", "City Hall", "Bugis", "", "", "Raffles Place"}
	if d := cmp.Diff(want, labels); d != "" {
		t.Errorf("station labels mismatch (-want +got):\n%s", d)
	}

	// Events were stored on the nodes
	if m.Node("Raffles_Place_Station").Events().Enter == nil {
		t.Error("Expected viewer to attach events to the node")
	}
}

func TestGenerate_DemoNetwork(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, DemoNetwork()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := Parse(&buf)
	if err != nil {
		t.Fatalf("generated map does not parse: %v", err)
	}
	if d := cmp.Diff(Rect{W: 800, H: 600}, m.ViewBox()); d != "" {
		t.Errorf("viewBox mismatch (-want +got):\n%s", d)
	}

	raffles := m.Node("Raffles_Place_Station")
	if raffles == nil {
		t.Fatal("Expected Raffles_Place_Station marker")
	}
	if raffles.Radius() != 9 {
		t.Errorf("Expected interchange radius 9, got %v", raffles.Radius())
	}
	if raffles.Title() != "Raffles Place" {
		t.Errorf("Expected title attribute, got %q", raffles.Title())
	}
	if bugis := m.Node("Bugis_Station"); bugis == nil || bugis.Radius() != 6 {
		t.Errorf("Expected Bugis as a regular station, got %+v", bugis)
	}

	circles := 0
	elements, _ := m.Elements()
	for _, el := range elements {
		if el.Kind() == mapviewer.KindCircle {
			circles++
		}
	}
	if circles != 10 {
		t.Errorf("Expected 10 station markers, got %d", circles)
	}
}

func TestGenerate_Errors(t *testing.T) {
	if err := Generate(&bytes.Buffer{}, Network{}); err == nil {
		t.Error("Expected error for empty size")
	}
	if err := Generate(failingWriter{}, DemoNetwork()); err == nil {
		t.Error("Expected write error to be reported")
	}
}

func TestGenerate_EscapesNames(t *testing.T) {
	odd := Station{Name: `Smith & "Sons" <Wharf>`, X: 100, Y: 100}
	plain := Station{Name: "Quay", X: 200, Y: 100}
	n := Network{
		Title:  "Harbour & Docks",
		Width:  300,
		Height: 200,
		Lines:  []Line{{Code: "h&d", Color: "#0055aa", Stations: []Station{odd, plain}}},
	}

	var buf bytes.Buffer
	if err := Generate(&buf, n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := Parse(&buf)
	if err != nil {
		t.Fatalf("generated map does not parse: %v", err)
	}

	node := m.Node(odd.ID())
	if node == nil {
		t.Fatalf("Expected marker %q", odd.ID())
	}
	if node.Title() != odd.Name {
		t.Errorf("Expected title %q, got %q", odd.Name, node.Title())
	}
	if m.Node("h&d_line") == nil {
		t.Error("Expected line id to round-trip")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

type nopSurface struct{}

func (nopSurface) ApplyTransform(float64, float64, float64) {}
func (nopSurface) SetTooltip(string, float64, float64, bool) {}
func (nopSurface) SetMarkerStyle(string, float64, string) {}
func (nopSurface) SetGrabbing(bool) {}
func (nopSurface) Origin() (float64, float64) { return 0, 0 }
