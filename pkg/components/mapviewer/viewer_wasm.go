//go:build js && wasm
// +build js,wasm

package mapviewer

import (
	"fmt"
	"strconv"
	"strings"
	"syscall/js"
)

// Mount binds a viewer to the page DOM. When the container or the embedded
// object is missing the returned viewer is inert and the error says why;
// callers may ignore it.
func Mount(cfg MountConfig, opts *Options) (*Viewer, error) {
	document := js.Global().Get("document")
	container := elementByID(document, cfg.ContainerID)
	object := elementByID(document, cfg.ObjectID)
	if !container.Truthy() || !object.Truthy() {
		return New(nil, nil, opts), fmt.Errorf("map viewer disabled: #%s or #%s not found", cfg.ContainerID, cfg.ObjectID)
	}

	s := &domSurface{
		document:   document,
		window:     js.Global().Get("window"),
		container:  container,
		object:     object,
		tooltip:    elementByID(document, cfg.TooltipID),
		fullscreen: elementByID(document, cfg.FullscreenID),
		markers:    make(map[string]js.Value),
	}
	load := NewLoad()
	v := New(s, load, opts)

	s.bindInput(v)
	s.bindControl(cfg.ZoomInID, v.ZoomIn)
	s.bindControl(cfg.ZoomOutID, v.ZoomOut)
	s.bindControl(cfg.ResetID, v.ResetZoom)
	s.bindControl(cfg.FullscreenID, v.ToggleFullscreen)
	s.watchLoad(load)
	return v, nil
}

// domSurface renders a Viewer onto the page
type domSurface struct {
	document   js.Value
	window     js.Value
	container  js.Value
	object     js.Value
	tooltip    js.Value
	fullscreen js.Value

	// markers maps element keys to nodes inside the embedded document
	markers map[string]js.Value
	// funcs keeps listener callbacks referenced for the life of the page
	funcs []js.Func
}

func (s *domSurface) ApplyTransform(scale, tx, ty float64) {
	vp := Viewport{Scale: scale, TranslateX: tx, TranslateY: ty}
	s.object.Get("style").Set("transform", vp.CSS())
}

func (s *domSurface) SetTooltip(text string, x, y float64, visible bool) {
	if !s.tooltip.Truthy() {
		return
	}
	style := s.tooltip.Get("style")
	if !visible {
		style.Set("display", "none")
		return
	}
	s.tooltip.Set("textContent", text)
	style.Set("left", formatPx(x)+"px")
	style.Set("top", formatPx(y)+"px")
	style.Set("display", "block")
}

func (s *domSurface) SetMarkerStyle(key string, radius float64, color string) {
	node, ok := s.markers[key]
	if !ok {
		return
	}
	node.Call("setAttribute", "r", formatPx(radius))
	if color == "" {
		node.Get("style").Call("removeProperty", "fill")
		return
	}
	node.Get("style").Set("fill", color)
}

func (s *domSurface) SetGrabbing(grabbing bool) {
	classList := s.container.Get("classList")
	if grabbing {
		classList.Call("add", "grabbing")
		s.container.Get("style").Set("cursor", "grabbing")
		return
	}
	classList.Call("remove", "grabbing")
	s.container.Get("style").Set("cursor", "grab")
}

func (s *domSurface) Origin() (float64, float64) {
	rect := s.container.Call("getBoundingClientRect")
	return rect.Get("left").Float(), rect.Get("top").Float()
}

func (s *domSurface) IsFullscreen() bool {
	return s.document.Get("fullscreenElement").Truthy()
}

func (s *domSurface) RequestFullscreen() error {
	if s.container.Get("requestFullscreen").Type() != js.TypeFunction {
		return fmt.Errorf("requestFullscreen is not available")
	}
	s.container.Call("requestFullscreen")
	return nil
}

func (s *domSurface) ExitFullscreen() error {
	if s.document.Get("exitFullscreen").Type() != js.TypeFunction {
		return fmt.Errorf("exitFullscreen is not available")
	}
	s.document.Call("exitFullscreen")
	return nil
}

func (s *domSurface) SetFullscreenIcon(expanded bool) {
	if !s.fullscreen.Truthy() {
		return
	}
	icon := s.fullscreen.Call("querySelector", "i")
	if !icon.Truthy() {
		return
	}
	if expanded {
		icon.Get("classList").Call("replace", "fa-expand", "fa-compress")
		return
	}
	icon.Get("classList").Call("replace", "fa-compress", "fa-expand")
}

func (s *domSurface) Notify(message string) {
	s.window.Call("alert", message)
}

// listen attaches fn to target and keeps the callback referenced
func (s *domSurface) listen(target js.Value, event string, passive bool, fn func(ev js.Value)) {
	if !target.Truthy() {
		return
	}
	jsFunc := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ev := js.Undefined()
		if len(args) > 0 {
			ev = args[0]
		}
		fn(ev)
		return nil
	})
	s.funcs = append(s.funcs, jsFunc)
	opts := js.Global().Get("Object").New()
	opts.Set("passive", passive)
	target.Call("addEventListener", event, jsFunc, opts)
}

func (s *domSurface) bindControl(id string, action func()) {
	s.listen(elementByID(s.document, id), "click", true, func(js.Value) { action() })
}

func (s *domSurface) bindInput(v *Viewer) {
	s.listen(s.container, "mousedown", false, func(ev js.Value) {
		ev.Call("preventDefault")
		v.StartPan(ev.Get("clientX").Float(), ev.Get("clientY").Float())
	})
	s.listen(s.container, "mousemove", true, func(ev js.Value) {
		v.Pan(ev.Get("clientX").Float(), ev.Get("clientY").Float())
	})
	s.listen(s.container, "mouseup", true, func(js.Value) { v.EndPan() })
	s.listen(s.container, "mouseleave", true, func(js.Value) { v.EndPan() })

	s.listen(s.container, "touchstart", false, func(ev js.Value) {
		ev.Call("preventDefault")
		v.TouchStart(touchPoints(ev))
	})
	s.listen(s.container, "touchmove", false, func(ev js.Value) {
		ev.Call("preventDefault")
		v.TouchMove(touchPoints(ev))
	})
	s.listen(s.container, "touchend", true, func(js.Value) { v.TouchEnd() })

	s.listen(s.container, "wheel", false, func(ev js.Value) {
		ev.Call("preventDefault")
		v.Wheel(ev.Get("deltaY").Float())
	})
}

// watchLoad settles load from the object's load event, or right away when
// the SVG document has already been parsed
func (s *domSurface) watchLoad(load *Load) {
	if doc := s.svgDocument(); doc.Truthy() {
		load.Resolve(&domDocument{surface: s, doc: doc})
		return
	}
	s.listen(s.object, "load", true, func(js.Value) {
		doc := s.svgDocument()
		if !doc.Truthy() {
			load.Fail(ErrDocumentUnavailable)
			return
		}
		load.Resolve(&domDocument{surface: s, doc: doc})
	})
}

// svgDocument returns the embedded SVG document, or undefined while the
// object still holds a blank or cross-origin document
func (s *domSurface) svgDocument() js.Value {
	doc := s.object.Get("contentDocument")
	if !doc.Truthy() {
		return js.Undefined()
	}
	root := doc.Get("documentElement")
	if !root.Truthy() || strings.ToLower(root.Get("tagName").String()) != "svg" {
		return js.Undefined()
	}
	return doc
}

// toPage converts client coordinates inside the embedded document into
// client coordinates of the host page. The bounding rect includes the zoom
// transform while the inner document does not.
func (s *domSurface) toPage(ev js.Value) Point {
	rect := s.object.Call("getBoundingClientRect")
	box := Rect{
		X: rect.Get("left").Float(),
		Y: rect.Get("top").Float(),
		W: rect.Get("width").Float(),
		H: rect.Get("height").Float(),
	}
	inner := Point{X: ev.Get("clientX").Float(), Y: ev.Get("clientY").Float()}
	return EmbeddedToPage(inner, box, s.object.Get("offsetWidth").Float(), s.object.Get("offsetHeight").Float())
}

// domDocument exposes the embedded SVG document to the viewer
type domDocument struct {
	surface *domSurface
	doc     js.Value
}

func (d *domDocument) Elements() ([]Element, error) {
	if !d.doc.Truthy() {
		return nil, ErrDocumentUnavailable
	}
	nodes := d.doc.Call("querySelectorAll", "circle, text, g")
	n := nodes.Get("length").Int()
	elements := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		node := nodes.Call("item", i)
		el := &domElement{surface: d.surface, node: node}
		el.key = el.ID()
		if el.key == "" {
			el.key = "marker-" + strconv.Itoa(i)
		}
		if el.Kind() == KindCircle {
			d.surface.markers[el.key] = node
		}
		elements = append(elements, el)
	}
	return elements, nil
}

// domElement is a node of the embedded SVG document
type domElement struct {
	surface *domSurface
	node    js.Value
	key     string
}

func (e *domElement) Key() string { return e.key }

func (e *domElement) ID() string { return attr(e.node, "id") }

func (e *domElement) Title() string {
	if t := attr(e.node, "title"); t != "" {
		return t
	}
	child := e.node.Call("querySelector", "title")
	if child.Truthy() {
		return child.Get("textContent").String()
	}
	return ""
}

func (e *domElement) Text() string {
	t := e.node.Get("textContent")
	if !t.Truthy() {
		return ""
	}
	return t.String()
}

func (e *domElement) Kind() Kind {
	switch strings.ToLower(e.node.Get("tagName").String()) {
	case "circle":
		return KindCircle
	case "text":
		return KindText
	case "g":
		return KindGroup
	default:
		return KindOther
	}
}

func (e *domElement) Radius() float64 {
	r, err := strconv.ParseFloat(attr(e.node, "r"), 64)
	if err != nil {
		return 0
	}
	return r
}

func (e *domElement) Listen(events StationEvents) {
	s := e.surface
	if events.Enter != nil {
		s.listen(e.node, "mouseenter", true, func(ev js.Value) { events.Enter(s.toPage(ev)) })
	}
	if events.Move != nil {
		s.listen(e.node, "mousemove", true, func(ev js.Value) { events.Move(s.toPage(ev)) })
	}
	if events.Leave != nil {
		s.listen(e.node, "mouseleave", true, func(js.Value) { events.Leave() })
	}
	if events.Click != nil {
		s.listen(e.node, "click", true, func(js.Value) { events.Click() })
	}
}

func elementByID(document js.Value, id string) js.Value {
	if id == "" {
		return js.Null()
	}
	return document.Call("getElementById", id)
}

func attr(node js.Value, name string) string {
	v := node.Call("getAttribute", name)
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	return v.String()
}

func touchPoints(ev js.Value) []Point {
	touches := ev.Get("touches")
	if !touches.Truthy() {
		return nil
	}
	n := touches.Get("length").Int()
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		t := touches.Index(i)
		points = append(points, Point{X: t.Get("clientX").Float(), Y: t.Get("clientY").Float()})
	}
	return points
}
