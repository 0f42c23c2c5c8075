package mapviewer

// Surface is the rendering target of a Viewer. The DOM binding, the terminal
// explorer and test fakes all implement it.
type Surface interface {
	// ApplyTransform renders the graphic translated by (tx, ty) then scaled by scale
	ApplyTransform(scale, tx, ty float64)
	// SetTooltip moves the shared tooltip to (x, y), container-relative
	SetTooltip(text string, x, y float64, visible bool)
	// SetMarkerStyle restyles a circular station marker. An empty color
	// clears the override.
	SetMarkerStyle(key string, radius float64, color string)
	// SetGrabbing toggles the "grabbing" visual state of the container
	SetGrabbing(grabbing bool)
	// Origin returns the top-left corner of the container's bounding box
	Origin() (left, top float64)
}

// Fullscreener is implemented by surfaces that can present the container full screen
type Fullscreener interface {
	IsFullscreen() bool
	RequestFullscreen() error
	ExitFullscreen() error
	SetFullscreenIcon(expanded bool)
}

// Notifier is implemented by surfaces that can show a user-facing message
type Notifier interface {
	Notify(message string)
}

// Kind classifies the graphical nodes of an embedded document
type Kind uint8

const (
	// KindOther is any node that is not a circle, text or group
	KindOther Kind = iota
	// KindCircle is a circular marker with a radius
	KindCircle
	// KindText is a text label
	KindText
	// KindGroup is a group node
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindText:
		return "text"
	case KindGroup:
		return "g"
	default:
		return "other"
	}
}

// StationEvents are the hover/click callbacks attached to a station element
type StationEvents struct {
	Enter func(p Point)
	Move  func(p Point)
	Leave func()
	Click func()
}

// Element is a read-only view of a node inside the embedded graphic
type Element interface {
	// Key addresses the node on the surface (SetMarkerStyle)
	Key() string
	ID() string
	Title() string
	Text() string
	Kind() Kind
	// Radius is the current radius of a circle, 0 for other kinds
	Radius() float64
	// Listen attaches the station callbacks to the node
	Listen(events StationEvents)
}

// Document is the queryable content of the embedded graphic once loaded
type Document interface {
	Elements() ([]Element, error)
}
