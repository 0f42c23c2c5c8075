package mapviewer

import (
	"strconv"

	"seehuhn.de/go/geom/matrix"
)

// Matrix returns the viewport as an affine map: scale about the origin,
// then translate.
func (vp Viewport) Matrix() matrix.Matrix {
	return matrix.Matrix{vp.Scale, 0, 0, vp.Scale, vp.TranslateX, vp.TranslateY}
}

// CSS returns the viewport as a CSS transform value
func (vp Viewport) CSS() string {
	return "translate(" + formatPx(vp.TranslateX) + "px, " + formatPx(vp.TranslateY) + "px) scale(" + formatPx(vp.Scale) + ")"
}

// Transform returns the current viewport matrix
func (v *Viewer) Transform() matrix.Matrix {
	return v.view.Matrix()
}

// ScreenToMap converts a container-relative point into the graphic's own
// coordinate system
func (v *Viewer) ScreenToMap(x, y float64) (float64, float64) {
	return v.view.Matrix().Inv().Apply(x, y)
}

// MapToScreen converts a point of the graphic into container-relative coordinates
func (v *Viewer) MapToScreen(x, y float64) (float64, float64) {
	return v.view.Matrix().Apply(x, y)
}

// EmbeddedToPage maps client coordinates inside an embedded document onto the
// host page. box is the transformed bounding rectangle of the embedding
// element; width and height are its untransformed layout size.
func EmbeddedToPage(p Point, box Rect, width, height float64) Point {
	sx, sy := 1.0, 1.0
	if width > 0 {
		sx = box.W / width
	}
	if height > 0 {
		sy = box.H / height
	}
	return Point{X: box.X + p.X*sx, Y: box.Y + p.Y*sy}
}

func formatPx(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
