package viewport

import "img-compare/pkg/geometry"

// PanDrag tracks one pointer-driven pan gesture in canvas coordinates.
type PanDrag struct {
	anchor geometry.Point2D
	active bool
}

// Begin records the anchor so the image point under the pointer follows it.
func (d *PanDrag) Begin(pointer, pan geometry.Point2D) {
	d.anchor = pointer.Sub(pan)
	d.active = true
}

// Move returns the pan offset for the new pointer position.
func (d *PanDrag) Move(pointer geometry.Point2D) (geometry.Point2D, bool) {
	if !d.active {
		return geometry.Point2D{}, false
	}
	return pointer.Sub(d.anchor), true
}

// End finishes the gesture.
func (d *PanDrag) End() {
	d.active = false
}

// Active reports whether a gesture is in progress.
func (d *PanDrag) Active() bool {
	return d.active
}
