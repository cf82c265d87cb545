// Package interact turns abstract pointer, wheel and resize events plus
// toolbar actions into viewport and separator mutations.
package interact

import (
	"image"

	"img-compare/internal/separator"
	"img-compare/internal/viewport"
	"img-compare/pkg/geometry"
)

// State is the mutable view state the controller drives.
type State struct {
	Viewport   viewport.Viewport
	Separators separator.Set

	// Widths holds the widths of decoded images in index order.
	Widths []int

	// Bounds is the canvas rectangle in client coordinates, cached on resize.
	Bounds geometry.Rect
}

// Canvas returns the canvas size.
func (s *State) Canvas() geometry.Size {
	return s.Bounds.Size()
}

// Store serialises access to the State. Update runs fn under the store's
// lock and requests a redraw when fn reports a change.
type Store interface {
	Update(fn func(st *State) bool)
	LastFrame() *image.RGBA
}
