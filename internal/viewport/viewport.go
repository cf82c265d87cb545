// Package viewport holds the shared zoom, pan and rotation state of the
// comparison canvas.
package viewport

import (
	"math"

	"img-compare/pkg/geometry"
)

const (
	MinZoom     = 0.1
	MaxZoom     = 3.0
	MinRotation = -30.0
	MaxRotation = 30.0

	// DefaultWheelSensitivity is the zoom change per wheel delta unit.
	DefaultWheelSensitivity = 0.001
)

// Mode selects how regions map onto image space.
type Mode int

const (
	// ModeSync draws every region from one shared image-space origin.
	ModeSync Mode = iota
	// ModeSplit offsets each region's source by its own canvas offset.
	ModeSplit
)

func (m Mode) String() string {
	switch m {
	case ModeSync:
		return "Sync"
	case ModeSplit:
		return "Split"
	default:
		return "Unknown"
	}
}

// Stretch selects the reference image width used to normalize scale.
type Stretch int

const (
	StretchSmallest Stretch = iota
	StretchLargest
)

func (s Stretch) String() string {
	switch s {
	case StretchSmallest:
		return "Smallest"
	case StretchLargest:
		return "Largest"
	default:
		return "Unknown"
	}
}

// Viewport is the pan/zoom/rotation state shared by all regions.
type Viewport struct {
	Zoom     float64
	Pan      geometry.Point2D
	Rotation float64 // Seam rotation in degrees
	Mode     Mode
	Stretch  Stretch
}

// New returns a viewport at 100% zoom in split mode.
func New() Viewport {
	return Viewport{
		Zoom:    1.0,
		Mode:    ModeSplit,
		Stretch: StretchSmallest,
	}
}

// ClampZoom limits zoom to [MinZoom, MaxZoom].
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) {
		return 1.0
	}
	return geometry.Clamp(zoom, MinZoom, MaxZoom)
}

// SetZoom sets the zoom without moving the pan offset.
func (v *Viewport) SetZoom(zoom float64) {
	v.Zoom = ClampZoom(zoom)
}

// SetZoomRelative changes zoom while keeping the image point under the
// canvas center fixed.
func (v *Viewport) SetZoomRelative(zoom float64, canvas geometry.Size) {
	zoom = ClampZoom(zoom)
	if zoom == v.Zoom {
		return
	}
	if canvas.Width <= 0 || canvas.Height <= 0 || v.Zoom <= 0 {
		v.Zoom = zoom
		return
	}

	center := canvas.Center()
	imagePoint := center.Sub(v.Pan).Div(v.Zoom)
	v.Pan = center.Sub(imagePoint.Scale(zoom))
	v.Zoom = zoom
}

// CenterImagePoint returns the image-space point shown at the canvas center.
func (v Viewport) CenterImagePoint(canvas geometry.Size) geometry.Point2D {
	return canvas.Center().Sub(v.Pan).Div(v.Zoom)
}

// WheelDelta converts a wheel event into a zoom delta. Scrolling up
// (negative deltaY) zooms in; deltaX is used when deltaY is zero.
func WheelDelta(deltaX, deltaY, pixelRatio, sensitivity float64) float64 {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	if sensitivity <= 0 {
		sensitivity = DefaultWheelSensitivity
	}
	d := deltaY
	if d == 0 {
		d = deltaX
	}
	return geometry.Round2(d * -(sensitivity / pixelRatio))
}

// ApplyWheel zooms relative to the canvas center by a wheel-derived delta.
func (v *Viewport) ApplyWheel(deltaX, deltaY, pixelRatio, sensitivity float64, canvas geometry.Size) {
	delta := WheelDelta(deltaX, deltaY, pixelRatio, sensitivity)
	if delta == 0 {
		return
	}
	v.SetZoomRelative(geometry.Round2(ClampZoom(v.Zoom+delta)), canvas)
}

// SetRotation sets the seam rotation, clamped to [MinRotation, MaxRotation].
func (v *Viewport) SetRotation(deg float64) {
	v.Rotation = geometry.Clamp(deg, MinRotation, MaxRotation)
}

// Reset returns to 100% zoom with no pan.
func (v *Viewport) Reset() {
	v.Zoom = 1.0
	v.Pan = geometry.Point2D{}
}

// Fit sets the zoom so the reference image fills the canvas width and
// clears the pan offset.
func (v *Viewport) Fit(canvasWidth float64, widths []int) {
	v.Zoom = ClampZoom(ComputeFit(canvasWidth, widths, v.Stretch))
	v.Pan = geometry.Point2D{}
}

// SetMode switches between sync and split presentation.
func (v *Viewport) SetMode(m Mode) {
	v.Mode = m
}

// SetStretch changes the reference-width policy. Callers refit afterwards.
func (v *Viewport) SetStretch(s Stretch) {
	v.Stretch = s
}
