package viewport

import (
	"math"

	"img-compare/pkg/geometry"
)

// ReferenceWidth returns the smallest or largest width depending on the
// stretch policy, or 0 when widths is empty.
func ReferenceWidth(widths []int, stretch Stretch) float64 {
	if len(widths) == 0 {
		return 0
	}
	ref := widths[0]
	for _, w := range widths[1:] {
		if stretch == StretchLargest && w > ref {
			ref = w
		}
		if stretch == StretchSmallest && w < ref {
			ref = w
		}
	}
	return float64(ref)
}

// ComputeFit returns the zoom making the reference image exactly fill the
// canvas width, rounded to two decimals. It returns 1 without images or canvas.
func ComputeFit(canvasWidth float64, widths []int, stretch Stretch) float64 {
	ref := ReferenceWidth(widths, stretch)
	if canvasWidth <= 0 || ref <= 0 {
		return 1.0
	}
	return geometry.Round2(canvasWidth / ref)
}

// ImageScale is the factor mapping reference-width pixels onto an image of
// the given width.
func ImageScale(width int, reference float64) float64 {
	if reference <= 0 || math.IsInf(reference, 0) {
		return 1.0
	}
	return float64(width) / reference
}
