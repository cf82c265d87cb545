// Package composite draws the per-region image composite onto a raster
// target.
package composite

import (
	"math"

	"img-compare/internal/separator"
	"img-compare/internal/viewport"
	"img-compare/pkg/geometry"
)

// Skew returns the horizontal seam displacement at the top edge for a
// rotation in degrees. The bottom edge is displaced by the negative value.
func Skew(rotation, height float64) float64 {
	return math.Sin(geometry.Deg2Rad(rotation)) * height
}

// ClipPolygon returns the clip quadrilateral for region r out of count
// regions, clockwise from the top-left corner. The outer edges of the first
// and last regions stay pinned to the canvas edges.
func ClipPolygon(r separator.Region, count int, size geometry.Size, rotation float64) []geometry.Point2D {
	skew := Skew(rotation, size.Height)
	offset := size.Width * r.Start
	width := size.Width * r.Width()

	left := [2]float64{offset + skew, offset - skew}
	right := [2]float64{offset + width + skew, offset + width - skew}
	if r.Index == 0 {
		left = [2]float64{0, 0}
	}
	if r.Index == count-1 {
		right = [2]float64{size.Width, size.Width}
	}

	return []geometry.Point2D{
		{X: left[0], Y: 0},
		{X: right[0], Y: 0},
		{X: right[1], Y: size.Height},
		{X: left[1], Y: size.Height},
	}
}

// SourceRect returns the image-space rectangle drawn for a region. offset is
// the region's left edge in canvas pixels and absSkew the absolute seam skew.
// Split mode shifts the rectangle by offset; sync mode ignores it.
func SourceRect(v viewport.Viewport, offset, absSkew, imageScale float64, size geometry.Size) geometry.Rect {
	x := -v.Pan.X - absSkew
	if v.Mode == viewport.ModeSplit {
		x += offset
	}
	return geometry.NewRect(
		x/v.Zoom*imageScale,
		-v.Pan.Y/v.Zoom*imageScale,
		(size.Width+2*absSkew)/v.Zoom*imageScale,
		size.Height/v.Zoom*imageScale,
	)
}

// DestRect returns the canvas rectangle a region's source is mapped onto. It
// overhangs by absSkew on both sides so the skewed clip is always covered.
func DestRect(offset, absSkew float64, size geometry.Size) geometry.Rect {
	return geometry.NewRect(offset-absSkew, 0, size.Width+2*absSkew, size.Height)
}

// RegionAtPoint returns the region whose clip polygon contains the canvas
// point p, or -1.
func RegionAtPoint(seps []float64, size geometry.Size, rotation float64, p geometry.Point2D) int {
	regions := separator.Regions(seps)
	for _, r := range regions {
		if geometry.PointInPolygon(p, ClipPolygon(r, len(regions), size, rotation)) {
			return r.Index
		}
	}
	return -1
}
