package separator

import "math"

// Region is one horizontal slice of the canvas in normalized coordinates.
type Region struct {
	Index int
	Start float64
	End   float64
}

// Width returns the normalized width.
func (r Region) Width() float64 {
	return r.End - r.Start
}

// First reports whether the region touches the left canvas edge.
func (r Region) First() bool {
	return r.Start == 0
}

// Regions derives the regions a separator sequence defines.
func Regions(seps []float64) []Region {
	regions := make([]Region, len(seps)+1)
	for i := range regions {
		start, end := 0.0, 1.0
		if i > 0 {
			start = seps[i-1]
		}
		if i < len(seps) {
			end = seps[i]
		}
		regions[i] = Region{Index: i, Start: start, End: end}
	}
	return regions
}

// RegionAt returns the index of the region containing normalized x.
// Values outside [0,1] map to the nearest end region.
func RegionAt(seps []float64, x float64) int {
	for i, s := range seps {
		if x < s {
			return i
		}
	}
	return len(seps)
}

// HandleAt returns the separator whose handle lies within tolerance pixels
// of canvas-local x, preferring the closest. It returns -1 when none does.
func HandleAt(seps []float64, x, canvasWidth, tolerance float64) int {
	best := -1
	bestDist := tolerance
	for i, s := range seps {
		d := math.Abs(s*canvasWidth - x)
		if d <= bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
