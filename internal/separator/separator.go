// Package separator partitions the canvas width into per-image regions
// using normalized boundary positions.
package separator

import (
	"errors"
	"fmt"
	"math"

	"img-compare/pkg/geometry"
)

// MinGap is the minimum normalized distance between neighbouring
// separators and between a separator and the canvas edges.
const MinGap = 0.05

// Create returns n-1 evenly spaced separators for n regions.
func Create(n int) []float64 {
	if n <= 1 {
		return []float64{}
	}
	seps := make([]float64, n-1)
	for k := 1; k < n; k++ {
		seps[k-1] = geometry.Round2(float64(k) / float64(n))
	}
	return seps
}

// ErrOutOfOrder is returned by Validate for separators that are not strictly
// increasing inside (0, 1).
var ErrOutOfOrder = errors.New("separators out of order")

// Validate checks that values could have been produced by Create and Drag:
// strictly increasing and strictly inside the unit interval.
func Validate(values []float64) error {
	prev := 0.0
	for i, v := range values {
		if math.IsNaN(v) || v <= prev || v >= 1 {
			return fmt.Errorf("separator %d = %v: %w", i, v, ErrOutOfOrder)
		}
		prev = v
	}
	return nil
}

// Set is a mutable separator sequence owned by the session.
type Set struct {
	Values []float64
}

// NewSet returns evenly spaced separators for n regions.
func NewSet(n int) *Set {
	return &Set{Values: Create(n)}
}

// Reset re-spaces the separators for n regions.
func (s *Set) Reset(n int) {
	s.Values = Create(n)
}

// Len returns the number of separators.
func (s *Set) Len() int {
	return len(s.Values)
}

// Regions returns the number of regions the set partitions.
func (s *Set) Regions() int {
	return len(s.Values) + 1
}

// Bounds returns the allowed window for separator index.
func (s *Set) Bounds(index int) (lo, hi float64) {
	prev, next := 0.0, 1.0
	if index > 0 {
		prev = s.Values[index-1]
	}
	if index < len(s.Values)-1 {
		next = s.Values[index+1]
	}
	return prev + MinGap, next - MinGap
}

// Drag moves separator index to the pointer position, clamped so it keeps
// MinGap from its neighbours. It reports whether the value changed.
func (s *Set) Drag(index int, clientX, canvasLeft, canvasWidth float64) bool {
	if index < 0 || index >= len(s.Values) || canvasWidth <= 0 {
		return false
	}
	value := (clientX - canvasLeft) / canvasWidth
	if math.IsNaN(value) {
		return false
	}

	lo, hi := s.Bounds(index)
	if lo > hi {
		// Neighbours are already closer than two gaps apart.
		return false
	}
	value = geometry.Clamp(value, lo, hi)
	if value == s.Values[index] {
		return false
	}
	s.Values[index] = value
	return true
}

// Snapshot returns a copy of the current values.
func (s *Set) Snapshot() []float64 {
	out := make([]float64, len(s.Values))
	copy(out, s.Values)
	return out
}
