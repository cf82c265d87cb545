package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFit(t *testing.T) {
	widths := []int{400, 200}
	assert.Equal(t, 4.00, ComputeFit(800, widths, StretchSmallest))
	assert.Equal(t, 2.00, ComputeFit(800, widths, StretchLargest))
	assert.Equal(t, 1.0, ComputeFit(800, nil, StretchSmallest))
	assert.Equal(t, 1.0, ComputeFit(800, []int{}, StretchLargest))
	assert.Equal(t, 1.0, ComputeFit(0, widths, StretchSmallest))
}

func TestComputeFitRounds(t *testing.T) {
	assert.Equal(t, 0.33, ComputeFit(100, []int{300}, StretchSmallest))
	assert.Equal(t, 0.67, ComputeFit(200, []int{300}, StretchSmallest))
}

func TestComputeFitIdempotent(t *testing.T) {
	widths := []int{1920, 1280, 640}
	for _, s := range []Stretch{StretchSmallest, StretchLargest} {
		first := ComputeFit(1366, widths, s)
		second := ComputeFit(1366, widths, s)
		assert.Equal(t, first, second)
	}
}

func TestReferenceWidthAndScale(t *testing.T) {
	widths := []int{300, 100, 200}
	assert.Equal(t, 100.0, ReferenceWidth(widths, StretchSmallest))
	assert.Equal(t, 300.0, ReferenceWidth(widths, StretchLargest))
	assert.Equal(t, 0.0, ReferenceWidth(nil, StretchLargest))

	assert.Equal(t, 3.0, ImageScale(300, 100))
	assert.Equal(t, 1.0, ImageScale(300, 0))
}
