package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"img-compare/pkg/colorutil"
)

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestComposeOverlayLeavesFrameUntouched(t *testing.T) {
	frame := filled(100, 60, colorutil.Slate)
	out := composeOverlay(frame, Overlay{Separators: []float64{0.5}, Active: -1})

	assert.Equal(t, colorutil.Slate, frame.RGBAAt(50, 10))
	assert.Equal(t, colorutil.White, out.RGBAAt(50, 10))
	assert.Equal(t, colorutil.Slate, out.RGBAAt(10, 50))
}

func TestComposeOverlayActiveHandle(t *testing.T) {
	frame := filled(100, 60, colorutil.Slate)
	out := composeOverlay(frame, Overlay{Separators: []float64{0.25, 0.75}, Active: 1})

	assert.Equal(t, colorutil.White, out.RGBAAt(25, 10))
	assert.Equal(t, activeFill, out.RGBAAt(75, 10))
}

func TestComposeOverlaySkipsLabelsForAbsentImages(t *testing.T) {
	frame := filled(200, 360, colorutil.Black)
	withLabels := composeOverlay(frame, Overlay{Separators: []float64{0.5}, Present: []bool{false, true}, Active: -1, Labels: true})

	changed := func(x0, x1 int) bool {
		for y := 0; y < 360; y++ {
			for x := x0; x < x1; x++ {
				if withLabels.RGBAAt(x, y) != colorutil.Black && y > 50 {
					return true
				}
			}
		}
		return false
	}
	assert.False(t, changed(0, 100))
	assert.True(t, changed(100, 200))
}

func TestDrawLabel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	drawLabel(img, "1", 0, 0, colorutil.White, 1)

	assert.Equal(t, colorutil.White, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))
	assert.Equal(t, colorutil.White, img.RGBAAt(0, 1))

	w, h := labelSize("12", 2)
	assert.Equal(t, 14, w)
	assert.Equal(t, 10, h)
}

func TestCharPatternDigitsOnly(t *testing.T) {
	assert.Equal(t, digitPatterns[7], getCharPattern('7'))
	assert.Equal(t, [5]uint8{}, getCharPattern('A'))
	assert.Equal(t, [5]uint8{}, getCharPattern(' '))
}

func TestFillRectCompositesPremultiplied(t *testing.T) {
	img := filled(4, 4, colorutil.Black)
	fillRect(img, 1, 1, 3, 3, color.RGBA{R: 100, A: 128})

	assert.Equal(t, color.RGBA{R: 100, A: 255}, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{R: 100, A: 255}, img.RGBAAt(2, 2))
	assert.Equal(t, colorutil.Black, img.RGBAAt(0, 0))
	assert.Equal(t, colorutil.Black, img.RGBAAt(3, 3))

	// Clipped to the image.
	fillRect(img, -5, -5, 1, 1, colorutil.White)
	assert.Equal(t, colorutil.White, img.RGBAAt(0, 0))
}
