// Package canvas provides the comparison canvas widget and its overlay
// drawing primitives.
package canvas

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// getCharPattern returns the 3x5 pixel pattern for a digit. Other runes
// draw as blank cells.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	return [5]uint8{}
}

// labelScale returns the font pixel size for a canvas height.
func labelScale(height int) int {
	scale := height / 180
	if scale < 2 {
		scale = 2
	}
	if scale > 6 {
		scale = 6
	}
	return scale
}

// labelSize returns the pixel size of label at scale.
func labelSize(label string, scale int) (w, h int) {
	n := len([]rune(label))
	if n == 0 {
		return 0, 0
	}
	return n*3*scale + (n-1)*scale, 5 * scale
}

// drawLabel draws label with its top-left corner at (x, y).
func drawLabel(output *image.RGBA, label string, x, y int, col color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	charWidth := 3 * scale
	spacing := scale
	bounds := output.Bounds()

	for i, ch := range []rune(label) {
		pattern := getCharPattern(ch)
		charX := x + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				// Draw a scaled pixel block
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := y + row*scale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							output.SetRGBA(px, py, col)
						}
					}
				}
			}
		}
	}
}

// fillRect composites col over [x1,x2)x[y1,y2).
func fillRect(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	r := image.Rect(x1, y1, x2, y2).Intersect(output.Bounds())
	draw.Draw(output, r, image.NewUniform(col), image.Point{}, draw.Over)
}

// drawBadge draws label on a translucent plate centered horizontally on cx
// with its top at y.
func drawBadge(output *image.RGBA, label string, cx, y int, fg, bg color.RGBA, scale int) {
	w, h := labelSize(label, scale)
	if w == 0 {
		return
	}
	pad := scale * 2
	x := cx - w/2
	fillRect(output, x-pad, y-pad, x+w+pad, y+h+pad, bg)
	drawLabel(output, label, x, y, fg, scale)
}
