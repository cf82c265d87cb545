package canvas

import (
	"image"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"

	"img-compare/internal/interact"
	"img-compare/internal/separator"
	"img-compare/pkg/colorutil"
)

// Overlay holds the interactive decorations painted over a frame. They are
// not part of the exported image.
type Overlay struct {
	Separators []float64
	Present    []bool // Which regions have a decoded image
	Active     int    // Separator being dragged, or -1
	Labels     bool   // Draw region index badges
}

var (
	badgeBG    = color.RGBA{R: 15, G: 23, B: 42, A: 160}
	activeFill = color.RGBA{R: 148, G: 163, B: 184, A: 255}
)

// composeOverlay copies frame and paints the overlay on the copy.
func composeOverlay(frame *image.RGBA, ov Overlay) *image.RGBA {
	out := image.NewRGBA(frame.Bounds())
	copy(out.Pix, frame.Pix)

	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	if ov.Labels {
		scale := labelScale(h)
		for _, r := range separator.Regions(ov.Separators) {
			if r.Index >= len(ov.Present) || !ov.Present[r.Index] {
				continue
			}
			cx := int(float64(w) * (r.Start + r.End) / 2)
			drawBadge(out, strconv.Itoa(r.Index+1), cx, h-8*scale, colorutil.White, badgeBG, scale)
		}
	}

	dc := gg.NewContextForRGBA(out)
	for i, s := range ov.Separators {
		x := s * float64(w)
		dc.NewSubPath()
		dc.MoveTo(x-interact.HandleHalfWidth, 0)
		dc.LineTo(x+interact.HandleHalfWidth, 0)
		dc.LineTo(x, interact.HandleHeight)
		dc.ClosePath()
		if i == ov.Active {
			dc.SetColor(activeFill)
		} else {
			dc.SetColor(colorutil.White)
		}
		dc.FillPreserve()
		dc.SetColor(colorutil.Black)
		dc.SetLineWidth(2)
		dc.Stroke()
	}
	return out
}
