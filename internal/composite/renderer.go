package composite

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"img-compare/internal/raster"
	"img-compare/internal/separator"
	"img-compare/internal/viewport"
	"img-compare/pkg/geometry"
)

// Frame is everything one draw reads.
type Frame struct {
	Viewport   viewport.Viewport
	Separators []float64
	Slots      *raster.Slots
}

// Renderer draws frames. It keeps a mask context sized to the last target
// and is not safe for concurrent use.
type Renderer struct {
	Background color.Color

	mask *gg.Context
}

// NewRenderer creates a renderer that clears to background. A nil
// background clears to transparent.
func NewRenderer(background color.Color) *Renderer {
	if background == nil {
		background = color.Transparent
	}
	return &Renderer{Background: background}
}

// Render clears dst and draws every present raster into its region.
// Absent slots are skipped.
func (r *Renderer) Render(dst *image.RGBA, f Frame) {
	if dst == nil {
		return
	}
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	if b.Min != (image.Point{}) {
		scratch := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		r.Render(scratch, f)
		draw.Draw(dst, b, scratch, image.Point{}, draw.Src)
		return
	}

	draw.Draw(dst, b, image.NewUniform(r.Background), image.Point{}, draw.Src)

	ref := viewport.ReferenceWidth(f.Slots.Widths(), f.Viewport.Stretch)
	if ref <= 0 || f.Viewport.Zoom <= 0 {
		return
	}

	size := geometry.NewSize(float64(b.Dx()), float64(b.Dy()))
	absSkew := math.Abs(Skew(f.Viewport.Rotation, size.Height))
	regions := separator.Regions(f.Separators)

	for _, region := range regions {
		img, ok := f.Slots.At(region.Index)
		if !ok || img.Image == nil {
			continue
		}
		offset := size.Width * region.Start
		src := SourceRect(f.Viewport, offset, absSkew, viewport.ImageScale(img.Width, ref), size)
		dstRect := DestRect(offset, absSkew, size)
		mask := r.clipMask(b, ClipPolygon(region, len(regions), size, f.Viewport.Rotation))
		blit(dst, dstRect, img.Image, src, mask)
	}
}

// clipMask rasterises polygon into the reusable mask context.
func (r *Renderer) clipMask(b image.Rectangle, polygon []geometry.Point2D) image.Image {
	if r.mask == nil || r.mask.Width() != b.Dx() || r.mask.Height() != b.Dy() {
		r.mask = gg.NewContext(b.Dx(), b.Dy())
	}
	dc := r.mask
	dc.SetColor(color.Transparent)
	dc.Clear()

	dc.NewSubPath()
	for i, p := range polygon {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
		} else {
			dc.LineTo(p.X, p.Y)
		}
	}
	dc.ClosePath()
	dc.SetColor(color.White)
	dc.Fill()
	return dc.AsMask()
}

// blit maps the fractional source rectangle onto dstRect with nearest
// neighbour sampling. Parts of the source outside the image are not drawn.
func blit(dst *image.RGBA, dstRect geometry.Rect, src *image.RGBA, srcRect geometry.Rect, mask image.Image) {
	if srcRect.Width <= 0 || srcRect.Height <= 0 || dstRect.Width <= 0 || dstRect.Height <= 0 {
		return
	}
	sr := image.Rect(
		int(math.Floor(srcRect.X)), int(math.Floor(srcRect.Y)),
		int(math.Ceil(srcRect.X+srcRect.Width)), int(math.Ceil(srcRect.Y+srcRect.Height)),
	).Intersect(src.Bounds())
	if sr.Empty() {
		return
	}

	t := geometry.RectToRect(srcRect, dstRect)
	s2d := f64.Aff3{t.A, t.B, t.TX, t.C, t.D, t.TY}
	draw.NearestNeighbor.Transform(dst, s2d, src, sr, draw.Over, &draw.Options{
		DstMask: mask,
	})
}
