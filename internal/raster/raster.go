package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptySource is returned when decoding a source without data.
var ErrEmptySource = errors.New("empty image source")

// Raster is an immutable decoded bitmap. Image bounds always start at the origin.
type Raster struct {
	Width  int
	Height int
	Image  *image.RGBA
}

// NewRaster wraps an already decoded image, converting it to RGBA.
func NewRaster(img image.Image) *Raster {
	rgba := clone.AsRGBA(img)
	if origin := rgba.Rect.Min; origin != (image.Point{}) {
		rgba.Rect = rgba.Rect.Sub(origin)
	}
	return &Raster{
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
		Image:  rgba,
	}
}

// Decode decodes a source into a Raster, applying EXIF orientation.
func Decode(src *Source) (*Raster, error) {
	if src == nil || len(src.Data) == 0 {
		return nil, ErrEmptySource
	}

	img, err := imaging.Decode(bytes.NewReader(src.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", src.Name, err)
	}
	return NewRaster(img), nil
}

// Thumbnail scales the raster down to fit within w x h, preserving aspect ratio.
func Thumbnail(r *Raster, w, h int) image.Image {
	if r == nil || w <= 0 || h <= 0 {
		return nil
	}
	return imaging.Fit(r.Image, w, h, imaging.Lanczos)
}
