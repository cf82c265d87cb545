package composite

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/fogleman/gg"
)

// ExportPNG writes the rendered canvas as PNG.
func ExportPNG(w io.Writer, img *image.RGBA) error {
	if img == nil {
		return fmt.Errorf("failed to export: no image")
	}
	if err := gg.NewContextForRGBA(img).EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// ExportFileName names an export by its creation time in unix milliseconds.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("%d.png", t.UnixMilli())
}
