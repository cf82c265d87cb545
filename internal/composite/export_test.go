package composite

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(2, 1, color.RGBA{R: 200, G: 10, B: 30, A: 255})

	var buf bytes.Buffer
	require.NoError(t, ExportPNG(&buf, img))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), decoded.Bounds())
	r, g, b, a := decoded.At(2, 1).RGBA()
	assert.Equal(t, []uint32{200, 10, 30, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})

	assert.Error(t, ExportPNG(&buf, nil))
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "1700000000123.png", ExportFileName(time.UnixMilli(1700000000123)))
}
