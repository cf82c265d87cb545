package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img-compare/internal/raster"
	"img-compare/internal/separator"
	"img-compare/internal/viewport"
)

func writePNG(t *testing.T, dir, name string, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"-w", "300", "-mode", "Sync", "-rotation", "10", "a.png", "b.png"})
	require.NoError(t, err)
	assert.Equal(t, 300, opts.width)
	assert.Equal(t, "Sync", opts.mode)
	assert.Equal(t, 10.0, opts.rotation)
	assert.Equal(t, []string{"a.png", "b.png"}, opts.paths)

	_, err = parseOptions(nil)
	assert.Error(t, err, "at least one image is required")

	_, err = parseOptions([]string{"-mode", "diagonal", "a.png"})
	assert.Error(t, err)

	_, err = parseOptions([]string{"-stretch", "medium", "a.png"})
	assert.Error(t, err)

	opts, err = parseOptions([]string{"-version"})
	require.NoError(t, err)
	assert.True(t, opts.showVersion)
}

func TestParseSeparators(t *testing.T) {
	seps, err := parseSeparators("", 3)
	require.NoError(t, err)
	assert.Equal(t, separator.Create(3), seps)

	seps, err = parseSeparators("0.2, 0.7", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.7}, seps)

	_, err = parseSeparators("0.2", 3)
	assert.Error(t, err, "wrong count")

	_, err = parseSeparators("0.7,0.2", 3)
	assert.ErrorIs(t, err, separator.ErrOutOfOrder)

	_, err = parseSeparators("half", 2)
	assert.Error(t, err)
}

func TestFrameFromOptions(t *testing.T) {
	slots := raster.NewSlots(2)
	slots.Set(0, raster.NewRaster(image.NewRGBA(image.Rect(0, 0, 400, 10))))
	slots.Set(1, raster.NewRaster(image.NewRGBA(image.Rect(0, 0, 200, 10))))

	opts := &options{width: 800, height: 100, mode: "sync", stretch: "largest", zoom: 5, panX: 3, panY: 4, rotation: 45}
	f, err := opts.frame(slots)
	require.NoError(t, err)
	assert.Equal(t, viewport.ModeSync, f.Viewport.Mode)
	assert.Equal(t, viewport.StretchLargest, f.Viewport.Stretch)
	assert.Equal(t, viewport.MaxZoom, f.Viewport.Zoom)
	assert.Equal(t, viewport.MaxRotation, f.Viewport.Rotation)
	assert.Equal(t, 3.0, f.Viewport.Pan.X)
	assert.Equal(t, []float64{0.5}, f.Separators)

	opts.fit = true
	f, err = opts.frame(slots)
	require.NoError(t, err)
	assert.Equal(t, 2.0, f.Viewport.Zoom)
	assert.Zero(t, f.Viewport.Pan.X)
}

func TestRunWritesPNG(t *testing.T) {
	dir := t.TempDir()
	red := writePNG(t, dir, "red.png", 50, 20, color.RGBA{R: 255, A: 255})
	blue := writePNG(t, dir, "blue.png", 50, 20, color.RGBA{B: 255, A: 255})
	out := filepath.Join(dir, "out.png")

	opts, err := parseOptions([]string{
		"-config", filepath.Join(dir, "missing.yaml"),
		"-w", "100", "-h", "20", "-fit", "-o", out,
		red, blue,
	})
	require.NoError(t, err)
	require.NoError(t, run(opts))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 20), img.Bounds())

	r, _, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, b)
	r, _, b, _ = img.At(90, 10).RGBA()
	assert.Zero(t, r)
	assert.Equal(t, uint32(0xffff), b)
}
