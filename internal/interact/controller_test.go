package interact

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img-compare/internal/separator"
	"img-compare/internal/viewport"
	"img-compare/pkg/geometry"
)

type memStore struct {
	st      State
	redraws int
	frame   *image.RGBA
}

func (m *memStore) Update(fn func(st *State) bool) {
	if fn(&m.st) {
		m.redraws++
	}
}

func (m *memStore) LastFrame() *image.RGBA {
	return m.frame
}

func newStore(images int, widths ...int) *memStore {
	return &memStore{st: State{
		Viewport:   viewport.New(),
		Separators: *separator.NewSet(images),
		Widths:     widths,
		Bounds:     geometry.NewRect(100, 50, 800, 400),
	}}
}

func TestPanGesture(t *testing.T) {
	store := newStore(1, 800)
	c := NewController(store)

	c.PointerDown(geometry.Pt(300, 250))
	phase, _ := c.Phase()
	require.Equal(t, Panning, phase)

	c.PointerMove(geometry.Pt(350, 260))
	assert.Equal(t, geometry.Pt(50, 10), store.st.Viewport.Pan)
	c.PointerMove(geometry.Pt(280, 200))
	assert.Equal(t, geometry.Pt(-20, -50), store.st.Viewport.Pan)
	assert.Equal(t, 2, store.redraws)

	c.PointerLeave()
	phase, _ = c.Phase()
	assert.Equal(t, Idle, phase)

	c.PointerMove(geometry.Pt(0, 0))
	assert.Equal(t, geometry.Pt(-20, -50), store.st.Viewport.Pan)
}

func TestPanContinuesFromCurrentOffset(t *testing.T) {
	store := newStore(1, 800)
	store.st.Viewport.Pan = geometry.Pt(30, 40)
	c := NewController(store)

	c.PointerDown(geometry.Pt(500, 300))
	c.PointerMove(geometry.Pt(510, 300))
	assert.Equal(t, geometry.Pt(40, 40), store.st.Viewport.Pan)
	c.PointerUp()
}

func TestPointerDownWithoutImagesStaysIdle(t *testing.T) {
	store := newStore(0)
	c := NewController(store)

	c.PointerDown(geometry.Pt(300, 250))
	phase, _ := c.Phase()
	assert.Equal(t, Idle, phase)
	c.PointerMove(geometry.Pt(400, 250))
	assert.Equal(t, geometry.Point2D{}, store.st.Viewport.Pan)
}

func TestSeparatorDrag(t *testing.T) {
	store := newStore(2, 800, 800)
	c := NewController(store)

	// Handle for 0.5 sits at client x = 100 + 400.
	c.PointerDown(geometry.Pt(505, 60))
	phase, active := c.Phase()
	require.Equal(t, DraggingSeparator, phase)
	require.Equal(t, 0, active)

	c.PointerMove(geometry.Pt(740, 500))
	assert.InDelta(t, 0.8, store.st.Separators.Values[0], 1e-12)

	// Leaving the canvas does not end a separator drag.
	c.PointerLeave()
	c.PointerMove(geometry.Pt(5000, 500))
	assert.InDelta(t, 0.95, store.st.Separators.Values[0], 1e-12)

	// A second press while dragging is ignored.
	c.PointerDown(geometry.Pt(300, 250))
	phase, _ = c.Phase()
	assert.Equal(t, DraggingSeparator, phase)

	c.PointerUp()
	phase, active = c.Phase()
	assert.Equal(t, Idle, phase)
	assert.Equal(t, -1, active)
	assert.Equal(t, geometry.Point2D{}, store.st.Viewport.Pan)
}

func TestHandleBelowStripPans(t *testing.T) {
	store := newStore(2, 800, 800)
	c := NewController(store)

	c.PointerDown(geometry.Pt(500, 50+HandleHeight+5))
	phase, _ := c.Phase()
	assert.Equal(t, Panning, phase)
}

func TestWheelZoomClampsAndKeepsCenter(t *testing.T) {
	store := newStore(1, 800)
	store.st.Viewport.Pan = geometry.Pt(-120, 35)
	c := NewController(store)

	size := store.st.Canvas()
	before := store.st.Viewport.CenterImagePoint(size)
	c.Wheel(0, -100)
	assert.Equal(t, 1.1, store.st.Viewport.Zoom)
	after := store.st.Viewport.CenterImagePoint(size)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	for i := 0; i < 100; i++ {
		c.Wheel(0, -500)
	}
	assert.Equal(t, viewport.MaxZoom, store.st.Viewport.Zoom)

	redraws := store.redraws
	c.Wheel(0, -500)
	assert.Equal(t, redraws, store.redraws, "no redraw when clamped zoom does not change")

	for i := 0; i < 100; i++ {
		c.Wheel(0, 500)
	}
	assert.Equal(t, viewport.MinZoom, store.st.Viewport.Zoom)
}

func TestStretchRefits(t *testing.T) {
	store := newStore(2, 800, 1600)
	store.st.Viewport.Pan = geometry.Pt(10, 10)
	c := NewController(store)

	c.SetStretch(viewport.StretchLargest)
	assert.Equal(t, 0.5, store.st.Viewport.Zoom)
	assert.Equal(t, geometry.Point2D{}, store.st.Viewport.Pan)

	c.SetStretch(viewport.StretchSmallest)
	assert.Equal(t, 1.0, store.st.Viewport.Zoom)
}

func TestFitWithoutImagesIsNoop(t *testing.T) {
	store := newStore(0)
	store.st.Viewport.Zoom = 2
	c := NewController(store)

	c.Fit()
	assert.Equal(t, 2.0, store.st.Viewport.Zoom)
	assert.Zero(t, store.redraws)
}

func TestFitAndNativeZoom(t *testing.T) {
	store := newStore(2, 400, 200)
	c := NewController(store)

	c.Fit()
	assert.Equal(t, viewport.MaxZoom, store.st.Viewport.Zoom)

	c.NativeZoom()
	assert.Equal(t, 1.0, store.st.Viewport.Zoom)

	c.SetZoom(1.5)
	assert.Equal(t, 1.5, store.st.Viewport.Zoom)
}

func TestEqualize(t *testing.T) {
	store := newStore(3, 100, 100, 100)
	c := NewController(store)
	store.st.Separators.Drag(0, 100+100, 100, 800)
	c.SetRotation(20)
	require.Equal(t, 20.0, store.st.Viewport.Rotation)

	c.Equalize()
	assert.Equal(t, []float64{0.33, 0.67}, store.st.Separators.Values)
	assert.Equal(t, 0.0, store.st.Viewport.Rotation)
}

func TestSetModeAndRotation(t *testing.T) {
	store := newStore(2, 100, 100)
	c := NewController(store)

	c.SetMode(viewport.ModeSplit)
	assert.Zero(t, store.redraws)
	c.SetMode(viewport.ModeSync)
	assert.Equal(t, viewport.ModeSync, store.st.Viewport.Mode)
	assert.Equal(t, 1, store.redraws)

	c.SetRotation(-45)
	assert.Equal(t, viewport.MinRotation, store.st.Viewport.Rotation)
}

func TestResizeCachesBounds(t *testing.T) {
	store := newStore(1, 100)
	c := NewController(store)

	c.Resize(geometry.NewRect(0, 0, 640, 480))
	assert.Equal(t, geometry.NewSize(640, 480), store.st.Canvas())
	assert.Equal(t, 1, store.redraws)
}

func TestSaveImage(t *testing.T) {
	store := newStore(1, 100)
	c := NewController(store)

	var buf bytes.Buffer
	_, err := c.SaveImage(&buf, time.Now())
	require.Error(t, err)

	store.frame = image.NewRGBA(image.Rect(0, 0, 8, 6))
	name, err := c.SaveImage(&buf, time.UnixMilli(42))
	require.NoError(t, err)
	assert.Equal(t, "42.png", name)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
}
