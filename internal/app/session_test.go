package app

import (
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"img-compare/internal/composite"
	"img-compare/internal/interact"
	"img-compare/internal/raster"
	"img-compare/internal/viewport"
	"img-compare/pkg/geometry"
)

// gatedDecoder builds rasters whose width is len(src.Data) and holds each
// decode until its gate is released.
type gatedDecoder struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedDecoder() *gatedDecoder {
	return &gatedDecoder{gates: make(map[string]chan struct{})}
}

func (g *gatedDecoder) gate(name string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[name]
	if !ok {
		ch = make(chan struct{})
		g.gates[name] = ch
	}
	return ch
}

func (g *gatedDecoder) release(name string) {
	close(g.gate(name))
}

func (g *gatedDecoder) decode(src *raster.Source) (*raster.Raster, error) {
	<-g.gate(src.Name)
	if len(src.Data) == 0 {
		return nil, fmt.Errorf("empty")
	}
	return raster.NewRaster(image.NewRGBA(image.Rect(0, 0, len(src.Data), 10))), nil
}

type frameQueue struct {
	mu      sync.Mutex
	pending []func()
}

func (q *frameQueue) schedule(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, fn)
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *frameQueue) tick() {
	q.mu.Lock()
	frames := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, fn := range frames {
		fn()
	}
}

func source(name string, width int) *raster.Source {
	return raster.NewSource(name, "image/png", make([]byte, width))
}

func newTestSession(t *testing.T) (*Session, *gatedDecoder, *frameQueue) {
	t.Helper()
	dec := newGatedDecoder()
	q := &frameQueue{}
	s := NewSession(raster.NewCacheWithDecoder(4, dec.decode), composite.NewRenderer(nil), q.schedule)
	s.Update(func(st *interact.State) bool {
		st.Bounds = geometry.NewRect(0, 0, 800, 100)
		return true
	})
	return s, dec, q
}

func presentWidths(s *Session) []int {
	return s.View().Widths
}

func TestSessionMergesByIndex(t *testing.T) {
	s, dec, _ := newTestSession(t)
	a, b, c := source("a", 100), source("b", 200), source("c", 400)

	require.Equal(t, 3, s.Add(a, b, c))
	assert.Equal(t, []float64{0.33, 0.67}, s.View().Separators.Values)
	assert.Empty(t, presentWidths(s))

	dec.release("c")
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 1 }, time.Second, time.Millisecond)
	dec.release("b")
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 2 }, time.Second, time.Millisecond)
	dec.release("a")
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 3 }, time.Second, time.Millisecond)

	assert.Equal(t, []int{100, 200, 400}, presentWidths(s))
	// Refit to the smallest image: 800/100.
	assert.Equal(t, viewport.MaxZoom, s.View().Viewport.Zoom)
}

func TestSessionRefitsOnEachDecode(t *testing.T) {
	s, dec, _ := newTestSession(t)
	s.Add(source("a", 400))
	dec.release("a")
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 1 }, time.Second, time.Millisecond)

	v := s.View().Viewport
	assert.Equal(t, 2.0, v.Zoom)
	assert.Equal(t, geometry.Point2D{}, v.Pan)
}

func TestSessionEmptyResetsView(t *testing.T) {
	s, dec, _ := newTestSession(t)
	s.Add(source("a", 400))
	dec.release("a")
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 1 }, time.Second, time.Millisecond)

	s.Update(func(st *interact.State) bool {
		st.Viewport.Pan = geometry.Pt(40, 40)
		return true
	})
	s.Clear()

	v := s.View()
	assert.Equal(t, 1.0, v.Viewport.Zoom)
	assert.Equal(t, geometry.Point2D{}, v.Viewport.Pan)
	assert.Empty(t, v.Separators.Values)
	assert.Empty(t, s.Files())
}

func TestSessionIncludeToggle(t *testing.T) {
	s, dec, _ := newTestSession(t)
	a, b := source("a", 100), source("b", 200)
	dec.release("a")
	dec.release("b")
	s.Add(a, b)
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 2 }, time.Second, time.Millisecond)

	require.True(t, s.SetIncluded(0, false))
	assert.False(t, s.SetIncluded(0, false))
	assert.Equal(t, []*raster.Source{b}, s.Active())
	assert.Empty(t, s.View().Separators.Values)
	assert.Equal(t, []int{200}, presentWidths(s), "cached raster reused without decoding")

	_, ok := s.Raster(a)
	assert.False(t, ok, "excluded source is evicted")

	require.True(t, s.SetIncluded(0, true))
	assert.Equal(t, []*raster.Source{a, b}, s.Active())
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 2 }, time.Second, time.Millisecond)
}

func TestSessionLateDecodeForRemovedSourceIsDropped(t *testing.T) {
	s, dec, _ := newTestSession(t)
	a, b := source("a", 100), source("b", 200)
	s.Add(a, b)

	require.True(t, s.Remove(0))
	dec.release("a")
	dec.release("b")
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 1 }, time.Second, time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, []int{200}, presentWidths(s))
	assert.False(t, s.Remove(5))
}

func TestSessionIgnoresNonImages(t *testing.T) {
	s, _, _ := newTestSession(t)
	assert.Equal(t, 0, s.Add(raster.NewSource("notes.txt", "text/plain", []byte("hi")), nil))
	assert.Empty(t, s.Files())
}

func TestSessionCoalescesRedraws(t *testing.T) {
	s, _, q := newTestSession(t)
	q.tick()
	frames := s.Frames()

	for i := 0; i < 10; i++ {
		s.Update(func(st *interact.State) bool {
			st.Viewport.Pan = geometry.Pt(float64(i), 0)
			return true
		})
	}
	assert.Equal(t, 1, q.len())
	q.tick()
	assert.Equal(t, frames+1, s.Frames())

	s.Update(func(*interact.State) bool { return false })
	assert.Equal(t, 0, q.len())
}

func TestSessionDrawPublishesFrame(t *testing.T) {
	s, _, q := newTestSession(t)

	var got *image.RGBA
	s.On(EventFrameReady, func(data interface{}) {
		got = data.(*image.RGBA)
	})
	q.tick()

	require.NotNil(t, got)
	assert.Equal(t, image.Rect(0, 0, 800, 100), got.Bounds())
	assert.Same(t, got, s.LastFrame())
}

func TestSessionDrawWithoutBounds(t *testing.T) {
	q := &frameQueue{}
	s := NewSession(raster.NewCache(1), composite.NewRenderer(nil), q.schedule)
	s.RequestRedraw()
	q.tick()
	assert.Nil(t, s.LastFrame())
}

func TestSessionReplaceKeepsPosition(t *testing.T) {
	s, dec, _ := newTestSession(t)
	a, b, a2 := source("a", 100), source("b", 200), source("a2", 300)
	dec.release("a")
	dec.release("b")
	dec.release("a2")
	s.Add(a, b)

	require.True(t, s.Replace(a, a2))
	assert.Equal(t, []*raster.Source{a2, b}, s.Active())
	require.Eventually(t, func() bool {
		w := presentWidths(s)
		return len(w) == 2 && w[0] == 300
	}, time.Second, time.Millisecond)
	assert.False(t, s.Replace(a, a2))
}

func TestSessionImageAt(t *testing.T) {
	s, dec, _ := newTestSession(t)
	dec.release("left")
	dec.release("right")
	s.Add(source("left", 100), source("right", 100))
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 2 }, time.Second, time.Millisecond)

	i, name, ok := s.ImageAt(geometry.Pt(100, 50))
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, "left", name)

	_, name, ok = s.ImageAt(geometry.Pt(700, 50))
	require.True(t, ok)
	assert.Equal(t, "right", name)

	_, _, ok = s.ImageAt(geometry.Pt(900, 50))
	assert.False(t, ok)
}

func TestSessionEvents(t *testing.T) {
	s, _, _ := newTestSession(t)
	var files []FileEntry
	var views int
	s.On(EventFilesChanged, func(data interface{}) { files = data.([]FileEntry) })
	s.On(EventViewChanged, func(interface{}) { views++ })

	s.Add(source("a", 10))
	require.Len(t, files, 1)
	assert.True(t, files[0].Included)
	assert.Equal(t, 1, views)
}

func TestSessionReplaceAllSwapsList(t *testing.T) {
	s, dec, q := newTestSession(t)
	a, b, c := source("a", 100), source("b", 200), source("c", 400)
	dec.release("a")
	dec.release("b")
	dec.release("c")
	s.Add(a, b)
	require.Eventually(t, func() bool { return len(presentWidths(s)) == 2 }, time.Second, time.Millisecond)
	q.tick()

	var changes int
	s.On(EventFilesChanged, func(interface{}) { changes++ })

	require.Equal(t, 1, s.ReplaceAll(c))
	files := s.Files()
	require.Len(t, files, 1)
	assert.Same(t, c, files[0].Source)
	assert.Empty(t, s.View().Separators.Values)
	assert.Equal(t, 1, changes)
	assert.Equal(t, 1, q.len(), "one redraw for the whole swap")

	_, ok := s.Raster(a)
	assert.False(t, ok, "previous sources are evicted")
	_, ok = s.Raster(b)
	assert.False(t, ok)

	require.Eventually(t, func() bool {
		w := presentWidths(s)
		return len(w) == 1 && w[0] == 400
	}, time.Second, time.Millisecond)
}

func TestSessionReplaceAllSkipsNonImages(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.Add(source("a", 10))

	text := raster.NewSource("notes.txt", "text/plain", []byte("hi"))
	assert.Equal(t, 0, s.ReplaceAll(text, nil))
	assert.Empty(t, s.Files())
	assert.Empty(t, s.Active())
}
