// Package app holds the comparison session: the file list, the shared view
// state, decoded rasters and the redraw loop.
package app

import (
	"image"
	"sync"

	"img-compare/internal/composite"
	"img-compare/internal/interact"
	"img-compare/internal/raster"
	"img-compare/internal/separator"
	"img-compare/internal/viewport"
	"img-compare/pkg/geometry"
)

// FileEntry is one loaded source and whether it takes part in the composite.
type FileEntry struct {
	Source   *raster.Source
	Included bool
}

// EventType identifies different session events.
type EventType int

const (
	EventFilesChanged EventType = iota
	EventImagesChanged
	EventViewChanged
	EventFrameReady
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Session is the single owned state record. Every mutation goes through it
// and ends in a coalesced redraw request.
type Session struct {
	mu     sync.Mutex
	files  []FileEntry
	active []*raster.Source
	slots  *raster.Slots
	view   interact.State
	frame  *image.RGBA

	cache     *raster.Cache
	renderer  *composite.Renderer
	scheduler *composite.Scheduler

	lmu       sync.RWMutex
	listeners map[EventType][]EventListener
}

var _ interact.Store = (*Session)(nil)

// NewSession creates an empty session. schedule posts a draw to the host's
// next frame.
func NewSession(cache *raster.Cache, renderer *composite.Renderer, schedule composite.ScheduleFunc) *Session {
	s := &Session{
		slots:     raster.NewSlots(0),
		view:      interact.State{Viewport: viewport.New()},
		cache:     cache,
		renderer:  renderer,
		listeners: make(map[EventType][]EventListener),
	}
	s.scheduler = composite.NewScheduler(schedule, s.Draw)
	return s
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.lmu.RLock()
	listeners := s.listeners[event]
	s.lmu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Update applies fn to the view state and requests a redraw if it changed
// anything.
func (s *Session) Update(fn func(st *interact.State) bool) {
	s.mu.Lock()
	changed := fn(&s.view)
	vp := s.view.Viewport
	s.mu.Unlock()

	if changed {
		s.scheduler.RequestRedraw()
		s.Emit(EventViewChanged, vp)
	}
}

// RequestRedraw schedules a frame without changing state.
func (s *Session) RequestRedraw() {
	s.scheduler.RequestRedraw()
}

// VisibilityChanged redraws when the window becomes visible again.
func (s *Session) VisibilityChanged(visible bool) {
	s.scheduler.VisibilityChanged(visible)
}

// Draw renders one frame at the cached canvas size. Each frame is a fresh
// image so published frames are never written again.
func (s *Session) Draw() {
	s.mu.Lock()
	w, h := int(s.view.Bounds.Width), int(s.view.Bounds.Height)
	if w <= 0 || h <= 0 {
		s.mu.Unlock()
		return
	}
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	s.renderer.Render(frame, composite.Frame{
		Viewport:   s.view.Viewport,
		Separators: s.view.Separators.Snapshot(),
		Slots:      s.slots,
	})
	s.frame = frame
	s.mu.Unlock()

	s.Emit(EventFrameReady, frame)
}

// LastFrame returns the most recently drawn frame.
func (s *Session) LastFrame() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Frames returns the number of frames drawn so far.
func (s *Session) Frames() int {
	return s.scheduler.Frames()
}

// View returns a copy of the view state.
func (s *Session) View() interact.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.view
	st.Separators = separator.Set{Values: s.view.Separators.Snapshot()}
	st.Widths = append([]int(nil), s.view.Widths...)
	return st
}

// ImageAt returns the index and name of the image drawn under a client
// point.
func (s *Session) ImageAt(client geometry.Point2D) (int, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local := client.Sub(s.view.Bounds.TopLeft())
	i := composite.RegionAtPoint(s.view.Separators.Values, s.view.Bounds.Size(), s.view.Viewport.Rotation, local)
	if i < 0 || i >= len(s.active) {
		return -1, "", false
	}
	if _, ok := s.slots.At(i); !ok {
		return -1, "", false
	}
	return i, s.active[i].Name, true
}

// Raster returns the decoded raster for src if it is cached.
func (s *Session) Raster(src *raster.Source) (*raster.Raster, bool) {
	return s.cache.Get(src)
}
