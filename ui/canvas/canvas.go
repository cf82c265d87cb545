package canvas

import (
	"image"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"img-compare/internal/app"
	"img-compare/internal/composite"
	"img-compare/internal/interact"
	"img-compare/pkg/geometry"
)

// frameInterval approximates one display refresh.
const frameInterval = 16 * time.Millisecond

// Fyne reports roughly 10 units per wheel notch where browsers report 100.
const wheelUnitsPerDelta = 10

// CompareCanvas shows the session's frames and feeds pointer, wheel and
// resize events to the interaction controller.
type CompareCanvas struct {
	widget.BaseWidget

	session    *app.Session
	controller *interact.Controller
	raster     *fynecanvas.Raster

	mu         sync.Mutex
	frame      *image.RGBA
	lastBounds geometry.Rect
	labels     bool

	onHover func(index int, name string, ok bool)
}

var (
	_ fyne.Draggable    = (*CompareCanvas)(nil)
	_ fyne.Scrollable   = (*CompareCanvas)(nil)
	_ desktop.Mouseable = (*CompareCanvas)(nil)
	_ desktop.Hoverable = (*CompareCanvas)(nil)
)

// NewCompareCanvas creates a canvas bound to session and controller.
func NewCompareCanvas(session *app.Session, controller *interact.Controller) *CompareCanvas {
	c := &CompareCanvas{
		session:    session,
		controller: controller,
		labels:     true,
	}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.raster.ScaleMode = fynecanvas.ImageScalePixels

	session.On(app.EventFrameReady, func(data interface{}) {
		if frame, ok := data.(*image.RGBA); ok {
			c.mu.Lock()
			c.frame = frame
			c.mu.Unlock()
			c.raster.Refresh()
		}
	})

	c.ExtendBaseWidget(c)
	return c
}

// FrameScheduler returns a ScheduleFunc that runs frames on a timer. A
// panic inside a frame is logged and passed to onPanic.
func FrameScheduler(onPanic func(v interface{})) composite.ScheduleFunc {
	return func(fn func()) {
		time.AfterFunc(frameInterval, func() {
			defer func() {
				if v := recover(); v != nil {
					log.Printf("Canvas: frame panicked: %v", v)
					if onPanic != nil {
						onPanic(v)
					}
				}
			}()
			fn()
		})
	}
}

// OnHover sets the callback reporting which image is under the pointer.
func (c *CompareCanvas) OnHover(fn func(index int, name string, ok bool)) {
	c.onHover = fn
}

// SetLabels toggles the region index badges.
func (c *CompareCanvas) SetLabels(on bool) {
	c.mu.Lock()
	c.labels = on
	c.mu.Unlock()
	c.raster.Refresh()
}

// draw is the raster drawing function.
func (c *CompareCanvas) draw(w, h int) image.Image {
	c.mu.Lock()
	frame := c.frame
	labels := c.labels
	c.mu.Unlock()

	if frame == nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	view := c.session.View()
	phase, active := c.controller.Phase()
	if phase != interact.DraggingSeparator {
		active = -1
	}

	slots := len(view.Separators.Values) + 1
	present := make([]bool, slots)
	for i, src := range c.session.Active() {
		if i >= slots {
			break
		}
		_, present[i] = c.session.Raster(src)
	}
	return composeOverlay(frame, Overlay{
		Separators: view.Separators.Values,
		Present:    present,
		Active:     active,
		Labels:     labels,
	})
}

// syncBounds reports the widget's absolute rectangle to the controller when
// it moved or changed size.
func (c *CompareCanvas) syncBounds(size fyne.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	a := fyne.CurrentApp()
	if a == nil {
		return
	}
	drv := a.Driver()
	pos := drv.AbsolutePositionForObject(c)
	bounds := geometry.NewRect(float64(pos.X), float64(pos.Y), float64(size.Width), float64(size.Height))

	c.mu.Lock()
	changed := bounds != c.lastBounds
	c.lastBounds = bounds
	c.mu.Unlock()

	if changed {
		c.controller.Resize(bounds)
	}
	if cv := drv.CanvasForObject(c); cv != nil {
		c.controller.SetPixelRatio(float64(cv.Scale()))
	}
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.Pt(float64(p.X), float64(p.Y))
}

// MouseDown implements desktop.Mouseable.
func (c *CompareCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.controller.PointerDown(toPoint(ev.AbsolutePosition))
	c.raster.Refresh()
}

// MouseUp implements desktop.Mouseable.
func (c *CompareCanvas) MouseUp(*desktop.MouseEvent) {
	c.controller.PointerUp()
	c.raster.Refresh()
}

// Dragged implements fyne.Draggable. Fyne keeps delivering drag events after
// the pointer leaves the widget, which keeps separator drags alive.
func (c *CompareCanvas) Dragged(ev *fyne.DragEvent) {
	c.controller.PointerMove(toPoint(ev.AbsolutePosition))
}

// DragEnd implements fyne.Draggable.
func (c *CompareCanvas) DragEnd() {
	c.controller.PointerUp()
	c.raster.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (c *CompareCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (c *CompareCanvas) MouseMoved(ev *desktop.MouseEvent) {
	pos := toPoint(ev.AbsolutePosition)
	c.controller.PointerMove(pos)
	if c.onHover != nil {
		c.onHover(c.session.ImageAt(pos))
	}
}

// MouseOut implements desktop.Hoverable.
func (c *CompareCanvas) MouseOut() {
	c.controller.PointerLeave()
	if c.onHover != nil {
		c.onHover(-1, "", false)
	}
}

// Scrolled implements fyne.Scrollable. Scrolling up zooms in.
func (c *CompareCanvas) Scrolled(ev *fyne.ScrollEvent) {
	c.controller.Wheel(
		-float64(ev.Scrolled.DX)*wheelUnitsPerDelta,
		-float64(ev.Scrolled.DY)*wheelUnitsPerDelta,
	)
}

// MinSize keeps the canvas usable in small windows.
func (c *CompareCanvas) MinSize() fyne.Size {
	return fyne.NewSize(320, 180)
}

// CreateRenderer implements fyne.Widget.
func (c *CompareCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &compareCanvasRenderer{canvas: c}
}

type compareCanvasRenderer struct {
	canvas *CompareCanvas
}

func (r *compareCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	r.canvas.syncBounds(size)
}

func (r *compareCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.MinSize()
}

func (r *compareCanvasRenderer) Refresh() {
	r.canvas.syncBounds(r.canvas.Size())
	r.canvas.raster.Refresh()
}

func (r *compareCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *compareCanvasRenderer) Destroy() {}
