package interact

import (
	"fmt"
	"io"
	"time"

	"img-compare/internal/composite"
	"img-compare/internal/separator"
	"img-compare/internal/viewport"
	"img-compare/pkg/geometry"
)

// Separator handles are triangles hanging from the top canvas edge.
const (
	HandleHalfWidth = 12.0
	HandleHeight    = 40.0
)

// Phase is the controller's pointer state.
type Phase int

const (
	Idle Phase = iota
	Panning
	DraggingSeparator
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case Panning:
		return "Panning"
	case DraggingSeparator:
		return "DraggingSeparator"
	default:
		return "Unknown"
	}
}

// Controller is the pointer state machine. Its own fields are only touched
// inside Store.Update, so it shares the store's lock.
type Controller struct {
	store Store

	phase  Phase
	active int
	pan    viewport.PanDrag

	// PixelRatio scales wheel deltas; WheelSensitivity is zoom per unit.
	PixelRatio       float64
	WheelSensitivity float64
}

// NewController creates a controller driving store.
func NewController(store Store) *Controller {
	return &Controller{
		store:            store,
		active:           -1,
		PixelRatio:       1,
		WheelSensitivity: viewport.DefaultWheelSensitivity,
	}
}

// Phase returns the current pointer state and, while dragging, the
// separator index.
func (c *Controller) Phase() (Phase, int) {
	var phase Phase
	active := -1
	c.store.Update(func(*State) bool {
		phase, active = c.phase, c.active
		return false
	})
	return phase, active
}

// SetPixelRatio sets the device pixel ratio used to scale wheel deltas.
func (c *Controller) SetPixelRatio(ratio float64) {
	c.store.Update(func(*State) bool {
		if ratio > 0 {
			c.PixelRatio = ratio
		}
		return false
	})
}

// HandleAt returns the separator handle under a canvas-local point, or -1.
func HandleAt(st *State, local geometry.Point2D) int {
	if local.Y < 0 || local.Y > HandleHeight {
		return -1
	}
	return separator.HandleAt(st.Separators.Values, local.X, st.Bounds.Width, HandleHalfWidth)
}

// PointerDown starts a separator drag when a handle is hit, otherwise a pan
// when any image is loaded.
func (c *Controller) PointerDown(client geometry.Point2D) {
	c.store.Update(func(st *State) bool {
		if c.phase != Idle {
			return false
		}
		local := client.Sub(st.Bounds.TopLeft())
		if i := HandleAt(st, local); i >= 0 {
			c.phase, c.active = DraggingSeparator, i
			return false
		}
		if len(st.Widths) == 0 {
			return false
		}
		c.phase = Panning
		c.pan.Begin(local, st.Viewport.Pan)
		return false
	})
}

// PointerMove pans or drags the active separator.
func (c *Controller) PointerMove(client geometry.Point2D) {
	c.store.Update(func(st *State) bool {
		switch c.phase {
		case Panning:
			pan, ok := c.pan.Move(client.Sub(st.Bounds.TopLeft()))
			if !ok || pan == st.Viewport.Pan {
				return false
			}
			st.Viewport.Pan = pan
			return true
		case DraggingSeparator:
			return st.Separators.Drag(c.active, client.X, st.Bounds.X, st.Bounds.Width)
		}
		return false
	})
}

// PointerUp ends any gesture.
func (c *Controller) PointerUp() {
	c.store.Update(func(*State) bool {
		c.end()
		return false
	})
}

// PointerLeave ends a pan. A separator drag follows the pointer outside
// the canvas and only ends on PointerUp.
func (c *Controller) PointerLeave() {
	c.store.Update(func(*State) bool {
		if c.phase == Panning {
			c.end()
		}
		return false
	})
}

func (c *Controller) end() {
	c.pan.End()
	c.phase, c.active = Idle, -1
}

// Wheel zooms around the canvas center.
func (c *Controller) Wheel(dx, dy float64) {
	c.store.Update(func(st *State) bool {
		before := st.Viewport
		st.Viewport.ApplyWheel(dx, dy, c.PixelRatio, c.WheelSensitivity, st.Canvas())
		return st.Viewport != before
	})
}

// Resize caches the canvas bounds in client coordinates and redraws.
func (c *Controller) Resize(bounds geometry.Rect) {
	c.store.Update(func(st *State) bool {
		st.Bounds = bounds
		return true
	})
}

// SetMode switches presentation mode.
func (c *Controller) SetMode(m viewport.Mode) {
	c.store.Update(func(st *State) bool {
		if st.Viewport.Mode == m {
			return false
		}
		st.Viewport.SetMode(m)
		return true
	})
}

// SetStretch changes the reference policy and refits.
func (c *Controller) SetStretch(s viewport.Stretch) {
	c.store.Update(func(st *State) bool {
		st.Viewport.SetStretch(s)
		st.Viewport.Fit(st.Bounds.Width, st.Widths)
		return true
	})
}

// SetRotation sets the seam rotation from the slider.
func (c *Controller) SetRotation(deg float64) {
	c.store.Update(func(st *State) bool {
		st.Viewport.SetRotation(deg)
		return true
	})
}

// SetZoom zooms around the canvas center from the slider.
func (c *Controller) SetZoom(zoom float64) {
	c.store.Update(func(st *State) bool {
		st.Viewport.SetZoomRelative(zoom, st.Canvas())
		return true
	})
}

// NativeZoom zooms to 100% around the canvas center.
func (c *Controller) NativeZoom() {
	c.SetZoom(1)
}

// Fit zooms so the reference image fills the canvas width. It does nothing
// without images.
func (c *Controller) Fit() {
	c.store.Update(func(st *State) bool {
		if len(st.Widths) == 0 {
			return false
		}
		st.Viewport.Fit(st.Bounds.Width, st.Widths)
		return true
	})
}

// Equalize re-spaces the separators evenly and clears the rotation.
func (c *Controller) Equalize() {
	c.store.Update(func(st *State) bool {
		st.Separators.Reset(st.Separators.Regions())
		st.Viewport.SetRotation(0)
		return true
	})
}

// SaveImage writes the last drawn frame as PNG and returns the file name to
// offer for it.
func (c *Controller) SaveImage(w io.Writer, now time.Time) (string, error) {
	frame := c.store.LastFrame()
	if frame == nil {
		return "", fmt.Errorf("failed to save image: nothing rendered yet")
	}
	if err := composite.ExportPNG(w, frame); err != nil {
		return "", err
	}
	return composite.ExportFileName(now), nil
}
