// Package controls provides the toolbar above the comparison canvas.
package controls

import (
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"img-compare/internal/app"
	"img-compare/internal/interact"
	"img-compare/internal/viewport"
)

var (
	modeOptions    = []string{viewport.ModeSync.String(), viewport.ModeSplit.String()}
	stretchOptions = []string{viewport.StretchSmallest.String(), viewport.StretchLargest.String()}
)

// Toolbar holds the zoom, rotation, mode and stretch controls.
type Toolbar struct {
	session    *app.Session
	controller *interact.Controller
	container  fyne.CanvasObject

	zoomSlider     *widget.Slider
	zoomLabel      *widget.Label
	rotationSlider *widget.Slider
	rotationLabel  *widget.Label
	modeRadio      *widget.RadioGroup
	stretchRadio   *widget.RadioGroup

	// OnSave is called by the Save Image button.
	OnSave func()
}

// NewToolbar creates the toolbar and subscribes it to view changes.
func NewToolbar(session *app.Session, controller *interact.Controller) *Toolbar {
	t := &Toolbar{
		session:    session,
		controller: controller,
	}

	t.zoomLabel = widget.NewLabel(formatZoom(1))
	t.zoomSlider = widget.NewSlider(viewport.MinZoom, viewport.MaxZoom)
	t.zoomSlider.Step = 0.1
	t.zoomSlider.Value = 1
	t.zoomSlider.OnChanged = func(v float64) {
		controller.SetZoom(v)
	}

	nativeBtn := widget.NewButton("100%", controller.NativeZoom)
	fitBtn := widget.NewButton("Fit", controller.Fit)
	eqBtn := widget.NewButton("EQ", controller.Equalize)

	t.rotationLabel = widget.NewLabel(formatRotation(0))
	t.rotationSlider = widget.NewSlider(viewport.MinRotation, viewport.MaxRotation)
	t.rotationSlider.Step = 1
	t.rotationSlider.OnChanged = func(v float64) {
		controller.SetRotation(v)
	}

	t.modeRadio = widget.NewRadioGroup(modeOptions, func(selected string) {
		if selected == "" {
			return
		}
		controller.SetMode(parseMode(selected))
	})
	t.modeRadio.Horizontal = true
	t.modeRadio.Required = true

	t.stretchRadio = widget.NewRadioGroup(stretchOptions, func(selected string) {
		if selected == "" {
			return
		}
		controller.SetStretch(parseStretch(selected))
	})
	t.stretchRadio.Horizontal = true
	t.stretchRadio.Required = true

	saveBtn := widget.NewButton("Save Image", func() {
		if t.OnSave != nil {
			t.OnSave()
		}
	})

	zoomRow := container.NewBorder(nil, nil,
		widget.NewLabel("Zoom:"),
		container.NewHBox(t.zoomLabel, nativeBtn, fitBtn, eqBtn),
		t.zoomSlider,
	)
	rotationRow := container.NewBorder(nil, nil,
		widget.NewLabel("Rotate:"),
		t.rotationLabel,
		t.rotationSlider,
	)
	optionsRow := container.NewHBox(
		widget.NewLabel("Mode:"), t.modeRadio,
		widget.NewSeparator(),
		widget.NewLabel("Stretch:"), t.stretchRadio,
		widget.NewSeparator(),
		saveBtn,
	)
	t.container = container.NewVBox(zoomRow, rotationRow, optionsRow)

	t.Sync(session.View().Viewport)
	session.On(app.EventViewChanged, func(data interface{}) {
		if vp, ok := data.(viewport.Viewport); ok {
			t.Sync(vp)
		}
	})

	return t
}

// Container returns the toolbar container.
func (t *Toolbar) Container() fyne.CanvasObject {
	return t.container
}

// Sync moves every control to reflect vp. Values are assigned directly so
// no change callback runs.
func (t *Toolbar) Sync(vp viewport.Viewport) {
	t.zoomSlider.Value = vp.Zoom
	t.zoomSlider.Refresh()
	t.zoomLabel.SetText(formatZoom(vp.Zoom))

	t.rotationSlider.Value = vp.Rotation
	t.rotationSlider.Refresh()
	t.rotationLabel.SetText(formatRotation(vp.Rotation))

	t.modeRadio.Selected = vp.Mode.String()
	t.modeRadio.Refresh()
	t.stretchRadio.Selected = vp.Stretch.String()
	t.stretchRadio.Refresh()
}

func formatZoom(zoom float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(zoom*100)))
}

func formatRotation(deg float64) string {
	return fmt.Sprintf("%+.0f°", deg)
}

func parseMode(s string) viewport.Mode {
	if s == viewport.ModeSync.String() {
		return viewport.ModeSync
	}
	return viewport.ModeSplit
}

func parseStretch(s string) viewport.Stretch {
	if s == viewport.StretchLargest.String() {
		return viewport.StretchLargest
	}
	return viewport.StretchSmallest
}
