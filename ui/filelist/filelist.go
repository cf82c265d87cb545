// Package filelist provides the side panel listing the loaded images.
package filelist

import (
	"fmt"
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"img-compare/internal/app"
	"img-compare/internal/raster"
)

const thumbSize = 48

// Panel lists every loaded file with its thumbnail, an include toggle and a
// remove button.
type Panel struct {
	session   *app.Session
	list      *widget.List
	summary   *widget.Label
	container fyne.CanvasObject

	mu     sync.Mutex
	files  []app.FileEntry
	thumbs map[*raster.Source]image.Image

	// OnAdd is called by the Add Files button.
	OnAdd func()
	// OnImport is called by the Import Album button.
	OnImport func()
}

// NewPanel creates the file list and subscribes it to session events.
func NewPanel(session *app.Session) *Panel {
	p := &Panel{
		session: session,
		thumbs:  make(map[*raster.Source]image.Image),
	}

	p.list = widget.NewList(
		p.length,
		func() fyne.CanvasObject {
			thumb := fynecanvas.NewImageFromImage(nil)
			thumb.FillMode = fynecanvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(thumbSize, thumbSize))
			check := widget.NewCheck("", nil)
			remove := widget.NewButton("×", nil)
			return container.NewBorder(nil, nil,
				container.NewHBox(check, thumb),
				remove,
				widget.NewLabel("image.png"),
			)
		},
		p.updateRow,
	)

	p.summary = widget.NewLabel("No images")

	addBtn := widget.NewButton("Add Files...", func() {
		if p.OnAdd != nil {
			p.OnAdd()
		}
	})
	importBtn := widget.NewButton("Import Album...", func() {
		if p.OnImport != nil {
			p.OnImport()
		}
	})
	clearBtn := widget.NewButton("Clear", session.Clear)

	p.container = container.NewBorder(
		container.NewVBox(
			container.NewHBox(addBtn, importBtn, clearBtn),
			p.summary,
		),
		nil, nil, nil,
		p.list,
	)

	session.On(app.EventFilesChanged, func(data interface{}) {
		if files, ok := data.([]app.FileEntry); ok {
			p.setFiles(files)
		}
	})
	session.On(app.EventImagesChanged, func(interface{}) {
		p.list.Refresh()
		p.updateSummary()
	})

	return p
}

// Container returns the panel container.
func (p *Panel) Container() fyne.CanvasObject {
	return p.container
}

func (p *Panel) length() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.files)
}

func (p *Panel) entry(i int) (app.FileEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.files) {
		return app.FileEntry{}, false
	}
	return p.files[i], true
}

// setFiles replaces the displayed list and drops thumbnails of files that
// are gone.
func (p *Panel) setFiles(files []app.FileEntry) {
	p.mu.Lock()
	p.files = files
	keep := make(map[*raster.Source]bool, len(files))
	for _, f := range files {
		keep[f.Source] = true
	}
	for src := range p.thumbs {
		if !keep[src] {
			delete(p.thumbs, src)
		}
	}
	p.mu.Unlock()

	p.list.Refresh()
	p.updateSummary()
}

func (p *Panel) updateRow(id widget.ListItemID, obj fyne.CanvasObject) {
	f, ok := p.entry(id)
	if !ok {
		return
	}

	row := obj.(*fyne.Container)
	label := row.Objects[0].(*widget.Label)
	left := row.Objects[1].(*fyne.Container)
	remove := row.Objects[2].(*widget.Button)
	check := left.Objects[0].(*widget.Check)
	thumb := left.Objects[1].(*fynecanvas.Image)

	label.SetText(f.Source.Name)

	// Rows are recycled, so the callbacks are cleared before the state is set.
	check.OnChanged = nil
	check.SetChecked(f.Included)
	check.OnChanged = func(on bool) {
		p.session.SetIncluded(id, on)
	}
	remove.OnTapped = func() {
		p.session.Remove(id)
	}

	thumb.Image = p.thumbnail(f.Source)
	thumb.Refresh()
}

// thumbnail returns a cached thumbnail for src, or nil while it is still
// decoding.
func (p *Panel) thumbnail(src *raster.Source) image.Image {
	p.mu.Lock()
	img, ok := p.thumbs[src]
	p.mu.Unlock()
	if ok {
		return img
	}

	r, ok := p.session.Raster(src)
	if !ok {
		return nil
	}
	img = raster.Thumbnail(r, thumbSize, thumbSize)

	p.mu.Lock()
	p.thumbs[src] = img
	p.mu.Unlock()
	return img
}

func (p *Panel) updateSummary() {
	p.summary.SetText(Summary(p.session.Files(), len(p.session.Active())))
}

// Summary describes the file list for the panel header.
func Summary(files []app.FileEntry, active int) string {
	if len(files) == 0 {
		return "No images"
	}
	return fmt.Sprintf("%d of %d images shown", active, len(files))
}
