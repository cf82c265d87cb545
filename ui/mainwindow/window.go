// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"img-compare/internal/app"
	"img-compare/internal/composite"
	"img-compare/internal/config"
	"img-compare/internal/importer"
	"img-compare/internal/interact"
	"img-compare/internal/raster"
	"img-compare/internal/version"
	"img-compare/ui/canvas"
	"img-compare/ui/controls"
	"img-compare/ui/filelist"
	"img-compare/ui/prefs"
)

const appTitle = "Image Compare"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app        fyne.App
	cfg        *config.Config
	prefs      *prefs.Prefs
	session    *app.Session
	controller *interact.Controller
	importer   *importer.Client

	canvas    *canvas.CompareCanvas
	toolbar   *controls.Toolbar
	fileList  *filelist.Panel
	statusBar *widget.Label
	body      *fyne.Container

	labelsItem *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, cfg *config.Config, p *prefs.Prefs, session *app.Session, controller *interact.Controller) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window:     win,
		app:        fyneApp,
		cfg:        cfg,
		prefs:      p,
		session:    session,
		controller: controller,
		importer:   importer.New(cfg),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	width := p.FloatWithFallback(prefs.KeyWindowWidth, float64(cfg.Canvas.Width))
	height := p.FloatWithFallback(prefs.KeyWindowHeight, float64(cfg.Canvas.Height))
	mw.Resize(fyne.NewSize(float32(width), float32(height)))

	mw.SetCloseIntercept(func() {
		mw.savePreferences()
		mw.Close()
	})

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewCompareCanvas(mw.session, mw.controller)
	mw.canvas.SetLabels(mw.prefs.Bool(prefs.KeyShowLabels, true))
	mw.canvas.OnHover(func(index int, name string, ok bool) {
		if ok {
			mw.updateStatus(fmt.Sprintf("%d: %s", index+1, name))
		}
	})

	mw.toolbar = controls.NewToolbar(mw.session, mw.controller)
	mw.toolbar.OnSave = mw.onSaveImage

	mw.fileList = filelist.NewPanel(mw.session)
	mw.fileList.OnAdd = mw.onOpenFiles
	mw.fileList.OnImport = mw.onImportAlbum

	mw.statusBar = widget.NewLabel("Ready")

	// Canvas area with toolbar on top
	canvasArea := container.NewBorder(
		mw.toolbar.Container(), // top
		nil,                    // bottom
		nil,                    // left
		nil,                    // right
		mw.canvas,              // center
	)

	split := container.NewHSplit(
		mw.fileList.Container(),
		canvasArea,
	)
	split.SetOffset(0.2)

	mw.body = container.NewStack(split)
	mw.SetContent(container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		mw.body,
	))
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Images...", mw.onOpenFiles),
		fyne.NewMenuItem("Import Album...", mw.onImportAlbum),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Image...", mw.onSaveImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear", mw.session.Clear),
	)

	mw.labelsItem = fyne.NewMenuItem("Show Labels", mw.onToggleLabels)
	mw.labelsItem.Checked = mw.prefs.Bool(prefs.KeyShowLabels, true)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Actual Size", mw.controller.NativeZoom),
		fyne.NewMenuItem("Fit to Window", mw.controller.Fit),
		fyne.NewMenuItem("Equalize Separators", mw.controller.Equalize),
		fyne.NewMenuItemSeparator(),
		mw.labelsItem,
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventFilesChanged, func(data interface{}) {
		files, ok := data.([]app.FileEntry)
		if !ok {
			return
		}
		switch len(files) {
		case 0:
			mw.SetTitle(appTitle)
		case 1:
			mw.SetTitle(appTitle + " - " + files[0].Source.Name)
		default:
			mw.SetTitle(fmt.Sprintf("%s - %d images", appTitle, len(files)))
		}
	})

	mw.session.On(app.EventImagesChanged, func(data interface{}) {
		if n, ok := data.(int); ok {
			mw.updateStatus(fmt.Sprintf("%d image(s) decoded", n))
		}
	})
}

// ShowRenderFailure replaces the canvas with an error message. It is the
// frame scheduler's panic handler.
func (mw *MainWindow) ShowRenderFailure(v interface{}) {
	msg := widget.NewLabel(fmt.Sprintf("Rendering failed: %v\nRestart the application to continue.", v))
	msg.Wrapping = fyne.TextWrapWord
	mw.body.Objects = []fyne.CanvasObject{container.NewCenter(msg)}
	mw.body.Refresh()
}

// LoadPaths opens each path and adds the readable images to the session.
func (mw *MainWindow) LoadPaths(paths []string) {
	var sources []*raster.Source
	for _, path := range paths {
		src, err := raster.Open(path)
		if err != nil {
			log.Printf("Failed to open %s: %v", path, err)
			continue
		}
		if !src.IsImage() {
			log.Printf("Skipping %s: not an image (%s)", path, src.MIMEType)
			continue
		}
		sources = append(sources, src)
	}
	if n := mw.session.Add(sources...); n > 0 {
		mw.updateStatus(fmt.Sprintf("Added %d image(s)", n))
	}
}

// RestoreLastAlbum re-imports the album remembered from the previous run.
func (mw *MainWindow) RestoreLastAlbum() {
	if !mw.cfg.Import.RestoreLastAlbum {
		return
	}
	if id := mw.prefs.LastAlbum(); id != "" {
		go mw.importAlbum(id)
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.LastDir()
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

func (mw *MainWindow) savePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

// Menu action handlers

func (mw *MainWindow) onOpenFiles() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.prefs.SetLastDir(filepath.Dir(path))
		mw.LoadPaths([]string{path})
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(raster.SupportedExtensions()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onImportAlbum() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Album ID")
	entry.SetText(mw.prefs.LastAlbum())

	dialog.ShowForm("Import Album", "Import", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Album", entry)},
		func(ok bool) {
			if !ok || entry.Text == "" {
				return
			}
			go mw.importAlbum(entry.Text)
		}, mw.Window)
}

// importAlbum downloads an album and replaces the file list with its
// images. An unsuccessful listing leaves the list as it was. It blocks, so
// callers run it on its own goroutine.
func (mw *MainWindow) importAlbum(id string) {
	mw.updateStatus("Importing album " + id + "...")

	ctx, cancel := context.WithTimeout(context.Background(), 4*mw.cfg.ImportTimeout())
	defer cancel()

	sources, ok, err := mw.importer.ImportAlbum(ctx, id)
	if err != nil {
		log.Printf("Import: album %s failed: %v", id, err)
		dialog.ShowError(err, mw.Window)
		mw.updateStatus("Import failed")
		return
	}
	if !ok {
		mw.updateStatus("Album " + id + " not found")
		return
	}

	mw.prefs.SetLastAlbum(id)
	n := mw.session.ReplaceAll(sources...)
	mw.updateStatus(fmt.Sprintf("Imported %d image(s) from album %s", n, id))
}

func (mw *MainWindow) onSaveImage() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if _, err := mw.controller.SaveImage(writer, time.Now()); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		path := writer.URI().Path()
		mw.prefs.SetLastDir(filepath.Dir(path))
		mw.updateStatus("Saved " + path)
	}, mw.Window)
	fd.SetFileName(composite.ExportFileName(time.Now()))
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onToggleLabels() {
	on := !mw.labelsItem.Checked
	mw.labelsItem.Checked = on
	mw.prefs.SetBool(prefs.KeyShowLabels, on)
	mw.canvas.SetLabels(on)
	mw.MainMenu().Refresh()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\n"+
			"Compare images side by side with draggable separators.",
			appTitle, version.String()),
		mw.Window)
}
