// Package main provides the entry point for the Image Compare application.
package main

import (
	"flag"
	"log"
	"time"

	fyneapp "fyne.io/fyne/v2/app"

	"img-compare/internal/app"
	"img-compare/internal/composite"
	"img-compare/internal/config"
	"img-compare/internal/interact"
	"img-compare/internal/raster"
	"img-compare/internal/version"
	"img-compare/ui/canvas"
	"img-compare/ui/mainwindow"
	"img-compare/ui/prefs"
)

const (
	appID         = "io.github.imgcompare"
	watchDebounce = 300 * time.Millisecond
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", config.DefaultPath(), "Path to config.yaml")
	flag.Parse()

	log.Printf("Starting Image Compare v%s", version.Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Config: %v, using defaults", err)
		cfg = config.DefaultConfig()
	}

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.CompareTheme{})

	// The window does not exist yet when the session is built, so the
	// scheduler reaches it through this variable.
	var win *mainwindow.MainWindow
	schedule := canvas.FrameScheduler(func(v interface{}) {
		if win != nil {
			win.ShowRenderFailure(v)
		}
	})

	cache := raster.NewCache(cfg.Decode.MaxConcurrent)
	session := app.NewSession(cache, composite.NewRenderer(cfg.BackgroundColor()), schedule)

	controller := interact.NewController(session)
	controller.WheelSensitivity = cfg.Zoom.WheelSensitivity

	win = mainwindow.New(fyneApp, cfg, prefs.Load(), session, controller)

	lifecycle := fyneApp.Lifecycle()
	lifecycle.SetOnEnteredForeground(func() { session.VisibilityChanged(true) })
	lifecycle.SetOnExitedForeground(func() { session.VisibilityChanged(false) })

	if cfg.Watch.Enabled {
		watcher, err := app.NewWatcher(session, watchDebounce)
		if err != nil {
			log.Printf("Watch: %v", err)
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	if paths := flag.Args(); len(paths) > 0 {
		win.LoadPaths(paths)
	} else {
		win.RestoreLastAlbum()
	}

	win.ShowAndRun()
}
