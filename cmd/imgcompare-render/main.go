// Command imgcompare-render composites images the way the desktop viewer
// does and writes the result as a PNG.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"img-compare/internal/composite"
	"img-compare/internal/config"
	"img-compare/internal/raster"
	"img-compare/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	opts, err := parseOptions(os.Args[1:])
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Println("imgcompare-render", version.String())
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.applyDefaults(cfg)

	sources := make([]*raster.Source, 0, len(opts.paths))
	for _, path := range opts.paths {
		src, err := raster.Open(path)
		if err != nil {
			return err
		}
		if !src.IsImage() {
			log.Printf("Skipping %s: not an image (%s)", path, src.MIMEType)
			continue
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no images to render")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	cache := raster.NewCache(cfg.Decode.MaxConcurrent)
	slots := cache.DecodeAll(ctx, sources)
	for _, src := range sources {
		if err := cache.Err(src); err != nil {
			log.Printf("Decode: %v", err)
		}
	}
	log.Printf("Decoded %d of %d images", slots.Present(), len(sources))

	frame, err := opts.frame(slots)
	if err != nil {
		return err
	}

	dst := image.NewRGBA(image.Rect(0, 0, opts.width, opts.height))
	composite.NewRenderer(cfg.BackgroundColor()).Render(dst, frame)

	out := opts.output
	if out == "" {
		out = composite.ExportFileName(time.Now())
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := composite.ExportPNG(f, dst); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	log.Printf("Wrote %s (%dx%d, zoom %.2f, %s)", out, opts.width, opts.height, frame.Viewport.Zoom, frame.Viewport.Mode)
	return nil
}
