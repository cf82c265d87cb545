package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"img-compare/internal/composite"
	"img-compare/internal/config"
	"img-compare/internal/raster"
	"img-compare/internal/separator"
	"img-compare/internal/viewport"
	"img-compare/pkg/geometry"
)

type options struct {
	configPath  string
	output      string
	width       int
	height      int
	mode        string
	stretch     string
	zoom        float64
	fit         bool
	panX        float64
	panY        float64
	rotation    float64
	separators  string
	timeout     time.Duration
	showVersion bool
	paths       []string
}

func parseOptions(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("imgcompare-render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to config.yaml")
	fs.StringVar(&opts.output, "o", "", "Output PNG path (default <unix-millis>.png)")
	fs.IntVar(&opts.width, "w", 0, "Canvas width (default from config)")
	fs.IntVar(&opts.height, "h", 0, "Canvas height (default from config)")
	fs.StringVar(&opts.mode, "mode", "split", "Presentation mode: sync or split")
	fs.StringVar(&opts.stretch, "stretch", "smallest", "Reference width: smallest or largest")
	fs.Float64Var(&opts.zoom, "zoom", 1, "Zoom factor (0.1-3)")
	fs.BoolVar(&opts.fit, "fit", false, "Fit the reference image to the canvas width, ignoring -zoom and -pan")
	fs.Float64Var(&opts.panX, "pan-x", 0, "Horizontal pan in canvas pixels")
	fs.Float64Var(&opts.panY, "pan-y", 0, "Vertical pan in canvas pixels")
	fs.Float64Var(&opts.rotation, "rotation", 0, "Seam rotation in degrees (-30 to 30)")
	fs.StringVar(&opts.separators, "separators", "", "Comma separated separator positions in (0,1)")
	fs.DurationVar(&opts.timeout, "timeout", time.Minute, "Decode timeout")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			fs.SetOutput(nil)
			fmt.Fprintln(fs.Output(), "Usage: imgcompare-render [flags] image...")
			fs.PrintDefaults()
		}
		return nil, err
	}
	opts.paths = fs.Args()
	if opts.showVersion {
		return opts, nil
	}

	if len(opts.paths) == 0 {
		return nil, fmt.Errorf("usage: imgcompare-render [flags] image...")
	}
	if opts.width < 0 || opts.height < 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", opts.width, opts.height)
	}
	if _, err := parseMode(opts.mode); err != nil {
		return nil, err
	}
	if _, err := parseStretch(opts.stretch); err != nil {
		return nil, err
	}
	return opts, nil
}

// applyDefaults fills the canvas size from cfg where no flag was given.
func (o *options) applyDefaults(cfg *config.Config) {
	if o.width == 0 {
		o.width = cfg.Canvas.Width
	}
	if o.height == 0 {
		o.height = cfg.Canvas.Height
	}
}

// frame builds the render input for slots from the flags.
func (o *options) frame(slots *raster.Slots) (composite.Frame, error) {
	mode, err := parseMode(o.mode)
	if err != nil {
		return composite.Frame{}, err
	}
	stretch, err := parseStretch(o.stretch)
	if err != nil {
		return composite.Frame{}, err
	}
	seps, err := parseSeparators(o.separators, slots.Len())
	if err != nil {
		return composite.Frame{}, err
	}

	vp := viewport.New()
	vp.SetMode(mode)
	vp.SetStretch(stretch)
	vp.SetRotation(o.rotation)
	if o.fit {
		vp.Fit(float64(o.width), slots.Widths())
	} else {
		vp.SetZoom(o.zoom)
		vp.Pan = geometry.Pt(o.panX, o.panY)
	}

	return composite.Frame{
		Viewport:   vp,
		Separators: seps,
		Slots:      slots,
	}, nil
}

func parseMode(s string) (viewport.Mode, error) {
	switch strings.ToLower(s) {
	case "sync":
		return viewport.ModeSync, nil
	case "split":
		return viewport.ModeSplit, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want sync or split)", s)
	}
}

func parseStretch(s string) (viewport.Stretch, error) {
	switch strings.ToLower(s) {
	case "smallest":
		return viewport.StretchSmallest, nil
	case "largest":
		return viewport.StretchLargest, nil
	default:
		return 0, fmt.Errorf("unknown stretch %q (want smallest or largest)", s)
	}
}

// parseSeparators reads a comma separated list for n images. An empty list
// spaces the separators evenly.
func parseSeparators(s string, n int) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return separator.Create(n), nil
	}

	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid separator %q: %w", p, err)
		}
		values = append(values, v)
	}
	if want := max(n-1, 0); len(values) != want {
		return nil, fmt.Errorf("got %d separators for %d images, want %d", len(values), n, want)
	}
	if err := separator.Validate(values); err != nil {
		return nil, err
	}
	return values, nil
}
