package pipeline

import (
	"github.com/matzehuels/rasterd/pkg/config"
	"github.com/matzehuels/rasterd/pkg/sizing"
)

// Options are fully resolved render parameters for a single PNG request.
// Construction (query parsing, flag parsing, default-width injection) is the
// caller's job; a populated Options is immutable for the request.
type Options struct {
	DPI         int     // positive; scales output together with Zoom
	Zoom        float64 // positive
	Width       int     // explicit output width, 0 when not requested
	Height      int     // explicit output height, 0 when not requested
	Transparent bool    // omit background entirely
	Background  string  // validated CSS color, used when not transparent
}

// DefaultOptions returns the options used when a caller supplies no sizing
// directives at all: the configured defaults with the display-oriented
// default width injected, so raster output is never driven by the bare
// zoom/dpi baseline alone.
func DefaultOptions(cfg config.Config) Options {
	return Options{
		DPI:        cfg.DefaultDPI,
		Zoom:       cfg.DefaultZoom,
		Width:      cfg.DefaultWidth,
		Background: cfg.DefaultBackground,
	}
}

// target converts the options into sizing directives.
func (o Options) target() sizing.Target {
	return sizing.Target{
		Width:  o.Width,
		Height: o.Height,
		DPI:    o.DPI,
		Zoom:   o.Zoom,
	}
}
