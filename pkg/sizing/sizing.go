// Package sizing resolves raster output dimensions for SVG markup.
//
// The intrinsic size comes from the markup itself (width/height attributes
// on the root element, falling back to the viewBox). The final pixel size is
// derived from the intrinsic size and the caller's sizing directives:
// an explicit width wins, then an explicit height, then zoom and DPI.
package sizing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/rasterd/pkg/errors"
)

// baseDPI is the CSS reference resolution: dpi/96 gives the scale factor.
const baseDPI = 96

// Size is an intrinsic width/height in device-independent units.
type Size struct {
	Width  float64
	Height float64
}

// Pixels is a final raster size. Both dimensions are always >= 1.
type Pixels struct {
	Width  int
	Height int
}

// Target carries the caller's sizing directives. Width and Height are 0 when
// not requested; DPI and Zoom always carry resolved values.
type Target struct {
	Width  int
	Height int
	DPI    int
	Zoom   float64
}

var (
	rootTagRegex = regexp.MustCompile(`(?is)<svg\b[^>]*>`)
	widthRegex   = regexp.MustCompile(`(?i)\bwidth\s*=\s*"([^"]*)"`)
	heightRegex  = regexp.MustCompile(`(?i)\bheight\s*=\s*"([^"]*)"`)
	viewBoxRegex = regexp.MustCompile(`(?i)\bviewBox\s*=\s*"([^"]*)"`)
	numberRegex  = regexp.MustCompile(`^\s*(-?[0-9]*\.?[0-9]+(?:[eE][+-]?[0-9]+)?)`)
)

// ParseIntrinsicSize extracts the natural size encoded in svg markup.
// Explicit width/height attributes on the root tag win when both are
// present; otherwise the 3rd and 4th viewBox numbers are used. Fails with
// an INVALID_MARKUP error when no root tag exists and INVALID_DIMENSIONS
// when neither form yields usable numbers.
func ParseIntrinsicSize(svg string) (Size, error) {
	tag := rootTagRegex.FindString(svg)
	if tag == "" {
		return Size{}, errors.New(errors.ErrCodeInvalidMarkup, "no <svg> root element in converted markup")
	}

	w, wOK := attrNumber(widthRegex, tag)
	h, hOK := attrNumber(heightRegex, tag)
	if wOK && hOK {
		return Size{Width: w, Height: h}, nil
	}

	if m := viewBoxRegex.FindStringSubmatch(tag); m != nil {
		fields := strings.Fields(strings.ReplaceAll(m[1], ",", " "))
		if len(fields) == 4 {
			vw, errW := strconv.ParseFloat(fields[2], 64)
			vh, errH := strconv.ParseFloat(fields[3], 64)
			if errW == nil && errH == nil {
				return Size{Width: vw, Height: vh}, nil
			}
		}
	}

	return Size{}, errors.New(errors.ErrCodeInvalidDimensions, "markup has no usable width/height or viewBox")
}

// attrNumber extracts a numeric attribute value from the root tag, stripping
// a trailing unit suffix ("100px" -> 100).
func attrNumber(re *regexp.Regexp, tag string) (float64, bool) {
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return 0, false
	}
	n := numberRegex.FindStringSubmatch(m[1])
	if n == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(n[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ComputeOutputSize derives the final raster size from the intrinsic size
// and the caller's directives. Precedence: explicit width (height follows
// the aspect ratio), explicit height, then zoom * dpi/96. Every dimension
// is floored at 1 pixel.
func ComputeOutputSize(in Size, t Target) (Pixels, error) {
	if !positiveFinite(in.Width) || !positiveFinite(in.Height) {
		return Pixels{}, errors.New(errors.ErrCodeInvalidDimensions,
			"intrinsic size %gx%g is not strictly positive", in.Width, in.Height)
	}

	switch {
	case t.Width > 0:
		return Pixels{
			Width:  t.Width,
			Height: atLeastOne(in.Height * float64(t.Width) / in.Width),
		}, nil
	case t.Height > 0:
		return Pixels{
			Width:  atLeastOne(in.Width * float64(t.Height) / in.Height),
			Height: t.Height,
		}, nil
	default:
		scale := t.Zoom * float64(t.DPI) / baseDPI
		return Pixels{
			Width:  atLeastOne(in.Width * scale),
			Height: atLeastOne(in.Height * scale),
		}, nil
	}
}

func atLeastOne(v float64) int {
	return max(1, int(math.Round(v)))
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
